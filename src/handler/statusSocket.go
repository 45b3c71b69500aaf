package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/executors"
	"scalpwatch/src/model"
)

const statusPushInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard is served from arbitrary origins in dev setups.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type statusFrame struct {
	Status    model.BotStatus   `json:"status"`
	Portfolio model.LedgerState `json:"portfolio"`
}

// StatusSocketHandler pushes the heartbeat and ledger snapshot to the
// dashboard every few seconds until the client goes away.
func StatusSocketHandler(store FileReader, trader Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Error("websocket upgrade failed")
			return
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logger.WithError(err).Debug("websocket close error")
			}
		}()

		// Drain client frames so pings and close messages are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(statusPushInterval)
		defer ticker.Stop()

		for {
			frame := statusFrame{Portfolio: trader.Snapshot()}
			if err := store.Read(executors.StatusFileName, &frame.Status); err != nil {
				frame.Status = model.BotStatus{Active: false, Message: "Bot has not run yet"}
			}

			if err := conn.WriteJSON(frame); err != nil {
				logger.WithError(err).Debug("status socket client gone")
				return
			}

			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}
