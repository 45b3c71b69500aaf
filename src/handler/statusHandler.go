package handler

import (
	"errors"
	"net/http"
	"os"

	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/executors"
	"scalpwatch/src/marketcache"
	"scalpwatch/src/model"
)

// StatusHandler serves the bot heartbeat written by the scan loop. Before
// the first cycle runs there is no heartbeat yet; that is reported as an
// inactive bot rather than an error.
func StatusHandler(store FileReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status model.BotStatus
		if err := store.Read(executors.StatusFileName, &status); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeJSON(w, model.BotStatus{Active: false, Message: "Bot has not run yet"})
				return
			}
			logger.WithError(err).Error("failed to read bot status")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, status)
	}
}

// PortfolioHandler serves the current ledger snapshot.
func PortfolioHandler(trader Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, trader.Snapshot())
	}
}

// MarketHandler serves the market overview cache maintained by the
// background fetcher.
func MarketHandler(store FileReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cache model.MarketCache
		if err := store.Read(marketcache.CacheFileName, &cache); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeJSON(w, model.MarketCache{})
				return
			}
			logger.WithError(err).Error("failed to read market cache")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, cache)
	}
}
