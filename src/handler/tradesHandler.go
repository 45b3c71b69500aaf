package handler

import (
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"
)

const defaultTradeLimit = 50

// TradesHandler lists closed trades, newest first. Supports ?limit=N.
func TradesHandler(repo TradeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultTradeLimit
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		trades, err := repo.ListRecent(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("failed to list trades")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, trades)
	}
}

// RulesHandler serves the learned blocklist rules.
func RulesHandler(source RuleSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := source.Rules()
		conditions := make([]string, 0, len(active))
		for _, rule := range active {
			conditions = append(conditions, rule.Condition())
		}
		writeJSON(w, map[string]any{
			"rules":      active,
			"conditions": conditions,
		})
	}
}
