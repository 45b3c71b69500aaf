package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/forecast"
)

const forecastHistoryDays = 365

// ForecastHandler projects a ticker forward from a year of daily closes:
// a blended linear trend plus a Monte Carlo price envelope. Supports
// ?days=N for the projection horizon.
func ForecastHandler(market HistorySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
		if ticker == "" {
			http.Error(w, "missing ticker", http.StatusBadRequest)
			return
		}
		if !strings.Contains(ticker, ".") {
			ticker += ".NS"
		}

		days := 90
		if daysParam := r.URL.Query().Get("days"); daysParam != "" {
			parsed, err := strconv.Atoi(daysParam)
			if err != nil || parsed <= 0 || parsed > 365 {
				http.Error(w, "invalid days", http.StatusBadRequest)
				return
			}
			days = parsed
		}

		bars, err := market.DailyHistory(r.Context(), ticker, forecastHistoryDays)
		if err != nil {
			logger.WithError(err).WithField("ticker", ticker).Error("failed to fetch forecast history")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		trend, err := forecast.LinearTrend(bars, days)
		if err != nil {
			if errors.Is(err, forecast.ErrInsufficientHistory) {
				http.Error(w, "not enough history for this ticker", http.StatusUnprocessableEntity)
				return
			}
			logger.WithError(err).Error("trend forecast failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		// The simulation is advisory; trend output stands alone if it fails.
		gbm, err := forecast.MonteCarloGBM(bars, days, 500, time.Now().UnixNano())
		if err != nil {
			logger.WithError(err).Warn("monte carlo forecast unavailable")
		}

		writeJSON(w, map[string]any{
			"ticker":      ticker,
			"trend":       trend,
			"monte_carlo": gbm,
		})
	}
}
