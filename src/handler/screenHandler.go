package handler

import (
	"net/http"
	"strconv"

	"scalpwatch/src/screener"
)

// ScreenIntradayHandler runs a live intraday scan over the watched universe.
func ScreenIntradayHandler(scr MarketScreener, tickers []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"candidates": scr.ScreenIntraday(r.Context(), tickers),
		})
	}
}

// ScreenMarketHandler runs the daily swing screen plus the top-mover lists.
func ScreenMarketHandler(scr MarketScreener, tickers []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates := scr.ScreenMarket(r.Context(), tickers)
		dayStars, monthStars := scr.MarketStars(r.Context(), tickers)
		writeJSON(w, map[string]any{
			"candidates":  candidates,
			"day_stars":   dayStars,
			"month_stars": monthStars,
		})
	}
}

// MultibaggerHandler runs the long-horizon strategy screen. Supports
// ?strategy=can_slim|trend_template|moonshot|strong_formula and ?limit=N.
func MultibaggerHandler(scr MarketScreener, tickers []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		strategy := screener.Strategy(r.URL.Query().Get("strategy"))
		if strategy == "" {
			strategy = screener.StrategyStrongFormula
		}

		limit := 5
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		writeJSON(w, map[string]any{
			"strategy":   strategy,
			"candidates": scr.MultibaggerCandidates(r.Context(), tickers, limit, strategy),
		})
	}
}
