package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/model"
	"scalpwatch/src/rules"
	"scalpwatch/src/screener"
	"scalpwatch/src/statefile"
)

// FileReader is the statefile slice the read-only endpoints need.
type FileReader interface {
	Read(name string, v any) error
}

// Ledger is the trader slice the dashboard reads from.
type Ledger interface {
	Snapshot() model.LedgerState
}

type TradeLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.TradeRecord, error)
}

type RuleSource interface {
	Rules() []rules.Rule
}

type MarketScreener interface {
	ScreenIntraday(ctx context.Context, tickers []string) []model.Candidate
	ScreenMarket(ctx context.Context, tickers []string) []model.Candidate
	MarketStars(ctx context.Context, tickers []string) (day []model.MarketStar, month []model.MarketStar)
	MultibaggerCandidates(ctx context.Context, tickers []string, limit int, strategy screener.Strategy) []model.Candidate
}

type HistorySource interface {
	DailyHistory(ctx context.Context, ticker string, days int) ([]model.Bar, error)
}

// Deps bundles everything the dashboard API reads. Handlers never write
// trading state; the bot loop owns all mutations.
type Deps struct {
	Store    *statefile.Store
	Trader   Ledger
	Trades   TradeLister
	Rules    RuleSource
	Screener MarketScreener
	Market   HistorySource
	Tickers  []string
}

// NewRouter mounts the full dashboard API.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", StatusHandler(deps.Store))
		r.Get("/portfolio", PortfolioHandler(deps.Trader))
		r.Get("/trades", TradesHandler(deps.Trades))
		r.Get("/rules", RulesHandler(deps.Rules))
		r.Get("/market", MarketHandler(deps.Store))
		r.Get("/screen/intraday", ScreenIntradayHandler(deps.Screener, deps.Tickers))
		r.Get("/screen/market", ScreenMarketHandler(deps.Screener, deps.Tickers))
		r.Get("/screen/multibagger", MultibaggerHandler(deps.Screener, deps.Tickers))
		r.Get("/forecast/{ticker}", ForecastHandler(deps.Market))
	})

	r.Get("/ws/status", StatusSocketHandler(deps.Store, deps.Trader))

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
