package executors

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/model"
	"scalpwatch/src/risk"
	"scalpwatch/src/statefile"
	"scalpwatch/src/trader"
)

// StatusFileName is the heartbeat record read by the dashboard.
const StatusFileName = "bot_status.json"

// IntradayScreener is the scan slice of the screener the loop drives.
type IntradayScreener interface {
	ScreenIntraday(ctx context.Context, tickers []string) []model.Candidate
}

// QuoteSource resolves a fresh price for positions the scan did not cover.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (float64, error)
}

// Loop drives the screener and ledger once per scan interval, respecting
// market-hours gating. It never terminates on error: a failed cycle backs
// off and the next tick resumes.
type Loop struct {
	config   Config
	screener IntradayScreener
	trader   *trader.PaperTrader
	quotes   QuoteSource
	calendar *risk.Calendar
	store    *statefile.Store
	tickers  []string
	now      func() time.Time
	log      *logger.Entry
}

func NewLoop(
	config Config,
	scr IntradayScreener,
	tr *trader.PaperTrader,
	quotes QuoteSource,
	calendar *risk.Calendar,
	store *statefile.Store,
	tickers []string,
) *Loop {
	return &Loop{
		config:   config,
		screener: scr,
		trader:   tr,
		quotes:   quotes,
		calendar: calendar,
		store:    store,
		tickers:  tickers,
		now:      time.Now,
		log:      logger.WithField("component", "BotLoop"),
	}
}

// Start runs cycles until the context is canceled.
func (l *Loop) Start(ctx context.Context) error {
	l.log.WithFields(logger.Fields{
		"tickers":       len(l.tickers),
		"scan_interval": l.config.ScanInterval,
	}).Info("bot loop starting")

	for {
		delay := l.safeCycle(ctx)

		select {
		case <-ctx.Done():
			l.log.Info("bot loop stopped")
			return nil
		case <-time.After(delay):
		}
	}
}

// safeCycle runs one cycle with panic containment. Anything thrown inside
// a cycle is logged and answered with the error backoff.
func (l *Loop) safeCycle(ctx context.Context) (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Error("cycle panicked, backing off")
			delay = l.config.ErrorBackoff
		}
	}()
	return l.runCycle(ctx)
}

// runCycle is one scan: heartbeat, exits, then entries.
func (l *Loop) runCycle(ctx context.Context) time.Duration {
	now := l.now()
	status := l.calendar.Check(now)

	l.writeHeartbeat(status, now)

	if !status.Open {
		l.log.WithField("reason", status.Message).Debug("market closed, sleeping")
		return l.config.ClosedInterval
	}

	l.log.Info("scanning market")
	candidates := l.screener.ScreenIntraday(ctx, l.tickers)

	prices := l.resolvePrices(ctx, candidates)

	// 1. Manage exits (profit booking / stop loss).
	for _, exit := range l.trader.CheckAutoExit(ctx, prices) {
		l.log.WithField("exit", exit).Info("auto exit")
	}

	// 2. Manage entries.
	notional := decimal.NewFromFloat(l.config.BuyNotional)
	for _, pick := range candidates {
		if pick.Score < l.config.MinEntryScore {
			continue
		}

		res := l.trader.Buy(ctx, pick.Ticker, decimal.NewFromFloat(pick.Price), notional, &model.EntryMetrics{
			RSI:         pick.RSI,
			VolumeRatio: pick.VolumeRatio,
		})
		switch {
		case res.OK:
			l.log.WithFields(logger.Fields{
				"ticker": pick.Ticker,
				"score":  pick.Score,
			}).Info(res.Message)
		case res.Blocked:
			l.log.WithFields(logger.Fields{
				"ticker": pick.Ticker,
				"score":  pick.Score,
			}).Warn(res.Message)
		}
	}

	l.trader.RecordEquity(prices)

	return l.config.ScanInterval
}

// resolvePrices builds the current-price map for open positions: the scan
// price is preferred, a fresh single-ticker quote is the fallback, and a
// ticker that yields neither is left out (no forced liquidation on
// missing data).
func (l *Loop) resolvePrices(ctx context.Context, candidates []model.Candidate) map[string]decimal.Decimal {
	scanPrices := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scanPrices[c.Ticker] = c.Price
	}

	prices := make(map[string]decimal.Decimal)
	for _, ticker := range l.trader.OpenTickers() {
		if price, ok := scanPrices[ticker]; ok {
			prices[ticker] = decimal.NewFromFloat(price)
			continue
		}
		price, err := l.quotes.Quote(ctx, ticker)
		if err != nil {
			l.log.WithField("ticker", ticker).WithError(err).Warn("exit price unavailable this cycle")
			continue
		}
		prices[ticker] = decimal.NewFromFloat(price)
	}
	return prices
}

func (l *Loop) writeHeartbeat(status risk.Status, now time.Time) {
	heartbeat := model.BotStatus{
		Active:  status.Open,
		Message: status.Message,
		LastRun: now.Format("2006-01-02 15:04:05"),
		Version: l.config.Version,
	}
	if err := l.store.Write(StatusFileName, heartbeat); err != nil {
		l.log.WithError(err).Error("failed to write heartbeat")
	}
}
