package trader

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/model"
	"scalpwatch/src/rules"
	"scalpwatch/src/statefile"
)

// Fixed-ratio scalping policy: book profit at +0.80%, cut loss at -0.40%
// (2:1 reward to risk). Thresholds are configuration, not learned.
var (
	DefaultTargetPercent = decimal.RequireFromString("0.80")
	DefaultStopPercent   = decimal.RequireFromString("0.40")
)

// DefaultBuyNotional is the approximate cash committed per entry.
var DefaultBuyNotional = decimal.NewFromInt(2000)

const (
	// StateFileName is the ledger state record under the state directory.
	StateFileName = "paper_trader_state.json"

	maxTradeLogEntries = 200
	maxEquitySamples   = 2000
)

// TradeHistory is the durable trade-record sink and learning corpus.
type TradeHistory interface {
	Create(ctx context.Context, record *model.TradeRecord) error
	ListLosing(ctx context.Context) ([]model.TradeRecord, error)
}

// Result is the outcome of a buy or sell. Expected business rejections
// (already holding, insufficient funds, rule veto) are results, not errors.
type Result struct {
	OK      bool
	Blocked bool
	Message string
	Profit  decimal.Decimal
}

// Options wires a PaperTrader. Store, Rules and History may be nil, which
// disables persistence, rule gating and trade recording respectively.
type Options struct {
	InitialBalance decimal.Decimal
	TargetPercent  decimal.Decimal
	StopPercent    decimal.Decimal
	Store          *statefile.Store
	Rules          *rules.Store
	History        TradeHistory
	Now            func() time.Time
}

// PaperTrader owns the simulated account: cash, open positions, trade log,
// realized P&L and equity curve. Every mutating operation persists the
// whole ledger state before returning.
type PaperTrader struct {
	mu sync.Mutex

	cash           decimal.Decimal
	positions      map[string]model.Position
	tradeLog       []string
	realizedProfit decimal.Decimal
	equityHistory  []model.EquitySample

	targetPct decimal.Decimal
	stopPct   decimal.Decimal

	store   *statefile.Store
	rules   *rules.Store
	history TradeHistory
	now     func() time.Time
	log     *logger.Entry
}

// New builds a trader and restores the last persisted ledger state when
// one exists; otherwise the account starts fresh at the initial balance.
func New(opts Options) *PaperTrader {
	if opts.TargetPercent.IsZero() {
		opts.TargetPercent = DefaultTargetPercent
	}
	if opts.StopPercent.IsZero() {
		opts.StopPercent = DefaultStopPercent
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t := &PaperTrader{
		cash:           opts.InitialBalance,
		positions:      make(map[string]model.Position),
		realizedProfit: decimal.Zero,
		targetPct:      opts.TargetPercent,
		stopPct:        opts.StopPercent,
		store:          opts.Store,
		rules:          opts.Rules,
		history:        opts.History,
		now:            opts.Now,
		log:            logger.WithField("component", "PaperTrader"),
	}
	t.equityHistory = append(t.equityHistory, model.EquitySample{
		Timestamp: t.now(),
		Value:     opts.InitialBalance,
	})

	if t.store != nil {
		var state model.LedgerState
		if err := t.store.Read(StateFileName, &state); err == nil {
			t.restore(state)
			t.log.WithFields(logger.Fields{
				"cash":      t.cash,
				"positions": len(t.positions),
			}).Info("ledger state restored")
		}
	}

	return t
}

func (t *PaperTrader) restore(state model.LedgerState) {
	t.cash = state.Cash
	t.positions = state.Positions
	if t.positions == nil {
		t.positions = make(map[string]model.Position)
	}
	t.tradeLog = state.TradeLog
	t.realizedProfit = state.RealizedProfit
	if len(state.EquityHistory) > 0 {
		t.equityHistory = state.EquityHistory
	}
}

// Buy opens a position for ticker, committing roughly amount of cash.
// A zero amount falls back to the default notional. Entry metrics are
// checked against the learned rule set before any state changes: the veto
// is pre-trade, not a post-hoc filter.
func (t *PaperTrader) Buy(ctx context.Context, ticker string, price decimal.Decimal, amount decimal.Decimal, metrics *model.EntryMetrics) Result {
	if amount.IsZero() {
		amount = DefaultBuyNotional
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return Result{Message: "Invalid price"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, held := t.positions[ticker]; held {
		return Result{Message: "Already holding position"}
	}

	// Use remaining cash if less than the target amount.
	if t.cash.LessThan(amount) {
		amount = t.cash
	}
	if amount.LessThan(price) {
		return Result{Message: "Insufficient funds"}
	}

	qty := amount.Div(price).IntPart()
	if qty < 1 {
		return Result{Message: "Price too high for balance"}
	}

	if t.rules != nil && metrics != nil {
		if blocked, reason := t.rules.Evaluate(*metrics); blocked {
			t.log.WithFields(logger.Fields{
				"ticker": ticker,
				"rsi":    metrics.RSI,
				"vol":    metrics.VolumeRatio,
			}).Warn(reason)
			return Result{Blocked: true, Message: reason}
		}
	}

	cost := price.Mul(decimal.NewFromInt(qty))
	t.cash = t.cash.Sub(cost)
	t.positions[ticker] = model.Position{
		Ticker:       ticker,
		Quantity:     qty,
		AveragePrice: price,
		OpenedAt:     t.now(),
		Entry:        metrics,
	}

	t.prependLog(fmt.Sprintf("BUY  %s: %d qty @ %s", ticker, qty, price.StringFixed(2)))
	t.persistLocked()

	t.log.WithFields(logger.Fields{
		"ticker": ticker,
		"qty":    qty,
		"price":  price,
	}).Info("position opened")

	return Result{OK: true, Message: fmt.Sprintf("Bought %d of %s", qty, ticker)}
}

// Sell closes the whole position at price. The realized profit is
// accumulated, a durable trade record is appended, and a losing close
// triggers rule re-learning before the call returns.
func (t *PaperTrader) Sell(ctx context.Context, ticker string, price decimal.Decimal, reason string) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sellLocked(ctx, ticker, price, reason)
}

func (t *PaperTrader) sellLocked(ctx context.Context, ticker string, price decimal.Decimal, reason string) Result {
	pos, held := t.positions[ticker]
	if !held {
		return Result{Message: "Position not found"}
	}

	qty := decimal.NewFromInt(pos.Quantity)
	revenue := price.Mul(qty)
	cost := pos.AveragePrice.Mul(qty)
	profit := revenue.Sub(cost)
	pctProfit := decimal.Zero
	if cost.IsPositive() {
		pctProfit = profit.Div(cost).Mul(decimal.NewFromInt(100))
	}

	t.cash = t.cash.Add(revenue)
	t.realizedProfit = t.realizedProfit.Add(profit)
	delete(t.positions, ticker)

	t.prependLog(fmt.Sprintf("SELL %s: %d qty @ %s | P&L: %s (%s%%) | %s",
		ticker, pos.Quantity, price.StringFixed(2),
		profit.StringFixed(2), pctProfit.StringFixed(1), reason))

	t.recordTrade(ctx, pos, price, profit, pctProfit, reason)
	t.persistLocked()

	t.log.WithFields(logger.Fields{
		"ticker": ticker,
		"profit": profit,
		"reason": reason,
	}).Info("position closed")

	return Result{
		OK:      true,
		Profit:  profit,
		Message: fmt.Sprintf("Sold %s for %s profit", ticker, profit.StringFixed(2)),
	}
}

// recordTrade appends the closed round-trip to the durable history and,
// on a loss, re-runs rule learning over the full losing corpus.
func (t *PaperTrader) recordTrade(ctx context.Context, pos model.Position, exitPrice, profit, pctProfit decimal.Decimal, reason string) {
	if t.history == nil {
		return
	}

	record := &model.TradeRecord{
		TradeID:       uuid.NewString(),
		Ticker:        pos.Ticker,
		Quantity:      pos.Quantity,
		EntryPrice:    pos.AveragePrice.InexactFloat64(),
		ExitPrice:     exitPrice.InexactFloat64(),
		Profit:        profit.InexactFloat64(),
		ProfitPercent: pctProfit.InexactFloat64(),
		ExitReason:    reason,
		ClosedAt:      t.now(),
	}
	if pos.Entry != nil {
		record.EntryRSI = pos.Entry.RSI
		record.EntryVolumeRatio = pos.Entry.VolumeRatio
	}

	if err := t.history.Create(ctx, record); err != nil {
		t.log.WithError(err).Error("failed to record closed trade")
		return
	}

	if profit.IsNegative() && t.rules != nil {
		losing, err := t.history.ListLosing(ctx)
		if err != nil {
			t.log.WithError(err).Error("failed to load losing-trade corpus")
			return
		}
		t.rules.AnalyzeMistakes(losing)
	}
}

// CheckAutoExit evaluates the target and stop rules for every open
// position with a known current price. Target wins over stop; at most one
// rule fires per position per cycle. Positions without a supplied price
// are left untouched.
func (t *PaperTrader) CheckAutoExit(ctx context.Context, currentPrices map[string]decimal.Decimal) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	tickers := make([]string, 0, len(t.positions))
	for ticker := range t.positions {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var exits []string
	hundred := decimal.NewFromInt(100)

	for _, ticker := range tickers {
		price, known := currentPrices[ticker]
		if !known {
			continue
		}

		pos := t.positions[ticker]
		changePct := price.Sub(pos.AveragePrice).Div(pos.AveragePrice).Mul(hundred)

		switch {
		case changePct.GreaterThanOrEqual(t.targetPct):
			reason := fmt.Sprintf("Target +%s%%", changePct.StringFixed(2))
			if res := t.sellLocked(ctx, ticker, price, reason); res.OK {
				exits = append(exits, res.Message)
			}
		case changePct.LessThanOrEqual(t.stopPct.Neg()):
			reason := fmt.Sprintf("Stop -%s%%", changePct.Abs().StringFixed(2))
			if res := t.sellLocked(ctx, ticker, price, reason); res.OK {
				exits = append(exits, res.Message)
			}
		}
	}

	return exits
}

// PortfolioValue is cash plus marked-to-market holdings. A position whose
// ticker has no supplied price is valued at its cost basis.
func (t *PaperTrader) PortfolioValue(currentPrices map[string]decimal.Decimal) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.portfolioValueLocked(currentPrices)
}

func (t *PaperTrader) portfolioValueLocked(currentPrices map[string]decimal.Decimal) decimal.Decimal {
	total := t.cash
	for ticker, pos := range t.positions {
		price, known := currentPrices[ticker]
		if !known {
			price = pos.AveragePrice
		}
		total = total.Add(price.Mul(decimal.NewFromInt(pos.Quantity)))
	}
	return total
}

// RecordEquity appends a portfolio-value sample to the equity curve and
// persists. The curve is ring-bounded.
func (t *PaperTrader) RecordEquity(currentPrices map[string]decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.equityHistory = append(t.equityHistory, model.EquitySample{
		Timestamp: t.now(),
		Value:     t.portfolioValueLocked(currentPrices),
	})
	if len(t.equityHistory) > maxEquitySamples {
		t.equityHistory = t.equityHistory[len(t.equityHistory)-maxEquitySamples:]
	}
	t.persistLocked()
}

// Snapshot returns a deep copy of the ledger state for read-only callers.
func (t *PaperTrader) Snapshot() model.LedgerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *PaperTrader) snapshotLocked() model.LedgerState {
	positions := make(map[string]model.Position, len(t.positions))
	for ticker, pos := range t.positions {
		positions[ticker] = pos
	}
	return model.LedgerState{
		Cash:           t.cash,
		Positions:      positions,
		TradeLog:       append([]string(nil), t.tradeLog...),
		RealizedProfit: t.realizedProfit,
		EquityHistory:  append([]model.EquitySample(nil), t.equityHistory...),
	}
}

// OpenTickers lists tickers with open positions, sorted.
func (t *PaperTrader) OpenTickers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	tickers := make([]string, 0, len(t.positions))
	for ticker := range t.positions {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// prependLog adds a trade event at the head of the ring-bounded log.
func (t *PaperTrader) prependLog(entry string) {
	t.tradeLog = append([]string{entry}, t.tradeLog...)
	if len(t.tradeLog) > maxTradeLogEntries {
		t.tradeLog = t.tradeLog[:maxTradeLogEntries]
	}
}

// persistLocked rewrites the whole ledger state. A write failure is logged
// and the operation proceeds in memory; state loss to the granularity of
// the last successful write is accepted for a simulation.
func (t *PaperTrader) persistLocked() {
	if t.store == nil {
		return
	}
	if err := t.store.Write(StateFileName, t.snapshotLocked()); err != nil {
		t.log.WithError(err).Error("failed to persist ledger state")
	}
}
