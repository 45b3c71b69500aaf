package executors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"scalpwatch/src/model"
	"scalpwatch/src/risk"
	"scalpwatch/src/rules"
	"scalpwatch/src/statefile"
	"scalpwatch/src/trader"
)

type fakeScreener struct {
	candidates []model.Candidate
	boom       bool
}

func (f *fakeScreener) ScreenIntraday(_ context.Context, _ []string) []model.Candidate {
	if f.boom {
		panic("screener exploded")
	}
	return f.candidates
}

type fakeQuotes struct {
	prices map[string]float64
}

func (f *fakeQuotes) Quote(_ context.Context, ticker string) (float64, error) {
	price, ok := f.prices[ticker]
	if !ok {
		return 0, errors.New("no quote")
	}
	return price, nil
}

type nopHistory struct{}

func (nopHistory) Create(_ context.Context, _ *model.TradeRecord) error       { return nil }
func (nopHistory) ListLosing(_ context.Context) ([]model.TradeRecord, error) { return nil, nil }

func istClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return func() time.Time { return parsed }
}

func newTestLoop(t *testing.T, scr IntradayScreener, quotes QuoteSource) (*Loop, *statefile.Store) {
	t.Helper()

	store, err := statefile.NewStore(t.TempDir())
	require.NoError(t, err)

	tr := trader.New(trader.Options{
		InitialBalance: decimal.NewFromInt(10000),
		Store:          store,
		Rules:          rules.NewStore(nil),
		History:        nopHistory{},
	})

	loop := NewLoop(Config{
		ScanInterval:   time.Minute,
		ClosedInterval: 5 * time.Minute,
		ErrorBackoff:   30 * time.Second,
		BuyNotional:    2000,
		MinEntryScore:  50,
		Version:        "test",
	}, scr, tr, quotes, risk.NewCalendar(), store, []string{"RELIANCE.NS"})
	return loop, store
}

func TestRunCycleClosedMarket(t *testing.T) {
	loop, store := newTestLoop(t, &fakeScreener{}, &fakeQuotes{})
	loop.now = istClock(t, "2026-02-08 11:00") // Sunday

	delay := loop.runCycle(context.Background())
	require.Equal(t, 5*time.Minute, delay)

	var status model.BotStatus
	require.NoError(t, store.Read(StatusFileName, &status))
	require.False(t, status.Active)
	require.Equal(t, "2026-02-08 11:00:00", status.LastRun)
	require.Equal(t, "test", status.Version)
}

func TestRunCycleBuysQualifyingCandidates(t *testing.T) {
	scr := &fakeScreener{candidates: []model.Candidate{
		{Ticker: "TCS.NS", Price: 100, Score: 70, RSI: 55, VolumeRatio: 2.0},
		{Ticker: "INFY.NS", Price: 50, Score: 40},
	}}
	loop, store := newTestLoop(t, scr, &fakeQuotes{})
	loop.now = istClock(t, "2026-02-10 10:30") // Tuesday, mid session

	delay := loop.runCycle(context.Background())
	require.Equal(t, time.Minute, delay)

	state := loop.trader.Snapshot()
	require.Contains(t, state.Positions, "TCS.NS")
	require.NotContains(t, state.Positions, "INFY.NS")
	require.Equal(t, int64(20), state.Positions["TCS.NS"].Quantity)

	var status model.BotStatus
	require.NoError(t, store.Read(StatusFileName, &status))
	require.True(t, status.Active)
}

func TestRunCycleAutoExitsViaQuoteFallback(t *testing.T) {
	scr := &fakeScreener{candidates: []model.Candidate{
		{Ticker: "TCS.NS", Price: 100, Score: 70, RSI: 55, VolumeRatio: 2.0},
	}}
	quotes := &fakeQuotes{prices: map[string]float64{"TCS.NS": 100.81}}
	loop, _ := newTestLoop(t, scr, quotes)
	loop.now = istClock(t, "2026-02-10 10:30")

	loop.runCycle(context.Background())
	require.Contains(t, loop.trader.Snapshot().Positions, "TCS.NS")

	// Next cycle the scan no longer surfaces the ticker, so the exit
	// price comes from the quote fallback and the target fires.
	scr.candidates = nil
	loop.runCycle(context.Background())
	require.NotContains(t, loop.trader.Snapshot().Positions, "TCS.NS")
}

func TestSafeCycleRecoversFromPanic(t *testing.T) {
	loop, _ := newTestLoop(t, &fakeScreener{boom: true}, &fakeQuotes{})
	loop.now = istClock(t, "2026-02-10 10:30")

	delay := loop.safeCycle(context.Background())
	require.Equal(t, 30*time.Second, delay)
}
