package marketcache

import (
	"context"
	"sort"
	"time"

	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/model"
	"scalpwatch/src/statefile"
)

// CacheFileName is the market-wide snapshot record under the state
// directory, consumed opportunistically by the dashboard.
const CacheFileName = "market_cache.json"

const topListSize = 20

// SnapshotSource is the batch-stats slice of the market-data client.
type SnapshotSource interface {
	Snapshot(ctx context.Context, tickers []string) []model.TickerStats
}

// Fetcher refreshes the market-wide cache: top gainers, losers by volume
// and per-ticker monthly stats for the whole universe.
type Fetcher struct {
	data    SnapshotSource
	store   *statefile.Store
	tickers []string
	log     *logger.Entry
}

func NewFetcher(data SnapshotSource, store *statefile.Store, tickers []string) *Fetcher {
	return &Fetcher{
		data:    data,
		store:   store,
		tickers: tickers,
		log:     logger.WithField("component", "MarketCacheFetcher"),
	}
}

// Refresh fetches stats for the universe and atomically rewrites the
// cache file. An empty fetch leaves the previous cache in place.
func (f *Fetcher) Refresh(ctx context.Context) error {
	stats := f.data.Snapshot(ctx, f.tickers)
	if len(stats) == 0 {
		f.log.Warn("no market stats fetched, keeping previous cache")
		return nil
	}

	cache := Build(stats, time.Now())
	if err := f.store.Write(CacheFileName, cache); err != nil {
		f.log.WithError(err).Error("failed to write market cache")
		return err
	}

	f.log.WithFields(logger.Fields{
		"tickers":    len(stats),
		"top_gainer": cache.TopGainers1D[0].Ticker,
	}).Info("market cache updated")

	return nil
}

// Run refreshes on an interval until the context is canceled. One refresh
// happens immediately at startup.
func (f *Fetcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	_ = f.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.log.Info("market cache job stopped")
			return
		case <-ticker.C:
			_ = f.Refresh(ctx)
		}
	}
}

// Build ranks raw stats into the cache shape.
func Build(stats []model.TickerStats, now time.Time) model.MarketCache {
	byDay := append([]model.TickerStats(nil), stats...)
	sort.SliceStable(byDay, func(i, j int) bool { return byDay[i].Change1D > byDay[j].Change1D })

	byMonth := append([]model.TickerStats(nil), stats...)
	sort.SliceStable(byMonth, func(i, j int) bool { return byMonth[i].Change30D > byMonth[j].Change30D })

	byVolume := append([]model.TickerStats(nil), stats...)
	sort.SliceStable(byVolume, func(i, j int) bool { return byVolume[i].Volume > byVolume[j].Volume })

	return model.MarketCache{
		LastUpdated:     now.Format(time.RFC3339),
		TopGainers1D:    top(byDay, topListSize),
		TopGainers30D:   top(byMonth, topListSize),
		TopActiveVolume: top(byVolume, topListSize),
		AllStats:        stats,
	}
}

func top(stats []model.TickerStats, n int) []model.TickerStats {
	if len(stats) > n {
		return stats[:n]
	}
	return stats
}
