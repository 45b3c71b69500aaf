package marketcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scalpwatch/src/model"
	"scalpwatch/src/statefile"
)

type fakeSource struct {
	stats []model.TickerStats
}

func (f *fakeSource) Snapshot(context.Context, []string) []model.TickerStats {
	return f.stats
}

func TestBuild(t *testing.T) {
	stats := []model.TickerStats{
		{Ticker: "A.NS", Change1D: 1.0, Change30D: 12.0, Volume: 100},
		{Ticker: "B.NS", Change1D: 5.0, Change30D: -2.0, Volume: 900},
		{Ticker: "C.NS", Change1D: -3.0, Change30D: 30.0, Volume: 500},
	}

	cache := Build(stats, time.Date(2026, 2, 10, 16, 0, 0, 0, time.UTC))

	require.Equal(t, "B.NS", cache.TopGainers1D[0].Ticker)
	require.Equal(t, "C.NS", cache.TopGainers30D[0].Ticker)
	require.Equal(t, "B.NS", cache.TopActiveVolume[0].Ticker)
	require.Len(t, cache.AllStats, 3)
	require.NotEmpty(t, cache.LastUpdated)
}

func TestRefresh(t *testing.T) {
	store, err := statefile.NewStore(t.TempDir())
	require.NoError(t, err)

	t.Run("writes the cache file", func(t *testing.T) {
		f := NewFetcher(&fakeSource{stats: []model.TickerStats{
			{Ticker: "RELIANCE.NS", Change1D: 2.2, Volume: 1000},
		}}, store, []string{"RELIANCE.NS"})

		require.NoError(t, f.Refresh(context.Background()))

		var cache model.MarketCache
		require.NoError(t, store.Read(CacheFileName, &cache))
		require.Equal(t, "RELIANCE.NS", cache.TopGainers1D[0].Ticker)
	})

	t.Run("empty fetch keeps previous cache", func(t *testing.T) {
		f := NewFetcher(&fakeSource{}, store, nil)
		require.NoError(t, f.Refresh(context.Background()))

		var cache model.MarketCache
		require.NoError(t, store.Read(CacheFileName, &cache))
		require.Equal(t, "RELIANCE.NS", cache.TopGainers1D[0].Ticker)
	})
}
