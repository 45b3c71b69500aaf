package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scalpwatch/src/model"
)

func dailyBars(n int, start float64, perDay float64) []model.Bar {
	bars := make([]model.Bar, n)
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	price := start
	for i := range bars {
		bars[i] = model.Bar{Timestamp: ts.AddDate(0, 0, i), Close: price}
		price += perDay
	}
	return bars
}

func TestLinearTrend(t *testing.T) {
	t.Run("rising series projects upward", func(t *testing.T) {
		fc, err := LinearTrend(dailyBars(120, 100, 1.0), 90)
		require.NoError(t, err)

		require.InDelta(t, 1.0, fc.TrendPerDay, 0.01)
		require.Len(t, fc.Projections, 90)
		require.Greater(t, fc.Projections[0].Price, fc.CurrentPrice)
		require.Greater(t, fc.Projections[89].Price, fc.Projections[9].Price)

		for _, day := range MilestoneDays {
			m, ok := fc.Milestones[day]
			require.True(t, ok)
			require.Greater(t, m.ChangePercent, 0.0)
		}
		// With identical short and long slopes blending is a no-op, so
		// day 10 sits ten daily increments above the last close.
		require.InDelta(t, fc.CurrentPrice+10, fc.Milestones[10].Price, 0.1)
	})

	t.Run("too little history errors", func(t *testing.T) {
		_, err := LinearTrend(dailyBars(3, 100, 1), 90)
		require.ErrorIs(t, err, ErrInsufficientHistory)
	})
}

func TestMonteCarloGBM(t *testing.T) {
	t.Run("zero volatility is deterministic drift", func(t *testing.T) {
		// Constant 1% daily log return: sigma is zero, every path lands on
		// the same terminal price.
		bars := make([]model.Bar, 50)
		ts := time.Now()
		price := 100.0
		for i := range bars {
			bars[i] = model.Bar{Timestamp: ts.AddDate(0, 0, i), Close: price}
			price *= 1.01
		}

		fc, err := MonteCarloGBM(bars, 10, 200, 42)
		require.NoError(t, err)
		require.InDelta(t, 0.0, fc.Volatility, 1e-9)
		require.InDelta(t, fc.P5, fc.P95, 1e-6)
		require.Greater(t, fc.Mean, bars[len(bars)-1].Close)
	})

	t.Run("reproducible with the same seed", func(t *testing.T) {
		bars := dailyBars(100, 100, 0.5)
		a, err := MonteCarloGBM(bars, 30, 500, 7)
		require.NoError(t, err)
		b, err := MonteCarloGBM(bars, 30, 500, 7)
		require.NoError(t, err)
		require.Equal(t, a.Mean, b.Mean)
		require.Equal(t, a.P5, b.P5)
	})

	t.Run("too little history errors", func(t *testing.T) {
		_, err := MonteCarloGBM(dailyBars(1, 100, 0), 30, 100, 1)
		require.ErrorIs(t, err, ErrInsufficientHistory)
	})
}
