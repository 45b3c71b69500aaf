package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scalpwatch/src/model"
)

func losingTrades(rsi, volRatio float64, n int) []model.TradeRecord {
	out := make([]model.TradeRecord, n)
	for i := range out {
		out[i] = model.TradeRecord{
			Ticker:           "RELIANCE.NS",
			Profit:           -50,
			EntryRSI:         rsi,
			EntryVolumeRatio: volRatio,
			ClosedAt:         time.Now(),
		}
	}
	return out
}

func TestAnalyzeMistakes(t *testing.T) {
	t.Run("needs three losers", func(t *testing.T) {
		store := NewStore(nil)
		store.AnalyzeMistakes(losingTrades(85, 1.0, 2))
		require.Empty(t, store.Rules())
	})

	t.Run("high mean RSI adds rule exactly once", func(t *testing.T) {
		store := NewStore(nil)
		corpus := losingTrades(80, 1.0, 3)

		store.AnalyzeMistakes(corpus)
		require.Len(t, store.Rules(), 1)
		require.Equal(t, RSIAbove, store.Rules()[0].Kind)
		require.Equal(t, 72.0, store.Rules()[0].Threshold)

		// Same corpus again must not duplicate the rule.
		store.AnalyzeMistakes(corpus)
		require.Len(t, store.Rules(), 1)
	})

	t.Run("low mean RSI adds oversold rule", func(t *testing.T) {
		store := NewStore(nil)
		store.AnalyzeMistakes(losingTrades(20, 1.0, 3))

		rules := store.Rules()
		require.Len(t, rules, 1)
		require.Equal(t, RSIBelow, rules[0].Kind)
		require.Equal(t, 35.0, rules[0].Threshold)
	})

	t.Run("ultra spike volume adds rule", func(t *testing.T) {
		store := NewStore(nil)
		store.AnalyzeMistakes(losingTrades(50, 6.0, 3))

		rules := store.Rules()
		require.Len(t, rules, 1)
		require.Equal(t, VolumeRatioAbove, rules[0].Kind)
	})

	t.Run("persists after learning", func(t *testing.T) {
		var saved *File
		store := NewStore(func(f File) error {
			saved = &f
			return nil
		})
		store.AnalyzeMistakes(losingTrades(80, 1.0, 3))

		require.NotNil(t, saved)
		require.Len(t, saved.BlocklistConditions, 1)
		require.Equal(t, []string{"RSI > 72"}, saved.Conditions)
		require.Equal(t, MinLosingTrades, saved.MinConfidence)
		require.NotNil(t, saved.LastLearningTS)
	})
}

func TestEvaluate(t *testing.T) {
	store := NewStore(nil)
	store.Load(File{BlocklistConditions: []Rule{
		{Kind: RSIAbove, Threshold: 72},
		{Kind: VolumeRatioAbove, Threshold: 4.0},
	}})

	tests := []struct {
		name    string
		metrics model.EntryMetrics
		blocked bool
	}{
		{"overbought entry blocked", model.EntryMetrics{RSI: 80, VolumeRatio: 1.0}, true},
		{"healthy entry allowed", model.EntryMetrics{RSI: 60, VolumeRatio: 1.0}, false},
		{"boundary RSI allowed", model.EntryMetrics{RSI: 72, VolumeRatio: 1.0}, false},
		{"volume spike blocked", model.EntryMetrics{RSI: 60, VolumeRatio: 5.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, reason := store.Evaluate(tt.metrics)
			require.Equal(t, tt.blocked, blocked)
			if blocked {
				require.Contains(t, reason, "Blocked by learned rule")
			}
		})
	}
}

func TestConditionText(t *testing.T) {
	require.Equal(t, "RSI > 72", Rule{Kind: RSIAbove, Threshold: 72}.Condition())
	require.Equal(t, "RSI < 35", Rule{Kind: RSIBelow, Threshold: 35}.Condition())
	require.Equal(t, "Volume ratio > 4.0", Rule{Kind: VolumeRatioAbove, Threshold: 4}.Condition())
}
