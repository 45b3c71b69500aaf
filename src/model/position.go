package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryMetrics is the snapshot of the signal that triggered an entry.
// It is kept on the position and copied onto the trade record at exit so
// the rule learner can correlate losing trades with entry conditions.
type EntryMetrics struct {
	RSI         float64 `json:"rsi"`
	VolumeRatio float64 `json:"vol_ratio"`
}

// Position is one open paper-trading holding. At most one position per
// ticker exists at any time; positions are closed wholly, never partially.
type Position struct {
	Ticker       string          `json:"ticker"`
	Quantity     int64           `json:"qty"`
	AveragePrice decimal.Decimal `json:"avg_price"`
	OpenedAt     time.Time       `json:"opened_at"`
	Entry        *EntryMetrics   `json:"entry_metrics,omitempty"`
}

// CostBasis returns quantity * average price.
func (p Position) CostBasis() decimal.Decimal {
	return p.AveragePrice.Mul(decimal.NewFromInt(p.Quantity))
}
