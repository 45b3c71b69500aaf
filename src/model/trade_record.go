package model

import "time"

// TradeRecord is one closed round-trip, persisted as the learning corpus
// for the rule store. Append-only.
type TradeRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TradeID          string    `gorm:"size:64;uniqueIndex" json:"trade_id"`
	Ticker           string    `gorm:"size:32;index" json:"ticker"`
	Quantity         int64     `json:"qty"`
	EntryPrice       float64   `json:"entry_price"`
	ExitPrice        float64   `json:"exit_price"`
	Profit           float64   `json:"profit"`
	ProfitPercent    float64   `json:"profit_pct"`
	EntryRSI         float64   `json:"entry_rsi"`
	EntryVolumeRatio float64   `json:"entry_vol_ratio"`
	ExitReason       string    `gorm:"size:64" json:"exit_reason"`
	ClosedAt         time.Time `gorm:"index" json:"closed_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Losing reports whether the round-trip closed at a loss.
func (r TradeRecord) Losing() bool { return r.Profit < 0 }
