package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquitySample is one (timestamp, total value) point of the equity curve.
type EquitySample struct {
	Timestamp time.Time       `json:"ts"`
	Value     decimal.Decimal `json:"value"`
}

// LedgerState is the wholesale-persisted account state. It is rewritten
// after every mutating trader operation and reloaded at process start.
type LedgerState struct {
	Cash           decimal.Decimal     `json:"cash"`
	Positions      map[string]Position `json:"positions"`
	TradeLog       []string            `json:"trade_log"`
	RealizedProfit decimal.Decimal     `json:"total_profit"`
	EquityHistory  []EquitySample      `json:"equity_history"`
}
