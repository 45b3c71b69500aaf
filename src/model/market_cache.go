package model

// TickerStats is one universe entry in the market-wide cache.
type TickerStats struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Change1D  float64 `json:"change_1d"`
	Change5D  float64 `json:"change_5d"`
	Change30D float64 `json:"change_30d"`
	Volume    int64   `json:"volume"`
}

// MarketCache is the periodically refreshed market-wide snapshot consumed
// opportunistically by the dashboard.
type MarketCache struct {
	LastUpdated     string        `json:"last_updated"`
	TopGainers1D    []TickerStats `json:"top_gainers_1d"`
	TopGainers30D   []TickerStats `json:"top_gainers_30d"`
	TopActiveVolume []TickerStats `json:"top_active_volume"`
	AllStats        []TickerStats `json:"all_stats"`
}
