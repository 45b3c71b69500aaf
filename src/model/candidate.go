package model

// Candidate is a single screener hit. Candidates are produced fresh on
// every scan cycle and never mutated or persisted.
type Candidate struct {
	Ticker        string   `json:"ticker"`
	Price         float64  `json:"price"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
	RSI           float64  `json:"rsi"`
	VolumeRatio   float64  `json:"vol_ratio"`
	ChangePercent float64  `json:"change_pct"`
}

// MarketStar is a simple top-mover entry ranked by percent change.
type MarketStar struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change"`
}
