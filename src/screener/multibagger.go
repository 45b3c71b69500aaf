package screener

import (
	"context"
	"sort"

	"scalpwatch/src/indicators"
	"scalpwatch/src/model"
)

// Strategy selects the multibagger heuristic applied per ticker.
type Strategy string

const (
	StrategyCANSLIM       Strategy = "can_slim"
	StrategyTrendTemplate Strategy = "trend_template"
	StrategyMoonshot      Strategy = "moonshot"
	StrategyStrongFormula Strategy = "strong_formula"
)

// Multibagger cutoffs, inherited as-is.
const (
	multibaggerWindowDays = 365
	multibaggerMinBars    = 100
	multibaggerBaseScore  = 50
	multibaggerScoreFloor = 60
)

// MultibaggerCandidates applies the selected long-horizon heuristic over
// ~1 year of daily history plus a fresh quote. The universe is shuffled
// first to remove alphabetical bias. Results below the 60-point floor are
// discarded; the top limit survivors are returned strongest first.
func (s *Screener) MultibaggerCandidates(ctx context.Context, tickers []string, limit int, strategy Strategy) []model.Candidate {
	if limit <= 0 {
		limit = 10
	}

	scanList := append([]string(nil), tickers...)
	s.shuffle(scanList)

	var results []model.Candidate

	for _, ticker := range scanList {
		bars, err := s.data.DailyHistory(ctx, ticker, multibaggerWindowDays)
		if err != nil || len(bars) < multibaggerMinBars {
			continue
		}

		price, err := s.data.Quote(ctx, ticker)
		if err != nil || price <= 0 {
			continue
		}

		score, reasons := scoreMultibagger(strategy, price, bars)
		if score < multibaggerScoreFloor {
			continue
		}

		results = append(results, model.Candidate{
			Ticker:  ticker,
			Price:   price,
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func scoreMultibagger(strategy Strategy, price float64, bars []model.Bar) (int, []string) {
	closes := model.Closes(bars)
	volumes := model.Volumes(bars)

	score := multibaggerBaseScore
	var reasons []string

	switch strategy {
	case StrategyCANSLIM:
		hi52, err1 := indicators.Max(closes)
		ma50, err2 := indicators.SMA(closes, 50)
		ma200, err3 := indicators.SMA(closes, 200)
		if err1 != nil || err2 != nil || err3 != nil || hi52 == 0 {
			return 0, nil
		}
		distHigh := (hi52 - price) / hi52
		if price > ma50 && ma50 > ma200 && distHigh < 0.20 {
			score += 40
			reasons = append(reasons, "Institutional Breakout Trend")
		} else {
			score -= 20
		}

	case StrategyTrendTemplate:
		ma50, err1 := indicators.SMA(closes, 50)
		ma150, err2 := indicators.SMA(closes, 150)
		ma200, err3 := indicators.SMA(closes, 200)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, nil
		}
		if price > ma50 && ma50 > ma150 && ma150 > ma200 {
			score += 45
			reasons = append(reasons, "Perfect Stage-2 Alignment")
		} else {
			score -= 30
		}

	case StrategyMoonshot:
		volRatio, err := indicators.VolumeRatio(volumes, 20)
		if err != nil {
			return 0, nil
		}
		if volRatio > 2.0 {
			score += 50
			reasons = append(reasons, "High Volume Accumulation")
		} else {
			score -= 10
		}

	default: // StrategyStrongFormula
		ma20, err1 := indicators.SMA(closes, 20)
		ma50, err2 := indicators.SMA(closes, 50)
		if err1 != nil || err2 != nil {
			return 0, nil
		}
		if price > ma20 && ma20 > ma50 {
			score += 20
			reasons = append(reasons, "Strong Price Action")
		}
		rsi, err := indicators.RSI(closes, 14)
		if err != nil {
			return 0, nil
		}
		if rsi > 40 && rsi < 70 {
			score += 20
			reasons = append(reasons, "Healthy RSI Structure")
		}
	}

	return score, reasons
}
