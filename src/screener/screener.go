package screener

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/indicators"
	"scalpwatch/src/model"
)

// MarketData is the slice of the market-data client the screener needs.
type MarketData interface {
	DailyHistory(ctx context.Context, ticker string, days int) ([]model.Bar, error)
	HourlyHistory(ctx context.Context, ticker string, days int) ([]model.Bar, error)
	Quote(ctx context.Context, ticker string) (float64, error)
}

// Scan windows and heuristic cutoffs. The cutoffs are inherited magic
// numbers kept as named constants rather than derived.
const (
	intradayWindowDays = 5
	intradayMinBars    = 20
	intradayScoreFloor = 35

	dailyWindowDays = 200
	dailyMinBars    = 60

	starsMinBars      = 23
	monthLookbackBars = 22

	topCandidates = 5
	dayStarCount  = 4
	monthStarCount = 2
)

// Screener converts raw per-ticker history into ranked trade candidates.
// Fetches are sequential within a scan; a per-ticker fetch or computation
// error silently drops the ticker from that cycle.
type Screener struct {
	data    MarketData
	log     *logger.Entry
	shuffle func([]string)
}

func New(data MarketData) *Screener {
	return &Screener{
		data: data,
		log:  logger.WithField("component", "Screener"),
		shuffle: func(tickers []string) {
			rand.Shuffle(len(tickers), func(i, j int) {
				tickers[i], tickers[j] = tickers[j], tickers[i]
			})
		},
	}
}

// ScreenIntraday scans for short-horizon scalping candidates on hourly
// bars and returns at most five, strongest first.
func (s *Screener) ScreenIntraday(ctx context.Context, tickers []string) []model.Candidate {
	var results []model.Candidate

	for _, ticker := range tickers {
		bars, err := s.data.HourlyHistory(ctx, ticker, intradayWindowDays)
		if err != nil || len(bars) < intradayMinBars {
			continue
		}

		m, err := extractIntradayMetrics(bars)
		if err != nil {
			s.log.WithField("ticker", ticker).WithError(err).Debug("intraday metrics skipped")
			continue
		}

		score, reasons := scoreIntraday(m)
		if score < intradayScoreFloor {
			continue
		}

		results = append(results, model.Candidate{
			Ticker:        ticker,
			Price:         m.price,
			Score:         score,
			Reasons:       reasons,
			RSI:           m.rsi,
			VolumeRatio:   m.volumeRatio,
			ChangePercent: m.lastChangePct,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChangePercent > results[j].ChangePercent
	})

	if len(results) > topCandidates {
		results = results[:topCandidates]
	}
	return results
}

// ScreenMarket scans daily history for swing candidates and returns at
// most five, strongest first.
func (s *Screener) ScreenMarket(ctx context.Context, tickers []string) []model.Candidate {
	var results []model.Candidate

	for _, ticker := range tickers {
		bars, err := s.data.DailyHistory(ctx, ticker, dailyWindowDays)
		if err != nil || len(bars) < dailyMinBars {
			continue
		}

		m, err := extractDailyMetrics(bars)
		if err != nil {
			s.log.WithField("ticker", ticker).WithError(err).Debug("daily metrics skipped")
			continue
		}

		score, reasons := scoreDaily(m)

		results = append(results, model.Candidate{
			Ticker:        ticker,
			Price:         m.price,
			Score:         score,
			Reasons:       reasons,
			RSI:           m.rsi,
			VolumeRatio:   m.volumeRatio,
			ChangePercent: m.lastChangePct,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topCandidates {
		results = results[:topCandidates]
	}
	return results
}

// MarketStars ranks the universe by 1-day and ~1-month percent change and
// returns the four day stars and two month stars.
func (s *Screener) MarketStars(ctx context.Context, tickers []string) (day []model.MarketStar, month []model.MarketStar) {
	for _, ticker := range tickers {
		bars, err := s.data.DailyHistory(ctx, ticker, dailyWindowDays)
		if err != nil || len(bars) < starsMinBars {
			continue
		}

		closes := model.Closes(bars)
		price := closes[len(closes)-1]

		dayChange, err := indicators.LastChangePercent(closes)
		if err != nil {
			continue
		}
		monthChange, err := indicators.ChangePercentOver(closes, monthLookbackBars)
		if err != nil {
			continue
		}

		day = append(day, model.MarketStar{Ticker: ticker, Price: price, ChangePercent: dayChange})
		month = append(month, model.MarketStar{Ticker: ticker, Price: price, ChangePercent: monthChange})
	}

	sort.SliceStable(day, func(i, j int) bool { return day[i].ChangePercent > day[j].ChangePercent })
	sort.SliceStable(month, func(i, j int) bool { return month[i].ChangePercent > month[j].ChangePercent })

	if len(day) > dayStarCount {
		day = day[:dayStarCount]
	}
	if len(month) > monthStarCount {
		month = month[:monthStarCount]
	}
	return day, month
}

// ----- metric extraction -----

type intradayMetrics struct {
	price         float64
	rsi           float64
	sma20         float64
	volumeRatio   float64
	lastChangePct float64
}

func extractIntradayMetrics(bars []model.Bar) (intradayMetrics, error) {
	closes := model.Closes(bars)
	volumes := model.Volumes(bars)

	rsi, err := indicators.RSI(closes, 14)
	if err != nil {
		return intradayMetrics{}, err
	}
	sma20, err := indicators.SMA(closes, 20)
	if err != nil {
		return intradayMetrics{}, err
	}
	volRatio, err := indicators.VolumeRatio(volumes, 20)
	if err != nil {
		return intradayMetrics{}, err
	}
	change, err := indicators.LastChangePercent(closes)
	if err != nil {
		return intradayMetrics{}, err
	}

	return intradayMetrics{
		price:         closes[len(closes)-1],
		rsi:           rsi,
		sma20:         sma20,
		volumeRatio:   volRatio,
		lastChangePct: change,
	}, nil
}

type dailyMetrics struct {
	price         float64
	rsi           float64
	sma20         float64
	sma50         float64
	volumeRatio   float64
	lastChangePct float64
}

func extractDailyMetrics(bars []model.Bar) (dailyMetrics, error) {
	closes := model.Closes(bars)
	volumes := model.Volumes(bars)

	rsi, err := indicators.RSI(closes, 14)
	if err != nil {
		return dailyMetrics{}, err
	}
	sma20, err := indicators.SMA(closes, 20)
	if err != nil {
		return dailyMetrics{}, err
	}
	sma50, err := indicators.SMA(closes, 50)
	if err != nil {
		return dailyMetrics{}, err
	}
	volRatio, err := indicators.VolumeRatio(volumes, 20)
	if err != nil {
		return dailyMetrics{}, err
	}
	change, err := indicators.LastChangePercent(closes)
	if err != nil {
		return dailyMetrics{}, err
	}

	return dailyMetrics{
		price:         closes[len(closes)-1],
		rsi:           rsi,
		sma20:         sma20,
		sma50:         sma50,
		volumeRatio:   volRatio,
		lastChangePct: change,
	}, nil
}

// ----- additive scoring -----

// scoreIntraday applies the scalping heuristic: a green last bar plus any
// one of trend, momentum or volume clears the 35-point floor.
func scoreIntraday(m intradayMetrics) (int, []string) {
	score := 0
	var reasons []string

	switch {
	case m.volumeRatio >= 1.5:
		score += 30
		reasons = append(reasons, fmt.Sprintf("Vol Burst (%.1fx)", m.volumeRatio))
	case m.volumeRatio >= 1.1:
		score += 15
		reasons = append(reasons, fmt.Sprintf("Rising Vol (%.1fx)", m.volumeRatio))
	}

	if m.rsi >= 45 && m.rsi <= 85 {
		score += 25
		reasons = append(reasons, fmt.Sprintf("Momentum (%.0f)", m.rsi))
	}

	if m.price > m.sma20 {
		score += 20
		reasons = append(reasons, "Uptrend")
	}

	if m.lastChangePct > 0 {
		score += 20
		reasons = append(reasons, fmt.Sprintf("Appreciating (+%.2f%%)", m.lastChangePct))
	}

	return score, reasons
}

// scoreDaily applies the swing heuristic (max 100).
func scoreDaily(m dailyMetrics) (int, []string) {
	score := 0
	var reasons []string

	if m.price > m.sma20 {
		score += 20
		reasons = append(reasons, "Price > 20d Avg")
	}
	if m.sma20 > m.sma50 {
		score += 20
		reasons = append(reasons, "Golden Trend")
	}

	switch {
	case m.rsi >= 40 && m.rsi <= 70:
		score += 30
		reasons = append(reasons, fmt.Sprintf("Healthy RSI (%.0f)", m.rsi))
	case m.rsi > 70:
		score += 10
		reasons = append(reasons, "Overbought")
	default:
		score += 5
		reasons = append(reasons, "Oversold")
	}

	switch {
	case m.volumeRatio >= 1.5:
		score += 30
		reasons = append(reasons, fmt.Sprintf("Vol Spike (%.1fx)", m.volumeRatio))
	case m.volumeRatio >= 1.0:
		score += 20
	}

	return score, reasons
}
