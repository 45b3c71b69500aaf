package forecast

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"scalpwatch/src/model"
)

// These models are an external signal source for the dashboard, not
// trading logic: nothing in the trader consumes them.

var ErrInsufficientHistory = errors.New("insufficient history for forecast")

const (
	shortWindowBars = 30
	minTrendBars    = 5

	secondsPerDay = 86400.0
)

// MilestoneDays are the daily-forecast horizons surfaced on the dashboard.
var MilestoneDays = []int{10, 30, 60, 90}

// Projection is one projected close.
type Projection struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Milestone is the projected price and percent change at a horizon.
type Milestone struct {
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change"`
}

// TrendForecast is the blended linear-trend projection.
type TrendForecast struct {
	CurrentPrice float64           `json:"current_price"`
	TrendPerDay  float64           `json:"trend_per_day"`
	Projections  []Projection      `json:"projections"`
	Milestones   map[int]Milestone `json:"forecasts"`
}

// LinearTrend fits two least-squares lines over Unix-time x values, one on
// the full window and one on the last 30 bars, and walks the projection
// forward blending the short slope into the long one: full short weight
// decaying to 0.8 over days 1-10, to zero over days 10-30, long-only after.
func LinearTrend(bars []model.Bar, steps int) (*TrendForecast, error) {
	if len(bars) < minTrendBars {
		return nil, ErrInsufficientHistory
	}
	if steps <= 0 {
		steps = 90
	}

	xs := make([]float64, len(bars))
	ys := make([]float64, len(bars))
	for i, b := range bars {
		xs[i] = float64(b.Timestamp.Unix())
		ys[i] = b.Close
	}

	longSlope := leastSquaresSlope(xs, ys)

	shortStart := len(bars) - shortWindowBars
	if shortStart < 0 {
		shortStart = 0
	}
	shortSlope := leastSquaresSlope(xs[shortStart:], ys[shortStart:])

	current := ys[len(ys)-1]
	lastDate := bars[len(bars)-1].Timestamp

	projections := make([]Projection, 0, steps)
	price := current
	for day := 1; day <= steps; day++ {
		slope := blendedSlope(day, shortSlope, longSlope)
		price += slope * secondsPerDay
		projections = append(projections, Projection{
			Date:  lastDate.AddDate(0, 0, day),
			Price: price,
		})
	}

	milestones := make(map[int]Milestone, len(MilestoneDays))
	for _, day := range MilestoneDays {
		idx := day - 1
		if idx >= len(projections) {
			idx = len(projections) - 1
		}
		p := projections[idx].Price
		milestones[day] = Milestone{
			Price:         p,
			ChangePercent: (p - current) / current * 100,
		}
	}

	return &TrendForecast{
		CurrentPrice: current,
		TrendPerDay:  longSlope * secondsPerDay,
		Projections:  projections,
		Milestones:   milestones,
	}, nil
}

// blendedSlope weights the short-term slope by recency of the horizon day.
func blendedSlope(day int, short, long float64) float64 {
	var weightShort float64
	switch {
	case day <= 10:
		weightShort = 1.0 - 0.2*(float64(day)/10.0)
	case day <= 30:
		progress := float64(day-10) / 20.0
		weightShort = 0.8 * (1.0 - progress)
	default:
		weightShort = 0.0
	}
	return short*weightShort + long*(1.0-weightShort)
}

func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// GBMForecast summarizes Monte Carlo terminal prices under geometric
// Brownian motion calibrated from daily log returns.
type GBMForecast struct {
	Mean       float64 `json:"mean"`
	P5         float64 `json:"p5"`
	P95        float64 `json:"p95"`
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
}

// MonteCarloGBM simulates paths terminal prices over horizonDays. The seed
// makes simulations reproducible for the dashboard.
func MonteCarloGBM(bars []model.Bar, horizonDays, paths int, seed int64) (*GBMForecast, error) {
	if len(bars) < 2 {
		return nil, ErrInsufficientHistory
	}
	if horizonDays <= 0 {
		horizonDays = 30
	}
	if paths <= 0 {
		paths = 1000
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Close, bars[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) == 0 {
		return nil, ErrInsufficientHistory
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mu := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mu
		variance += d * d
	}
	if len(returns) > 1 {
		variance /= float64(len(returns) - 1)
	}
	sigma := math.Sqrt(variance)

	current := bars[len(bars)-1].Close
	rng := rand.New(rand.NewSource(seed))
	horizon := float64(horizonDays)

	terminal := make([]float64, paths)
	var total float64
	for i := 0; i < paths; i++ {
		z := rng.NormFloat64()
		drift := (mu - 0.5*sigma*sigma) * horizon
		diffusion := sigma * math.Sqrt(horizon) * z
		terminal[i] = current * math.Exp(drift+diffusion)
		total += terminal[i]
	}
	sort.Float64s(terminal)

	return &GBMForecast{
		Mean:       total / float64(paths),
		P5:         terminal[paths*5/100],
		P95:        terminal[paths*95/100],
		Drift:      mu,
		Volatility: sigma,
	}, nil
}
