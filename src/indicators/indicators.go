package indicators

import "errors"

// ErrInsufficientData is returned when a series is shorter than the
// indicator window requires.
var ErrInsufficientData = errors.New("insufficient data for indicator window")

// RSI computes the Relative Strength Index over the trailing window using
// simple rolling-mean average gain/loss. A window with zero average loss
// yields 100 rather than dividing by zero.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period+1 {
		return 0, ErrInsufficientData
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// SMA returns the simple moving average of the trailing window.
func SMA(values []float64, window int) (float64, error) {
	if window <= 0 || len(values) < window {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), nil
}

// LastChangePercent returns the percent change between the last two values.
func LastChangePercent(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, ErrInsufficientData
	}
	prev := values[len(values)-2]
	if prev == 0 {
		return 0, ErrInsufficientData
	}
	return (values[len(values)-1] - prev) / prev * 100, nil
}

// ChangePercentOver returns the percent change between the last value and
// the value lookback bars earlier.
func ChangePercentOver(values []float64, lookback int) (float64, error) {
	if lookback <= 0 || len(values) < lookback+1 {
		return 0, ErrInsufficientData
	}
	base := values[len(values)-1-lookback]
	if base == 0 {
		return 0, ErrInsufficientData
	}
	return (values[len(values)-1] - base) / base * 100, nil
}

// VolumeRatio returns current volume over its trailing window average.
// A zero average is reported as a neutral 1.0 ratio.
func VolumeRatio(volumes []float64, window int) (float64, error) {
	if len(volumes) == 0 {
		return 0, ErrInsufficientData
	}
	avg, err := SMA(volumes, window)
	if err != nil {
		return 0, err
	}
	if avg == 0 {
		return 1.0, nil
	}
	return volumes[len(volumes)-1] / avg, nil
}

// Max returns the maximum of a series.
func Max(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}
