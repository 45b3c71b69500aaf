package marketdata

// REST CLIENT FOR THE CHART/QUOTE PROVIDER
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"scalpwatch/src/model"
)

const (
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	chartPathFormat = "/v8/finance/chart/%s"
)

// ErrNoData is returned when the provider answered but carried no usable
// bars for the ticker. Callers treat it like any other per-ticker failure
// and drop the ticker from the cycle.
var ErrNoData = errors.New("no market data returned")

// Client fetches OHLCV history and point-in-time quotes. All calls are
// synchronous; one scan cycle issues them sequentially per ticker.
type Client struct {
	baseURL string
	http    *resty.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp).
		SetHeader("User-Agent", "scalpwatch/1.0")

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	return false
}

// chartResponse mirrors the provider's chart payload. Quote arrays may
// carry nulls for halted sessions, so every field is a pointer slice.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchChart(ctx context.Context, ticker, rng, interval string) ([]model.Bar, float64, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"range":    rng,
			"interval": interval,
			"events":   "history",
		}).
		Get(fmt.Sprintf(chartPathFormat, ticker))
	if err != nil {
		return nil, 0, err
	}

	raw := resp.Body()
	if resp.StatusCode() != 200 {
		return nil, 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(raw))
	}

	var payload chartResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, 0, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, 0, fmt.Errorf("chart error: %s (%s)", payload.Chart.Error.Description, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, 0, ErrNoData
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, 0, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Bars with a null close are unusable and skipped outright.
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := model.Bar{
			Timestamp: time.Unix(ts, 0),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, 0, ErrNoData
	}

	last := bars[len(bars)-1].Close
	if result.Meta.RegularMarketPrice != nil {
		last = *result.Meta.RegularMarketPrice
	}

	return bars, last, nil
}

// DailyHistory fetches daily bars over the trailing calendar window.
func (c *Client) DailyHistory(ctx context.Context, ticker string, days int) ([]model.Bar, error) {
	bars, _, err := c.fetchChart(ctx, ticker, rangeForDays(days), "1d")
	if err != nil {
		logger.WithFields(logger.Fields{
			"ticker": ticker,
			"days":   days,
		}).WithError(err).Debug("daily history fetch failed")
		return nil, err
	}
	return bars, nil
}

// HourlyHistory fetches hourly bars over the trailing calendar window.
func (c *Client) HourlyHistory(ctx context.Context, ticker string, days int) ([]model.Bar, error) {
	bars, _, err := c.fetchChart(ctx, ticker, rangeForDays(days), "1h")
	if err != nil {
		logger.WithFields(logger.Fields{
			"ticker": ticker,
			"days":   days,
		}).WithError(err).Debug("hourly history fetch failed")
		return nil, err
	}
	return bars, nil
}

// Quote fetches the latest traded price for a single ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (float64, error) {
	_, last, err := c.fetchChart(ctx, ticker, "1d", "1m")
	if err != nil {
		logger.WithField("ticker", ticker).WithError(err).Debug("quote fetch failed")
		return 0, err
	}
	return last, nil
}

// Snapshot fetches per-ticker monthly stats for the market cache job.
// Failures are per-ticker: a bad symbol is skipped, the batch continues.
func (c *Client) Snapshot(ctx context.Context, tickers []string) []model.TickerStats {
	stats := make([]model.TickerStats, 0, len(tickers))

	for _, ticker := range tickers {
		bars, last, err := c.fetchChart(ctx, ticker, "1mo", "1d")
		if err != nil || len(bars) < 2 {
			continue
		}

		closes := model.Closes(bars)
		prev := closes[len(closes)-2]
		if prev == 0 {
			continue
		}

		entry := model.TickerStats{
			Ticker:   ticker,
			Price:    last,
			Change1D: (closes[len(closes)-1] - prev) / prev * 100,
			Volume:   int64(bars[len(bars)-1].Volume),
		}
		if len(closes) >= 5 && closes[len(closes)-5] != 0 {
			entry.Change5D = (closes[len(closes)-1] - closes[len(closes)-5]) / closes[len(closes)-5] * 100
		}
		if len(closes) >= 20 && closes[0] != 0 {
			entry.Change30D = (closes[len(closes)-1] - closes[0]) / closes[0] * 100
		}

		stats = append(stats, entry)
	}

	return stats
}

// rangeForDays maps a calendar-day window onto the provider's coarse range
// buckets.
func rangeForDays(days int) string {
	switch {
	case days <= 1:
		return "1d"
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 93:
		return "3mo"
	case days <= 186:
		return "6mo"
	case days <= 366:
		return "1y"
	default:
		return "2y"
	}
}
