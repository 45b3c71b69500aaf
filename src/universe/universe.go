package universe

import (
	"encoding/json"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
)

// Default is the fixed NSE universe scanned when no ticker database file
// is configured.
var Default = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "ICICIBANK.NS", "INFY.NS",
	"BHARTIARTL.NS", "SBIN.NS", "LICI.NS", "ITC.NS", "HINDUNILVR.NS",
	"LT.NS", "BAJFINANCE.NS", "HCLTECH.NS", "MARUTI.NS", "SUNPHARMA.NS",
	"ADANIENT.NS", "TATAMOTORS.NS", "AXISBANK.NS", "ONGC.NS", "TITAN.NS",
}

type tickerEntry struct {
	Symbol string `json:"symbol"`
}

// Load reads an exchange symbol database file and qualifies each entry
// for NSE. A missing or empty path falls back to the default universe.
func Load(path string) []string {
	if path == "" {
		return Default
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithField("path", path).WithError(err).Warn("ticker db unavailable, using default universe")
		return Default
	}

	var entries []tickerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.WithField("path", path).WithError(err).Warn("ticker db unreadable, using default universe")
		return Default
	}
	if len(entries) == 0 {
		return Default
	}

	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Symbol == "" {
			continue
		}
		tickers = append(tickers, fmt.Sprintf("%s.NS", e.Symbol))
	}
	if len(tickers) == 0 {
		return Default
	}
	return tickers
}
