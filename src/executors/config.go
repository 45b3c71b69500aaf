package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ScanInterval   time.Duration `envconfig:"SCAN_INTERVAL" default:"60s"`
	ClosedInterval time.Duration `envconfig:"CLOSED_INTERVAL" default:"5m"`
	ErrorBackoff   time.Duration `envconfig:"ERROR_BACKOFF" default:"30s"`
	InitialBalance float64       `envconfig:"INITIAL_BALANCE" default:"10000"`
	BuyNotional    float64       `envconfig:"BUY_NOTIONAL" default:"2000"`
	MinEntryScore  int           `envconfig:"MIN_ENTRY_SCORE" default:"50"`
	StateDir       string        `envconfig:"STATE_DIR" default:"."`
	TickerDBPath   string        `envconfig:"TICKER_DB_PATH"`
	Version        string        `envconfig:"BOT_VERSION" default:"1.0.0"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
