package marketdata

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL        string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://query1.finance.yahoo.com"`
	RequestTimeout time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"15s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
