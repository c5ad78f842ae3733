// internal/workers/trends/aggregate-signals/config.go
package aggregatesignals

import (
	"time"

	"trendmine/internal/signals"
)

type Config struct {
	Timeout         time.Duration
	DefaultWindow   signals.TimeWindow
	DefaultLocation signals.Location
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultWindow:   signals.Window7d,
		DefaultLocation: signals.LocationUS,
	}
}
