package scheduler

import (
	"time"

	"github.com/koomyhq/koomy/internal/config"
)

// Config controls how often the recount sweep runs.
type Config struct {
	RunInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{RunInterval: cfg.Sweep.Interval}.withDefaults()
}
