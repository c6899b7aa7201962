package scheduler

import (
	"strings"
	"time"

	"github.com/smallbiznis/vyapar/internal/config"
)

// Config controls scheduler intervals.
type Config struct {
	Enabled     bool
	RunInterval time.Duration
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		RunInterval: time.Hour,
		JobTimeout:  5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// ProvideConfig keeps background jobs off in test environments.
func ProvideConfig(cfg config.Config) Config {
	sc := DefaultConfig()
	if strings.EqualFold(strings.TrimSpace(cfg.Environment), "test") {
		sc.Enabled = false
	}
	return sc
}
