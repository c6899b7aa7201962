package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/vyapar/internal/config"
)

// Config is the slice of application config the telemetry stack reads.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	TracingEnabled bool
	MetricsEnabled bool
	OTLPEndpoint   string
	OTLPProtocol   string
	SamplingRatio  float64

	SlowQuery time.Duration
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "vyapar"
	}
	protocol := strings.ToLower(strings.TrimSpace(cfg.OTLPProtocol))
	if protocol == "" {
		protocol = "grpc"
	}
	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if level == "" {
		level = "info"
	}

	return Config{
		ServiceName:    serviceName,
		Environment:    strings.TrimSpace(cfg.Environment),
		Version:        strings.TrimSpace(cfg.AppVersion),
		LogLevel:       level,
		LogFormat:      strings.ToLower(strings.TrimSpace(cfg.LogFormat)),
		TracingEnabled: cfg.TracingEnabled,
		MetricsEnabled: cfg.MetricsEnabled,
		OTLPEndpoint:   strings.TrimSpace(cfg.OTLPEndpoint),
		OTLPProtocol:   protocol,
		SamplingRatio:  cfg.OTLPSamplingRatio,
		SlowQuery:      cfg.DBSlowQuery,
	}
}

// Debug is true for debug logging or any non-production environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
