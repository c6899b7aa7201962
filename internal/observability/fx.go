package observability

import (
	"github.com/smallbiznis/vyapar/internal/observability/logger"
	"github.com/smallbiznis/vyapar/internal/observability/metrics"
	"github.com/smallbiznis/vyapar/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config {
			return logger.Config{
				ServiceName: cfg.ServiceName,
				Environment: cfg.Environment,
				Version:     cfg.Version,
				Level:       cfg.LogLevel,
				Format:      cfg.LogFormat,
				Debug:       cfg.Debug(),
			}
		},
		logger.New,
		func(cfg Config) logger.GormLoggerConfig {
			gc := logger.DefaultGormLoggerConfig()
			if cfg.SlowQuery > 0 {
				gc.SlowThreshold = cfg.SlowQuery
			}
			if cfg.Debug() {
				gc.Level = gormlogger.Info
			}
			return gc
		},
		func(cfg Config) tracing.Config {
			return tracing.Config{
				Enabled:          cfg.TracingEnabled,
				ServiceName:      cfg.ServiceName,
				ServiceVersion:   cfg.Version,
				Environment:      cfg.Environment,
				ExporterEndpoint: cfg.OTLPEndpoint,
				ExporterProtocol: cfg.OTLPProtocol,
				SamplingRatio:    cfg.SamplingRatio,
			}
		},
		tracing.NewProvider,
		func(cfg Config) metrics.Config {
			return metrics.Config{
				Enabled:          cfg.MetricsEnabled,
				ExporterEndpoint: cfg.OTLPEndpoint,
				ExporterProtocol: cfg.OTLPProtocol,
				ServiceName:      cfg.ServiceName,
				Environment:      cfg.Environment,
			}
		},
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.NewTxMetrics,
	),
	// The tracer provider installs the global propagator; force construction.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
