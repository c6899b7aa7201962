package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	obslogger "github.com/smallbiznis/vyapar/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/vyapar/internal/observability/metrics"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	StockSvc stockdomain.Service
	Clock    clock.Clock
	Metrics  *obsmetrics.Metrics `optional:"true"`
	Config   Config              `optional:"true"`
}

// Scheduler runs periodic maintenance jobs across every company.
type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	stockSvc stockdomain.Service
	metrics  *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.StockSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:       p.DB,
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:      p.Config.withDefaults(),
		clock:    p.Clock,
		stockSvc: p.StockSvc,
		metrics:  p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx = companyctx.WithActor(ctx, companyctx.Actor{Type: companyctx.ActorTypeSystem, ID: "scheduler"})
	log := obslogger.WithContext(ctx, s.log).With(zap.String("job", name))
	log.Debug("job started")

	processed, err := fn(ctx)
	fields := []zap.Field{
		zap.Int("processed", processed),
		zap.Duration("duration", s.clock.Now().Sub(start)),
	}
	if err == nil {
		log.Info("job finished", fields...)
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", append(fields, zap.Duration("timeout", s.cfg.JobTimeout), zap.Error(err))...)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, "stock_reconcile", s.StockReconcileJob)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// StockReconcileJob compares cached stock with the movement ledger for every
// company and logs each drift. It returns the number of companies checked.
func (s *Scheduler) StockReconcileJob(ctx context.Context) (int, error) {
	companyIDs, err := s.companyIDs(ctx)
	if err != nil {
		return 0, err
	}

	var jobErr error
	checked := 0
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			return checked, ctx.Err()
		}

		drifts, err := s.stockSvc.Reconcile(companyctx.WithCompanyID(ctx, companyID))
		if err != nil {
			jobErr = errors.Join(jobErr, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		checked++

		log := obslogger.WithCompany(s.log, companyID.String())
		for _, drift := range drifts {
			s.metrics.RecordStockDrift(ctx, drift.EntityType)
			log.Warn("stock drift detected",
				zap.String("entity_type", drift.EntityType),
				zap.String("entity_id", drift.EntityID.String()),
				zap.String("name", drift.Name),
				zap.String("cached_stock", drift.CachedStock.String()),
				zap.String("ledger_stock", drift.LedgerStock.String()),
			)
		}
	}
	return checked, jobErr
}

func (s *Scheduler) companyIDs(ctx context.Context) ([]snowflake.ID, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).
		Table("companies").
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, snowflake.ID(id))
	}
	return out, nil
}
