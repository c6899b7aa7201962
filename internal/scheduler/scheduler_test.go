package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/clock"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/config"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fakeStockService struct {
	stockdomain.Service

	mu       sync.Mutex
	seen     []snowflake.ID
	actors   []companyctx.Actor
	drifts   map[snowflake.ID][]stockdomain.Drift
	failures map[snowflake.ID]error
}

func (f *fakeStockService) Reconcile(ctx context.Context) ([]stockdomain.Drift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, errors.New("missing company")
	}
	f.seen = append(f.seen, companyID)
	f.actors = append(f.actors, companyctx.ActorFromContext(ctx))
	if err := f.failures[companyID]; err != nil {
		return nil, err
	}
	return f.drifts[companyID], nil
}

func seedCompanies(t *testing.T, db *gorm.DB, ids ...snowflake.ID) {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range ids {
		require.NoError(t, db.Create(&companydomain.Company{
			ID:        id,
			Name:      "Company " + id.String(),
			Slug:      "company-" + id.String(),
			CreatedAt: now,
			UpdatedAt: now,
		}).Error)
	}
}

func newTestScheduler(t *testing.T, stock stockdomain.Service, log *zap.Logger) (*Scheduler, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	sched, err := New(Params{
		DB:       db,
		Log:      log,
		StockSvc: stock,
		Clock:    clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return sched, db
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStockReconcileJobVisitsEveryCompany(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	productID := snowflake.ID(900)
	stock := &fakeStockService{
		drifts: map[snowflake.ID][]stockdomain.Drift{
			20: {{
				EntityType:  "product",
				EntityID:    productID,
				Name:        "Neem Soap",
				CachedStock: decimal.NewFromInt(10),
				LedgerStock: decimal.NewFromInt(8),
			}},
		},
	}
	sched, db := newTestScheduler(t, stock, zap.New(core))
	seedCompanies(t, db, 20, 10)

	checked, err := sched.StockReconcileJob(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	assert.Equal(t, []snowflake.ID{10, 20}, stock.seen)

	drifts := logs.FilterMessage("stock drift detected").All()
	require.Len(t, drifts, 1)
	fields := drifts[0].ContextMap()
	assert.Equal(t, "20", fields["company_id"])
	assert.Equal(t, productID.String(), fields["entity_id"])
	assert.Equal(t, "10", fields["cached_stock"])
	assert.Equal(t, "8", fields["ledger_stock"])
}

func TestStockReconcileJobContinuesAfterFailure(t *testing.T) {
	stock := &fakeStockService{
		failures: map[snowflake.ID]error{1: errors.New("boom")},
	}
	sched, db := newTestScheduler(t, stock, zap.NewNop())
	seedCompanies(t, db, 1, 2)

	checked, err := sched.StockReconcileJob(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, checked)
	assert.Len(t, stock.seen, 2)
}

func TestRunOnceActsAsSystem(t *testing.T) {
	stock := &fakeStockService{}
	sched, db := newTestScheduler(t, stock, zap.NewNop())
	seedCompanies(t, db, 7)

	require.NoError(t, sched.RunOnce(context.Background()))
	require.Len(t, stock.actors, 1)
	assert.Equal(t, companyctx.ActorTypeSystem, stock.actors[0].Type)
	assert.Equal(t, "scheduler", stock.actors[0].ID)
}

func TestRunOnceWrapsJobErrors(t *testing.T) {
	stock := &fakeStockService{
		failures: map[snowflake.ID]error{3: errors.New("locked")},
	}
	sched, db := newTestScheduler(t, stock, zap.NewNop())
	seedCompanies(t, db, 3)

	err := sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stock_reconcile")
}

func TestRunOnceSwallowsCancellation(t *testing.T) {
	sched, db := newTestScheduler(t, &fakeStockService{}, zap.NewNop())
	seedCompanies(t, db, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, sched.RunOnce(ctx))
}

func TestProvideConfigDisablesInTest(t *testing.T) {
	cfg := ProvideConfig(configFor("test"))
	assert.False(t, cfg.Enabled)

	cfg = ProvideConfig(configFor("production"))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.RunInterval)
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{JobTimeout: time.Second}.withDefaults()
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.Equal(t, time.Second, cfg.JobTimeout)
}

func configFor(env string) config.Config {
	return config.Config{Environment: env}
}
