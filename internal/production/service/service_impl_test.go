package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/clock"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	productrepo "github.com/smallbiznis/vyapar/internal/product/repository"
	productiondomain "github.com/smallbiznis/vyapar/internal/production/domain"
	productionrepo "github.com/smallbiznis/vyapar/internal/production/repository"
	productionservice "github.com/smallbiznis/vyapar/internal/production/service"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	rawmaterialrepo "github.com/smallbiznis/vyapar/internal/rawmaterial/repository"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	stockrepo "github.com/smallbiznis/vyapar/internal/stock/repository"
	stockservice "github.com/smallbiznis/vyapar/internal/stock/service"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       productiondomain.Service
	companyID snowflake.ID
	ctx       context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	stockSvc := stockservice.New(stockservice.Params{
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           clk,
		Repo:            stockrepo.Provide(),
		ProductRepo:     productrepo.Provide(),
		RawMaterialRepo: rawmaterialrepo.Provide(),
	})
	svc := productionservice.NewService(productionservice.ServiceParam{
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           clk,
		Repo:            productionrepo.Provide(),
		ProductRepo:     productrepo.Provide(),
		RawMaterialRepo: rawmaterialrepo.Provide(),
		StockSvc:        stockSvc,
	})

	companyID := node.Generate()
	return fixture{
		db:        db,
		node:      node,
		svc:       svc,
		companyID: companyID,
		ctx:       testutil.CompanyContext(companyID),
	}
}

func (f fixture) seedProduct(t *testing.T, name string, stock int64) productdomain.Product {
	t.Helper()
	now := time.Now().UTC()
	product := productdomain.Product{
		ID:        f.node.Generate(),
		CompanyID: f.companyID,
		Name:      name,
		Unit:      "pcs",
		Price:     decimal.NewFromInt(120),
		Stock:     decimal.NewFromInt(stock),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, productrepo.Provide().Insert(f.ctx, f.db, &product))
	return product
}

func (f fixture) seedMaterial(t *testing.T, name, cost, stock string) rawmaterialdomain.RawMaterial {
	t.Helper()
	now := time.Now().UTC()
	material := rawmaterialdomain.RawMaterial{
		ID:                f.node.Generate(),
		CompanyID:         f.companyID,
		Name:              name,
		Unit:              "kg",
		StockQuantity:     decimal.RequireFromString(stock),
		CostPrice:         decimal.RequireFromString(cost),
		LowStockThreshold: decimal.NewFromInt(10),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, rawmaterialrepo.Provide().Insert(f.ctx, f.db, &material))
	return material
}

func (f fixture) movementCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&stockdomain.StockMovement{}).Count(&count).Error)
	return count
}

func TestCostPerUnitRounding(t *testing.T) {
	cases := []struct {
		total    string
		quantity string
		want     string
	}{
		{"100", "3", "33.33"},
		{"200", "3", "66.67"},
		{"55.5", "2", "27.75"},
		{"10", "0", "0"},
	}
	for _, tc := range cases {
		got := productionservice.CostPerUnit(decimal.RequireFromString(tc.total), decimal.RequireFromString(tc.quantity))
		assert.Equal(t, tc.want, got.String(), "%s / %s", tc.total, tc.quantity)
	}
}

func TestCreateConvertsMaterialsIntoProduct(t *testing.T) {
	f := newFixture(t)
	oil := f.seedProduct(t, "Mustard oil 1L", 4)
	seed := f.seedMaterial(t, "Mustard seed", "60", "50")
	bottle := f.seedMaterial(t, "Bottle", "8.50", "100")

	batch, err := f.svc.Create(f.ctx, productiondomain.CreateProductionRequest{
		ProductID:        oil.ID.String(),
		QuantityProduced: decimal.NewFromInt(3),
		Items: []productiondomain.CreateProductionItem{
			{RawMaterialID: seed.ID.String(), QuantityUsed: decimal.NewFromInt(1)},
			{RawMaterialID: bottle.ID.String(), QuantityUsed: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "BATCH-00001", batch.Number)
	assert.Equal(t, "85.5", batch.TotalCost.String())
	assert.Equal(t, "28.5", batch.CostPerUnit.String())
	require.Len(t, batch.Items, 2)
	assert.True(t, batch.Items[1].CostPrice.Equal(decimal.RequireFromString("8.5")))

	product, err := productrepo.Provide().FindByID(f.ctx, f.db, f.companyID, oil.ID)
	require.NoError(t, err)
	assert.True(t, product.Stock.Equal(decimal.NewFromInt(7)))

	material, err := rawmaterialrepo.Provide().FindByID(f.ctx, f.db, f.companyID, seed.ID)
	require.NoError(t, err)
	assert.True(t, material.StockQuantity.Equal(decimal.NewFromInt(49)))

	var movements []stockdomain.StockMovement
	require.NoError(t, f.db.Where("reference_id = ?", batch.ID).Order("created_at asc, id asc").Find(&movements).Error)
	require.Len(t, movements, 3)
	assert.Equal(t, stockdomain.MovementProductionOut, movements[0].MovementType)
	assert.Equal(t, stockdomain.MovementProductionOut, movements[1].MovementType)
	assert.Equal(t, stockdomain.MovementProductionIn, movements[2].MovementType)
	assert.True(t, movements[2].QuantityChange.Equal(decimal.NewFromInt(3)))
}

func TestCreateInsufficientMaterialLeavesNoMovements(t *testing.T) {
	f := newFixture(t)
	oil := f.seedProduct(t, "Mustard oil 1L", 4)
	seed := f.seedMaterial(t, "Mustard seed", "60", "50")
	bottle := f.seedMaterial(t, "Bottle", "8.50", "2")

	_, err := f.svc.Create(f.ctx, productiondomain.CreateProductionRequest{
		ProductID:        oil.ID.String(),
		QuantityProduced: decimal.NewFromInt(3),
		Items: []productiondomain.CreateProductionItem{
			{RawMaterialID: seed.ID.String(), QuantityUsed: decimal.NewFromInt(1)},
			{RawMaterialID: bottle.ID.String(), QuantityUsed: decimal.NewFromInt(3)},
		},
	})
	var insufficient *stockdomain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "Bottle", insufficient.Name)

	assert.Zero(t, f.movementCount(t))
	material, err := rawmaterialrepo.Provide().FindByID(f.ctx, f.db, f.companyID, seed.ID)
	require.NoError(t, err)
	assert.True(t, material.StockQuantity.Equal(decimal.NewFromInt(50)))
	product, err := productrepo.Provide().FindByID(f.ctx, f.db, f.companyID, oil.ID)
	require.NoError(t, err)
	assert.True(t, product.Stock.Equal(decimal.NewFromInt(4)))

	list, err := f.svc.List(f.ctx, productiondomain.ListProductionRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Batches)
}

func TestCreateRejectsNonPositiveQuantityFirst(t *testing.T) {
	f := newFixture(t)
	seed := f.seedMaterial(t, "Mustard seed", "60", "50")

	for _, qty := range []int64{0, -2} {
		_, err := f.svc.Create(f.ctx, productiondomain.CreateProductionRequest{
			ProductID:        "not-an-id",
			QuantityProduced: decimal.NewFromInt(qty),
			Items:            []productiondomain.CreateProductionItem{{RawMaterialID: seed.ID.String(), QuantityUsed: decimal.NewFromInt(1)}},
		})
		assert.ErrorIs(t, err, productiondomain.ErrInvalidQuantityProduced)
	}
	assert.Zero(t, f.movementCount(t))

	_, err := f.svc.Create(f.ctx, productiondomain.CreateProductionRequest{
		ProductID:        f.node.Generate().String(),
		QuantityProduced: decimal.NewFromInt(1),
		Items:            []productiondomain.CreateProductionItem{{RawMaterialID: seed.ID.String(), QuantityUsed: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, productiondomain.ErrProductNotFound)
}
