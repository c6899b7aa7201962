package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/docnumber"
	"github.com/smallbiznis/vyapar/internal/observability/metrics"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	productiondomain "github.com/smallbiznis/vyapar/internal/production/domain"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/pkg/db"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            productiondomain.Repository
	ProductRepo     productdomain.Repository
	RawMaterialRepo rawmaterialdomain.Repository
	StockSvc        stockdomain.Service
	AuditSvc        auditdomain.Service `optional:"true"`
	TxMetrics       *metrics.TxMetrics  `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID           *snowflake.Node
	clock           clock.Clock
	repo            productiondomain.Repository
	productRepo     productdomain.Repository
	rawMaterialRepo rawmaterialdomain.Repository
	stockSvc        stockdomain.Service
	auditSvc        auditdomain.Service
	txMetrics       *metrics.TxMetrics
}

func NewService(p ServiceParam) productiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("production.service"),

		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		productRepo:     p.ProductRepo,
		rawMaterialRepo: p.RawMaterialRepo,
		stockSvc:        p.StockSvc,
		auditSvc:        p.AuditSvc,
		txMetrics:       p.TxMetrics,
	}
}

type consumption struct {
	rawMaterialID snowflake.ID
	quantity      decimal.Decimal
}

// Create consumes the listed raw materials and adds the produced quantity to
// the finished product. Every stock change and movement happens in one
// transaction.
func (s *Service) Create(ctx context.Context, req productiondomain.CreateProductionRequest) (productiondomain.ProductionBatch, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}

	if !req.QuantityProduced.IsPositive() {
		return productiondomain.ProductionBatch{}, productiondomain.ErrInvalidQuantityProduced
	}
	if len(req.Items) == 0 {
		return productiondomain.ProductionBatch{}, productiondomain.ErrEmptyItems
	}
	productID, err := parseID(req.ProductID)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}

	consumptions := make([]consumption, 0, len(req.Items))
	for _, item := range req.Items {
		materialID, err := parseID(item.RawMaterialID)
		if err != nil {
			return productiondomain.ProductionBatch{}, err
		}
		if !item.QuantityUsed.IsPositive() {
			return productiondomain.ProductionBatch{}, productiondomain.ErrInvalidQuantityUsed
		}
		consumptions = append(consumptions, consumption{rawMaterialID: materialID, quantity: item.QuantityUsed})
	}

	product, err := s.productRepo.FindByID(ctx, s.db, companyID, productID)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}
	if product == nil || !product.IsActive {
		return productiondomain.ProductionBatch{}, productiondomain.ErrProductNotFound
	}

	now := s.clock.Now().UTC()
	batch := productiondomain.ProductionBatch{
		ID:               s.genID.Generate(),
		CompanyID:        companyID,
		ProductID:        product.ID,
		ProductName:      product.Name,
		QuantityProduced: req.QuantityProduced,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        now,
	}

	start := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := docnumber.Next(ctx, tx, productiondomain.ProductionBatch{}.TableName(), docnumber.ProductionTemplate, companyID, now)
		if err != nil {
			return err
		}
		batch.Number = number

		items := make([]*productiondomain.ProductionItem, 0, len(consumptions))
		totalCost := decimal.Zero
		for i, used := range consumptions {
			material, err := s.rawMaterialRepo.FindByID(ctx, tx, companyID, used.rawMaterialID)
			if err != nil {
				return err
			}
			if material == nil || !material.IsActive {
				return productiondomain.ErrRawMaterialNotFound
			}

			applied, err := s.stockSvc.ApplyRawMaterial(ctx, tx, stockdomain.Change{
				CompanyID:     companyID,
				EntityID:      material.ID,
				Quantity:      used.quantity.Neg(),
				MovementType:  stockdomain.MovementProductionOut,
				ReferenceType: stockdomain.ReferenceProductionBatch,
				ReferenceID:   batch.ID,
				Notes:         fmt.Sprintf("Consumed in %s", number),
			})
			if err != nil {
				return err
			}

			cost := used.quantity.Mul(applied.CostPrice)
			totalCost = totalCost.Add(cost)
			items = append(items, &productiondomain.ProductionItem{
				ID:              s.genID.Generate(),
				CompanyID:       companyID,
				BatchID:         batch.ID,
				RawMaterialID:   material.ID,
				RawMaterialName: applied.Name,
				QuantityUsed:    used.quantity,
				CostPrice:       applied.CostPrice,
				TotalCost:       cost.Round(2),
				Position:        i,
			})
		}

		if _, err := s.stockSvc.ApplyProduct(ctx, tx, stockdomain.Change{
			CompanyID:     companyID,
			EntityID:      product.ID,
			Quantity:      batch.QuantityProduced,
			MovementType:  stockdomain.MovementProductionIn,
			ReferenceType: stockdomain.ReferenceProductionBatch,
			ReferenceID:   batch.ID,
			Notes:         fmt.Sprintf("Produced in %s", number),
		}); err != nil {
			return err
		}

		batch.TotalCost = totalCost.Round(2)
		batch.CostPerUnit = CostPerUnit(totalCost, batch.QuantityProduced)

		if err := s.repo.Insert(ctx, tx, &batch); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return productiondomain.ErrDuplicateNumber
			}
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}

		batch.Items = make([]productiondomain.ProductionItem, 0, len(items))
		for _, item := range items {
			batch.Items = append(batch.Items, *item)
		}
		return nil
	})
	s.txMetrics.Observe(metrics.TxProductionCreate, start, err)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}

	s.log.Info("production batch created",
		zap.String("company_id", companyID.String()),
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_number", batch.Number),
		zap.String("quantity_produced", batch.QuantityProduced.String()),
		zap.String("total_cost", batch.TotalCost.StringFixed(2)),
	)
	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, auditdomain.ActionProductionCreated, auditdomain.TargetProductionBatch, batch.ID.String(), map[string]any{
			"batch_number":      batch.Number,
			"quantity_produced": batch.QuantityProduced.String(),
			"total_cost":        batch.TotalCost.StringFixed(2),
		}); err != nil {
			s.log.Warn("audit log failed", zap.String("action", auditdomain.ActionProductionCreated), zap.Error(err))
		}
	}
	return batch, nil
}

// CostPerUnit is total cost over produced quantity, rounded to paise.
func CostPerUnit(totalCost, quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return totalCost.Div(quantity).Round(2)
}

func (s *Service) List(ctx context.Context, req productiondomain.ListProductionRequest) (productiondomain.ListProductionResponse, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return productiondomain.ListProductionResponse{}, err
	}

	filter := productiondomain.ListFilter{}
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		productID, err := parseID(raw)
		if err != nil {
			return productiondomain.ListProductionResponse{}, err
		}
		filter.ProductID = &productID
	}

	items, err := s.repo.List(ctx, s.db, companyID, filter, req.Pagination)
	if err != nil {
		return productiondomain.ListProductionResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	batches := make([]productiondomain.ProductionBatch, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		batches = append(batches, *item)
	}
	return productiondomain.ListProductionResponse{PageInfo: pageInfo, Batches: batches}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (productiondomain.ProductionBatch, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}
	batchID, err := parseID(id)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}

	batch, err := s.repo.FindByID(ctx, s.db, companyID, batchID)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}
	if batch == nil {
		return productiondomain.ProductionBatch{}, productiondomain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, companyID, batch.ID)
	if err != nil {
		return productiondomain.ProductionBatch{}, err
	}
	batch.Items = items
	return *batch, nil
}

func (s *Service) companyIDFromContext(ctx context.Context) (snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, productiondomain.ErrInvalidCompany
	}
	return companyID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, productiondomain.ErrInvalidID
	}
	return id, nil
}
