package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/observability/metrics"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	"github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            domain.Repository
	ProductRepo     productdomain.Repository
	RawMaterialRepo rawmaterialdomain.Repository
	Metrics         *metrics.Metrics    `optional:"true"`
	TxMetrics       *metrics.TxMetrics  `optional:"true"`
	AuditSvc        auditdomain.Service `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	repo            domain.Repository
	productRepo     productdomain.Repository
	rawMaterialRepo rawmaterialdomain.Repository
	metrics         *metrics.Metrics
	txMetrics       *metrics.TxMetrics
	auditSvc        auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("stock.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		productRepo:     p.ProductRepo,
		rawMaterialRepo: p.RawMaterialRepo,
		metrics:         p.Metrics,
		txMetrics:       p.TxMetrics,
		auditSvc:        p.AuditSvc,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, movement *domain.StockMovement) error {
	if movement == nil {
		return domain.ErrInvalidMovementTarget
	}
	hasProduct := movement.ProductID != nil && *movement.ProductID != 0
	hasRawMaterial := movement.RawMaterialID != nil && *movement.RawMaterialID != 0
	if hasProduct == hasRawMaterial {
		return domain.ErrInvalidMovementTarget
	}
	if !domain.ValidMovementType(movement.MovementType) {
		return domain.ErrInvalidMovementType
	}
	if movement.CompanyID == 0 {
		return domain.ErrInvalidCompany
	}
	if movement.QuantityChange.IsZero() {
		return domain.ErrInvalidQuantity
	}
	if strings.TrimSpace(movement.ReferenceType) == "" || movement.ReferenceID == 0 {
		return domain.ErrInvalidReference
	}

	if movement.ID == 0 {
		movement.ID = s.genID.Generate()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = s.clock.Now().UTC()
	}

	if err := s.repo.Insert(ctx, tx, movement); err != nil {
		return err
	}
	s.metrics.RecordStockMovement(ctx, movement.MovementType)
	return nil
}

func (s *Service) ApplyProduct(ctx context.Context, tx *gorm.DB, change domain.Change) (domain.Applied, error) {
	if change.Quantity.IsZero() {
		return domain.Applied{}, domain.ErrInvalidQuantity
	}

	product, err := s.productRepo.LockByID(ctx, tx, change.CompanyID, change.EntityID)
	if err != nil {
		return domain.Applied{}, err
	}
	if product == nil {
		return domain.Applied{}, domain.ErrProductNotFound
	}

	after := product.Stock.Add(change.Quantity)
	if after.IsNegative() {
		return domain.Applied{}, &domain.InsufficientStockError{
			Name:      product.Name,
			Available: product.Stock,
			Requested: change.Quantity.Neg(),
		}
	}

	if err := s.productRepo.UpdateStock(ctx, tx, change.CompanyID, product.ID, after); err != nil {
		return domain.Applied{}, err
	}

	productID := product.ID
	movement := domain.StockMovement{
		CompanyID:      change.CompanyID,
		ProductID:      &productID,
		MovementType:   change.MovementType,
		QuantityChange: change.Quantity,
		ReferenceType:  change.ReferenceType,
		ReferenceID:    change.ReferenceID,
		Notes:          change.Notes,
	}
	if err := s.Record(ctx, tx, &movement); err != nil {
		return domain.Applied{}, err
	}

	return domain.Applied{
		Name:     product.Name,
		Before:   product.Stock,
		After:    after,
		Movement: movement,
	}, nil
}

func (s *Service) ApplyRawMaterial(ctx context.Context, tx *gorm.DB, change domain.Change) (domain.Applied, error) {
	if change.Quantity.IsZero() {
		return domain.Applied{}, domain.ErrInvalidQuantity
	}

	material, err := s.rawMaterialRepo.LockByID(ctx, tx, change.CompanyID, change.EntityID)
	if err != nil {
		return domain.Applied{}, err
	}
	if material == nil {
		return domain.Applied{}, domain.ErrRawMaterialNotFound
	}

	after := material.StockQuantity.Add(change.Quantity)
	if after.IsNegative() {
		return domain.Applied{}, &domain.InsufficientStockError{
			Name:      material.Name,
			Available: material.StockQuantity,
			Requested: change.Quantity.Neg(),
		}
	}

	costPrice := material.CostPrice
	if change.CostPrice != nil {
		costPrice = *change.CostPrice
	}
	if err := s.rawMaterialRepo.UpdateStock(ctx, tx, change.CompanyID, material.ID, after, change.CostPrice); err != nil {
		return domain.Applied{}, err
	}

	materialID := material.ID
	movement := domain.StockMovement{
		CompanyID:      change.CompanyID,
		RawMaterialID:  &materialID,
		MovementType:   change.MovementType,
		QuantityChange: change.Quantity,
		ReferenceType:  change.ReferenceType,
		ReferenceID:    change.ReferenceID,
		Notes:          change.Notes,
	}
	if err := s.Record(ctx, tx, &movement); err != nil {
		return domain.Applied{}, err
	}

	return domain.Applied{
		Name:      material.Name,
		Before:    material.StockQuantity,
		After:     after,
		CostPrice: costPrice,
		Movement:  movement,
	}, nil
}

func (s *Service) Adjust(ctx context.Context, req domain.AdjustRequest) (domain.StockMovement, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.StockMovement{}, domain.ErrInvalidCompany
	}

	productRaw := strings.TrimSpace(req.ProductID)
	materialRaw := strings.TrimSpace(req.RawMaterialID)
	if (productRaw == "") == (materialRaw == "") {
		return domain.StockMovement{}, domain.ErrInvalidMovementTarget
	}
	if req.Quantity.IsZero() {
		return domain.StockMovement{}, domain.ErrInvalidQuantity
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = "Manual stock adjustment"
	}

	change := domain.Change{
		CompanyID:     companyID,
		Quantity:      req.Quantity,
		MovementType:  domain.MovementAdjustment,
		ReferenceType: domain.ReferenceAdjustment,
		ReferenceID:   s.genID.Generate(),
		Notes:         notes,
	}

	start := time.Now()
	var applied domain.Applied
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if productRaw != "" {
			change.EntityID, err = snowflake.ParseString(productRaw)
			if err != nil {
				return domain.ErrInvalidID
			}
			applied, err = s.ApplyProduct(ctx, tx, change)
			return err
		}
		change.EntityID, err = snowflake.ParseString(materialRaw)
		if err != nil {
			return domain.ErrInvalidID
		}
		applied, err = s.ApplyRawMaterial(ctx, tx, change)
		return err
	})
	s.txMetrics.Observe(metrics.TxStockAdjust, start, err)
	if err != nil {
		return domain.StockMovement{}, err
	}

	s.log.Info("stock adjusted",
		zap.String("company_id", companyID.String()),
		zap.String("entity", applied.Name),
		zap.String("quantity_change", req.Quantity.String()),
	)
	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, auditdomain.ActionStockAdjusted, auditdomain.TargetStockMovement, applied.Movement.ID.String(), map[string]any{
			"name":            applied.Name,
			"quantity_change": req.Quantity.String(),
			"before":          applied.Before.String(),
			"after":           applied.After.String(),
		}); err != nil {
			s.log.Warn("audit log failed", zap.String("action", auditdomain.ActionStockAdjusted), zap.Error(err))
		}
	}
	return applied.Movement, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMovementRequest) (domain.ListMovementResponse, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListMovementResponse{}, domain.ErrInvalidCompany
	}

	filter := domain.ListFilter{MovementType: strings.TrimSpace(req.MovementType)}
	if filter.MovementType != "" && !domain.ValidMovementType(filter.MovementType) {
		return domain.ListMovementResponse{}, domain.ErrInvalidMovementType
	}
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListMovementResponse{}, domain.ErrInvalidID
		}
		filter.ProductID = &id
	}
	if raw := strings.TrimSpace(req.RawMaterialID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListMovementResponse{}, domain.ErrInvalidID
		}
		filter.RawMaterialID = &id
	}

	items, err := s.repo.List(ctx, s.db, companyID, filter, req.Pagination)
	if err != nil {
		return domain.ListMovementResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	movements := make([]domain.StockMovement, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		movements = append(movements, *item)
	}
	return domain.ListMovementResponse{PageInfo: pageInfo, Movements: movements}, nil
}

func (s *Service) Reconcile(ctx context.Context) ([]domain.Drift, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	db := s.db.WithContext(ctx)
	drifts := []domain.Drift{}

	productSums, err := s.repo.SumByProduct(ctx, db, companyID)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.CachedProductStock(ctx, db, companyID)
	if err != nil {
		return nil, err
	}
	drifts = append(drifts, compare("product", products, productSums)...)

	materialSums, err := s.repo.SumByRawMaterial(ctx, db, companyID)
	if err != nil {
		return nil, err
	}
	materials, err := s.repo.CachedRawMaterialStock(ctx, db, companyID)
	if err != nil {
		return nil, err
	}
	drifts = append(drifts, compare("raw_material", materials, materialSums)...)

	if len(drifts) > 0 {
		s.log.Warn("stock ledger drift detected",
			zap.String("company_id", companyID.String()),
			zap.Int("entities", len(drifts)),
		)
	}
	return drifts, nil
}

func compare(entityType string, cached []domain.CachedStock, sums []domain.LedgerSum) []domain.Drift {
	ledger := make(map[snowflake.ID]decimal.Decimal, len(sums))
	for _, sum := range sums {
		ledger[sum.EntityID] = sum.Total
	}

	var drifts []domain.Drift
	for _, row := range cached {
		total := ledger[row.EntityID]
		if row.Stock.Equal(total) {
			continue
		}
		drifts = append(drifts, domain.Drift{
			EntityType:  entityType,
			EntityID:    row.EntityID,
			Name:        row.Name,
			CachedStock: row.Stock,
			LedgerStock: total,
		})
	}
	return drifts
}
