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
	purchasedomain "github.com/smallbiznis/vyapar/internal/purchase/domain"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
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
	Repo            purchasedomain.Repository
	SupplierRepo    supplierdomain.Repository
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
	repo            purchasedomain.Repository
	supplierRepo    supplierdomain.Repository
	rawMaterialRepo rawmaterialdomain.Repository
	stockSvc        stockdomain.Service
	auditSvc        auditdomain.Service
	txMetrics       *metrics.TxMetrics
}

func NewService(p ServiceParam) purchasedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("purchase.service"),

		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		supplierRepo:    p.SupplierRepo,
		rawMaterialRepo: p.RawMaterialRepo,
		stockSvc:        p.StockSvc,
		auditSvc:        p.AuditSvc,
		txMetrics:       p.TxMetrics,
	}
}

type lineRequest struct {
	rawMaterialID snowflake.ID
	quantity      decimal.Decimal
	unitPrice     decimal.Decimal
}

func (s *Service) Create(ctx context.Context, req purchasedomain.CreatePurchaseRequest) (purchasedomain.Purchase, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}

	if strings.TrimSpace(req.SupplierID) == "" {
		return purchasedomain.Purchase{}, purchasedomain.ErrSupplierRequired
	}
	supplierID, err := parseID(req.SupplierID)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}
	if len(req.Items) == 0 {
		return purchasedomain.Purchase{}, purchasedomain.ErrEmptyItems
	}

	lines := make([]lineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		materialID, err := parseID(item.RawMaterialID)
		if err != nil {
			return purchasedomain.Purchase{}, err
		}
		if !item.Quantity.IsPositive() {
			return purchasedomain.Purchase{}, purchasedomain.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return purchasedomain.Purchase{}, purchasedomain.ErrInvalidUnitPrice
		}
		lines = append(lines, lineRequest{
			rawMaterialID: materialID,
			quantity:      item.Quantity,
			unitPrice:     item.UnitPrice.Round(2),
		})
	}

	supplier, err := s.supplierRepo.FindByID(ctx, s.db, companyID, supplierID)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}
	if supplier == nil || !supplier.IsActive {
		return purchasedomain.Purchase{}, purchasedomain.ErrSupplierNotFound
	}

	now := s.clock.Now().UTC()
	purchase := purchasedomain.Purchase{
		ID:           s.genID.Generate(),
		CompanyID:    companyID,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Status:       purchasedomain.PurchaseStatusUnpaid,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	start := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := docnumber.Next(ctx, tx, purchasedomain.Purchase{}.TableName(), docnumber.PurchaseTemplate, companyID, now)
		if err != nil {
			return err
		}
		purchase.Number = number

		items := make([]*purchasedomain.PurchaseItem, 0, len(lines))
		total := decimal.Zero
		for i, line := range lines {
			material, err := s.rawMaterialRepo.FindByID(ctx, tx, companyID, line.rawMaterialID)
			if err != nil {
				return err
			}
			if material == nil || !material.IsActive {
				return purchasedomain.ErrRawMaterialNotFound
			}

			unitPrice := line.unitPrice
			applied, err := s.stockSvc.ApplyRawMaterial(ctx, tx, stockdomain.Change{
				CompanyID:     companyID,
				EntityID:      line.rawMaterialID,
				Quantity:      line.quantity,
				MovementType:  stockdomain.MovementPurchase,
				ReferenceType: stockdomain.ReferencePurchase,
				ReferenceID:   purchase.ID,
				Notes:         fmt.Sprintf("Purchased via %s", number),
				CostPrice:     &unitPrice,
			})
			if err != nil {
				return err
			}

			lineTotal := line.quantity.Mul(unitPrice).Round(2)
			total = total.Add(lineTotal)
			items = append(items, &purchasedomain.PurchaseItem{
				ID:              s.genID.Generate(),
				CompanyID:       companyID,
				PurchaseID:      purchase.ID,
				RawMaterialID:   line.rawMaterialID,
				RawMaterialName: applied.Name,
				Quantity:        line.quantity,
				UnitPrice:       unitPrice,
				TotalPrice:      lineTotal,
				Position:        i,
			})
		}
		purchase.TotalAmount = total

		if err := s.repo.Insert(ctx, tx, &purchase); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return purchasedomain.ErrDuplicateNumber
			}
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}

		purchase.Items = make([]purchasedomain.PurchaseItem, 0, len(items))
		for _, item := range items {
			purchase.Items = append(purchase.Items, *item)
		}
		return nil
	})
	s.txMetrics.Observe(metrics.TxPurchaseCreate, start, err)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}

	s.log.Info("purchase created",
		zap.String("company_id", companyID.String()),
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("purchase_number", purchase.Number),
		zap.String("supplier_id", supplier.ID.String()),
	)
	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, auditdomain.ActionPurchaseCreated, auditdomain.TargetPurchase, purchase.ID.String(), map[string]any{
			"purchase_number": purchase.Number,
			"total_amount":    purchase.TotalAmount.StringFixed(2),
			"items":           len(purchase.Items),
		}); err != nil {
			s.log.Warn("audit log failed", zap.String("action", auditdomain.ActionPurchaseCreated), zap.Error(err))
		}
	}
	return purchase, nil
}

func (s *Service) List(ctx context.Context, req purchasedomain.ListPurchaseRequest) (purchasedomain.ListPurchaseResponse, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return purchasedomain.ListPurchaseResponse{}, err
	}

	filter := purchasedomain.ListFilter{}
	if status := purchasedomain.PurchaseStatus(strings.TrimSpace(req.Status)); status != "" {
		if !purchasedomain.ValidStatus(status) {
			return purchasedomain.ListPurchaseResponse{}, purchasedomain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.SupplierID); raw != "" {
		supplierID, err := parseID(raw)
		if err != nil {
			return purchasedomain.ListPurchaseResponse{}, err
		}
		filter.SupplierID = &supplierID
	}

	items, err := s.repo.List(ctx, s.db, companyID, filter, req.Pagination)
	if err != nil {
		return purchasedomain.ListPurchaseResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	purchases := make([]purchasedomain.Purchase, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		purchases = append(purchases, *item)
	}
	return purchasedomain.ListPurchaseResponse{PageInfo: pageInfo, Purchases: purchases}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (purchasedomain.Purchase, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}
	purchaseID, err := parseID(id)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}

	purchase, err := s.repo.FindByID(ctx, s.db, companyID, purchaseID)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}
	if purchase == nil {
		return purchasedomain.Purchase{}, purchasedomain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, companyID, purchase.ID)
	if err != nil {
		return purchasedomain.Purchase{}, err
	}
	purchase.Items = items
	return *purchase, nil
}

func (s *Service) companyIDFromContext(ctx context.Context) (snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, purchasedomain.ErrInvalidCompany
	}
	return companyID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, purchasedomain.ErrInvalidID
	}
	return id, nil
}
