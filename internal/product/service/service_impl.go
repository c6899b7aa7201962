package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/product/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	StockSvc stockdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	stockSvc stockdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		stockSvc: p.StockSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Product{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if req.OpeningStock.IsNegative() {
		return domain.Product{}, domain.ErrInvalidStock
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "pcs"
	}

	now := s.clock.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		Name:        name,
		SKU:         strings.TrimSpace(req.SKU),
		Description: strings.TrimSpace(req.Description),
		Unit:        unit,
		Price:       req.Price.Round(2),
		Stock:       decimal.Zero,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &product); err != nil {
			return err
		}
		if !req.OpeningStock.IsPositive() {
			return nil
		}
		applied, err := s.stockSvc.ApplyProduct(ctx, tx, stockdomain.Change{
			CompanyID:     companyID,
			EntityID:      product.ID,
			Quantity:      req.OpeningStock,
			MovementType:  stockdomain.MovementAdjustment,
			ReferenceType: stockdomain.ReferenceOpeningStock,
			ReferenceID:   product.ID,
			Notes:         "Opening stock",
		})
		if err != nil {
			return err
		}
		product.Stock = applied.After
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("product created",
		zap.String("company_id", companyID.String()),
		zap.String("product_id", product.ID.String()),
	)
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListProductResponse{}, domain.ErrInvalidCompany
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListFilter{
		Search:          req.Search,
		IncludeInactive: req.IncludeInactive,
	}, req.Pagination)
	if err != nil {
		return domain.ListProductResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}
	return domain.ListProductResponse{PageInfo: pageInfo, Products: products}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	companyID, productID, err := s.resolve(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.FindByID(ctx, s.db, companyID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.Product, error) {
	companyID, productID, err := s.resolve(ctx, req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.LockByID(ctx, tx, companyID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return domain.ErrInvalidName
			}
			product.Name = name
		}
		if req.SKU != nil {
			product.SKU = strings.TrimSpace(*req.SKU)
		}
		if req.Description != nil {
			product.Description = strings.TrimSpace(*req.Description)
		}
		if req.Unit != nil {
			if unit := strings.TrimSpace(*req.Unit); unit != "" {
				product.Unit = unit
			}
		}
		if req.Price != nil {
			if req.Price.IsNegative() {
				return domain.ErrInvalidPrice
			}
			product.Price = req.Price.Round(2)
		}
		product.UpdatedAt = s.clock.Now().UTC()

		if err := s.repo.Update(ctx, tx, product); err != nil {
			return err
		}
		updated = *product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

// Delete deactivates the product. Rows stay because invoices and movements
// reference them.
func (s *Service) Delete(ctx context.Context, id string) error {
	companyID, productID, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	product, err := s.repo.FindByID(ctx, s.db, companyID, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return s.repo.Deactivate(ctx, s.db, companyID, productID)
}

func (s *Service) resolve(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, 0, domain.ErrInvalidCompany
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, 0, domain.ErrInvalidID
	}
	return companyID, productID, nil
}
