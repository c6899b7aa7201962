package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultLowStockThreshold = decimal.NewFromInt(10)

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
		log:      p.Log.Named("rawmaterial.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		stockSvc: p.StockSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRawMaterialRequest) (domain.RawMaterial, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.RawMaterial{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.RawMaterial{}, domain.ErrInvalidName
	}
	if req.CostPrice.IsNegative() {
		return domain.RawMaterial{}, domain.ErrInvalidCostPrice
	}
	if req.OpeningStock.IsNegative() {
		return domain.RawMaterial{}, domain.ErrInvalidStock
	}
	threshold := defaultLowStockThreshold
	if req.LowStockThreshold != nil {
		if req.LowStockThreshold.IsNegative() {
			return domain.RawMaterial{}, domain.ErrInvalidThreshold
		}
		threshold = *req.LowStockThreshold
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "kg"
	}

	now := s.clock.Now().UTC()
	material := domain.RawMaterial{
		ID:                s.genID.Generate(),
		CompanyID:         companyID,
		Name:              name,
		Unit:              unit,
		StockQuantity:     decimal.Zero,
		CostPrice:         req.CostPrice.Round(2),
		LowStockThreshold: threshold,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &material); err != nil {
			return err
		}
		if !req.OpeningStock.IsPositive() {
			return nil
		}
		applied, err := s.stockSvc.ApplyRawMaterial(ctx, tx, stockdomain.Change{
			CompanyID:     companyID,
			EntityID:      material.ID,
			Quantity:      req.OpeningStock,
			MovementType:  stockdomain.MovementAdjustment,
			ReferenceType: stockdomain.ReferenceOpeningStock,
			ReferenceID:   material.ID,
			Notes:         "Opening stock",
		})
		if err != nil {
			return err
		}
		material.StockQuantity = applied.After
		return nil
	})
	if err != nil {
		return domain.RawMaterial{}, err
	}

	s.log.Info("raw material created",
		zap.String("company_id", companyID.String()),
		zap.String("raw_material_id", material.ID.String()),
	)
	return material, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRawMaterialRequest) (domain.ListRawMaterialResponse, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListRawMaterialResponse{}, domain.ErrInvalidCompany
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListFilter{
		Search:          req.Search,
		IncludeInactive: req.IncludeInactive,
	}, req.Pagination)
	if err != nil {
		return domain.ListRawMaterialResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	materials := make([]domain.RawMaterial, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		materials = append(materials, *item)
	}
	return domain.ListRawMaterialResponse{PageInfo: pageInfo, RawMaterials: materials}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.RawMaterial, error) {
	companyID, materialID, err := s.resolve(ctx, id)
	if err != nil {
		return domain.RawMaterial{}, err
	}

	material, err := s.repo.FindByID(ctx, s.db, companyID, materialID)
	if err != nil {
		return domain.RawMaterial{}, err
	}
	if material == nil {
		return domain.RawMaterial{}, domain.ErrNotFound
	}
	return *material, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRawMaterialRequest) (domain.RawMaterial, error) {
	companyID, materialID, err := s.resolve(ctx, req.ID)
	if err != nil {
		return domain.RawMaterial{}, err
	}

	var updated domain.RawMaterial
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		material, err := s.repo.LockByID(ctx, tx, companyID, materialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return domain.ErrInvalidName
			}
			material.Name = name
		}
		if req.Unit != nil {
			if unit := strings.TrimSpace(*req.Unit); unit != "" {
				material.Unit = unit
			}
		}
		if req.CostPrice != nil {
			if req.CostPrice.IsNegative() {
				return domain.ErrInvalidCostPrice
			}
			material.CostPrice = req.CostPrice.Round(2)
		}
		if req.LowStockThreshold != nil {
			if req.LowStockThreshold.IsNegative() {
				return domain.ErrInvalidThreshold
			}
			material.LowStockThreshold = *req.LowStockThreshold
		}
		material.UpdatedAt = s.clock.Now().UTC()

		if err := s.repo.Update(ctx, tx, material); err != nil {
			return err
		}
		updated = *material
		return nil
	})
	if err != nil {
		return domain.RawMaterial{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	companyID, materialID, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	material, err := s.repo.FindByID(ctx, s.db, companyID, materialID)
	if err != nil {
		return err
	}
	if material == nil {
		return domain.ErrNotFound
	}
	return s.repo.Deactivate(ctx, s.db, companyID, materialID)
}

func (s *Service) resolve(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, 0, domain.ErrInvalidCompany
	}
	materialID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, 0, domain.ErrInvalidID
	}
	return companyID, materialID, nil
}
