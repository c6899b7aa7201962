package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/supplier/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("supplier.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplierRequest) (domain.Supplier, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Supplier{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Supplier{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Supplier{}, domain.ErrInvalidEmail
	}

	now := s.clock.Now().UTC()
	supplier := domain.Supplier{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     email,
		Address:   strings.TrimSpace(req.Address),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &supplier); err != nil {
		return domain.Supplier{}, err
	}
	return supplier, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSupplierRequest) (domain.ListSupplierResponse, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListSupplierResponse{}, domain.ErrInvalidCompany
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListSupplierFilter{
		Search:          req.Search,
		IncludeInactive: req.IncludeInactive,
	}, req.Pagination)
	if err != nil {
		return domain.ListSupplierResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	suppliers := make([]domain.Supplier, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		suppliers = append(suppliers, *item)
	}
	return domain.ListSupplierResponse{PageInfo: pageInfo, Suppliers: suppliers}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Supplier, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Supplier{}, domain.ErrInvalidCompany
	}
	supplierID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || supplierID == 0 {
		return domain.Supplier{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, companyID, supplierID)
	if err != nil {
		return domain.Supplier{}, err
	}
	if item == nil {
		return domain.Supplier{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSupplierRequest) (domain.Supplier, error) {
	supplier, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Supplier{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Supplier{}, domain.ErrInvalidName
		}
		supplier.Name = name
	}
	if req.Phone != nil {
		supplier.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Supplier{}, domain.ErrInvalidEmail
		}
		supplier.Email = email
	}
	if req.Address != nil {
		supplier.Address = strings.TrimSpace(*req.Address)
	}
	supplier.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &supplier); err != nil {
		return domain.Supplier{}, err
	}
	return supplier, nil
}

// Delete deactivates the supplier; its purchases and payments keep pointing at it.
func (s *Service) Delete(ctx context.Context, id string) error {
	supplier, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, s.db, supplier.CompanyID, supplier.ID)
}
