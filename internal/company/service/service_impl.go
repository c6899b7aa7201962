package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSlugAttempts = 20

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, tx *gorm.DB, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}
	if tx == nil {
		tx = s.db
	}
	repo := s.repo.WithTx(tx)

	companySlug, err := s.uniqueSlug(ctx, repo, name)
	if err != nil {
		return domain.Company{}, err
	}

	now := s.clock.Now().UTC()
	company := domain.Company{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      companySlug,
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		GSTNumber: strings.ToUpper(strings.TrimSpace(req.GSTNumber)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, company); err != nil {
		return domain.Company{}, err
	}

	s.log.Info("company created", zap.String("company_id", company.ID.String()), zap.String("slug", company.Slug))
	return company, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	if id == 0 {
		return domain.Company{}, domain.ErrInvalidCompany
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

func (s *service) Current(ctx context.Context) (domain.Company, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Company{}, domain.ErrInvalidCompany
	}
	return s.Get(ctx, companyID)
}

func (s *service) Update(ctx context.Context, req domain.UpdateCompanyRequest) (domain.Company, error) {
	company, err := s.Current(ctx)
	if err != nil {
		return domain.Company{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Company{}, domain.ErrInvalidName
		}
		company.Name = name
	}
	if req.Address != nil {
		company.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		company.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.GSTNumber != nil {
		company.GSTNumber = strings.ToUpper(strings.TrimSpace(*req.GSTNumber))
	}
	company.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, company); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

func (s *service) uniqueSlug(ctx context.Context, repo domain.Repository, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "company"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, s.genID.Generate().Base36()), nil
}
