// Package seed bootstraps the default company that receives chat messages
// from unknown senders.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	"github.com/smallbiznis/vyapar/internal/auth/password"
	"github.com/smallbiznis/vyapar/internal/clock"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultCompanyName = "Main"
	defaultCompanySlug = "main"
	defaultOwnerName   = "Owner"
)

var ErrInvalidSeed = errors.New("invalid_seed")

var Module = fx.Module("seed",
	fx.Invoke(func(db *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		return EnsureDefaultCompany(context.Background(), db, node, clk, cfg, log)
	}),
)

// EnsureDefaultCompany creates the company named by DEFAULT_COMPANY_ID when it
// is missing, plus an owner account when seed credentials are configured.
// It is a no-op when no default company is configured.
func EnsureDefaultCompany(ctx context.Context, db *gorm.DB, node *snowflake.Node, clk clock.Clock, cfg config.Config, log *zap.Logger) error {
	if cfg.DefaultCompanyID <= 0 {
		return nil
	}
	if db == nil || node == nil || clk == nil {
		return ErrInvalidSeed
	}
	if log == nil {
		log = zap.NewNop()
	}

	companyID := snowflake.ID(cfg.DefaultCompanyID)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := ensureCompanyTx(ctx, tx, clk, companyID)
		if err != nil {
			return err
		}
		if created {
			log.Info("default company seeded", zap.String("company_id", companyID.String()))
		}

		email := strings.ToLower(strings.TrimSpace(cfg.SeedOwnerEmail))
		if email == "" || cfg.SeedOwnerPassword == "" {
			return nil
		}
		created, err = ensureOwnerTx(ctx, tx, node, clk, companyID, email, cfg.SeedOwnerPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("default owner seeded",
				zap.String("company_id", companyID.String()),
				zap.String("email", email),
			)
		}
		return nil
	})
}

func ensureCompanyTx(ctx context.Context, tx *gorm.DB, clk clock.Clock, companyID snowflake.ID) (bool, error) {
	var company companydomain.Company
	err := tx.WithContext(ctx).Where("id = ?", companyID).First(&company).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	slug := defaultCompanySlug
	var taken int64
	if err := tx.WithContext(ctx).Model(&companydomain.Company{}).Where("slug = ?", slug).Count(&taken).Error; err != nil {
		return false, err
	}
	if taken > 0 {
		slug = defaultCompanySlug + "-" + companyID.String()
	}

	now := clk.Now().UTC()
	company = companydomain.Company{
		ID:        companyID,
		Name:      defaultCompanyName,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		return false, err
	}
	return true, nil
}

func ensureOwnerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clk clock.Clock, companyID snowflake.ID, email, rawPassword string) (bool, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.CompanyID != companyID {
			return false, ErrInvalidSeed
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := password.Validate(rawPassword); err != nil {
		return false, err
	}
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return false, err
	}

	now := clk.Now().UTC()
	user = authdomain.User{
		ID:                  node.Generate(),
		CompanyID:           companyID,
		Email:               email,
		FullName:            defaultOwnerName,
		PasswordHash:        hashed,
		Role:                authdomain.RoleOwner,
		IsActive:            true,
		LastPasswordChanged: timePtr(now),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
