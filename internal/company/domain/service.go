package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateCompanyRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	GSTNumber string `json:"gst_number"`
}

type UpdateCompanyRequest struct {
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	GSTNumber *string `json:"gst_number"`
}

type Service interface {
	// Create inserts the company inside tx so callers can add the owner
	// account atomically.
	Create(ctx context.Context, tx *gorm.DB, req CreateCompanyRequest) (Company, error)
	Get(ctx context.Context, id snowflake.ID) (Company, error)
	// Current returns the company resolved from ctx.
	Current(ctx context.Context) (Company, error)
	Update(ctx context.Context, req UpdateCompanyRequest) (Company, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrNotFound       = errors.New("company_not_found")
)
