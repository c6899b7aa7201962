package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type CreateSupplierRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type UpdateSupplierRequest struct {
	ID      string  `json:"-"`
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type ListSupplierRequest struct {
	pagination.Pagination
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
}

type ListSupplierResponse struct {
	pagination.PageInfo
	Suppliers []Supplier `json:"suppliers"`
}

type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (Supplier, error)
	List(ctx context.Context, req ListSupplierRequest) (ListSupplierResponse, error)
	GetByID(ctx context.Context, id string) (Supplier, error)
	Update(ctx context.Context, req UpdateSupplierRequest) (Supplier, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("supplier_not_found")
)
