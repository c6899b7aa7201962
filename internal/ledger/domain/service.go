package domain

import (
	"context"
	"errors"
)

type Service interface {
	CustomerStatement(ctx context.Context, customerID string) (CustomerStatement, error)
	SupplierStatement(ctx context.Context, supplierID string) (SupplierStatement, error)
	CustomerBalances(ctx context.Context) ([]Balance, error)
	SupplierBalances(ctx context.Context) ([]Balance, error)
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidID        = errors.New("invalid_id")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrSupplierNotFound = errors.New("supplier_not_found")
)
