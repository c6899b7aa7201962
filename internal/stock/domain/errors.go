package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCompany        = errors.New("invalid_company")
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidMovementTarget = errors.New("invalid_movement_target")
	ErrInvalidMovementType   = errors.New("invalid_movement_type")
	ErrInvalidQuantity       = errors.New("invalid_quantity")
	ErrInvalidReference      = errors.New("invalid_reference")
	ErrProductNotFound       = errors.New("product_not_found")
	ErrRawMaterialNotFound   = errors.New("raw_material_not_found")
)

// InsufficientStockError is returned when a deduction would take an entity
// below zero.
type InsufficientStockError struct {
	Name      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %s, requested %s",
		e.Name, e.Available.String(), e.Requested.String())
}
