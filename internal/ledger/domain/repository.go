package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Side string

const (
	SideCustomer Side = "customer"
	SideSupplier Side = "supplier"
)

// DocumentRow is an invoice or purchase as the ledger sees it.
type DocumentRow struct {
	ID        snowflake.ID
	Number    string
	Total     decimal.Decimal
	Status    string
	CreatedAt time.Time
}

// PaymentRow is a payment as the ledger sees it.
type PaymentRow struct {
	ID          snowflake.ID
	DocumentID  *snowflake.ID
	Amount      decimal.Decimal
	PaymentType string
	CreatedAt   time.Time
}

// CounterpartyTotals aggregates one counterparty's documents and payments.
type CounterpartyTotals struct {
	CounterpartyID snowflake.ID
	Billed         decimal.Decimal
	Paid           decimal.Decimal
	Refunded       decimal.Decimal
}

type Repository interface {
	// Documents returns non-cancelled documents in creation order.
	Documents(ctx context.Context, db *gorm.DB, side Side, companyID, counterpartyID snowflake.ID) ([]DocumentRow, error)
	// Payments returns every payment of the counterparty in creation order.
	Payments(ctx context.Context, db *gorm.DB, side Side, companyID, counterpartyID snowflake.ID) ([]PaymentRow, error)
	Counterparties(ctx context.Context, db *gorm.DB, side Side, companyID snowflake.ID) ([]Counterparty, error)
	Totals(ctx context.Context, db *gorm.DB, side Side, companyID snowflake.ID) (map[snowflake.ID]CounterpartyTotals, error)
}
