package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/ledger/domain"
	pkgdb "github.com/smallbiznis/vyapar/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type sideTables struct {
	counterparties string
	documents      string
	number         string
	total          string
	counterpartyFK string
	paymentDocFK   string
	forward        string
	reversal       string
}

var sides = map[domain.Side]sideTables{
	domain.SideCustomer: {
		counterparties: "customers",
		documents:      "invoices",
		number:         "invoice_number",
		total:          "total",
		counterpartyFK: "customer_id",
		paymentDocFK:   "invoice_id",
		forward:        "received",
		reversal:       "refund",
	},
	domain.SideSupplier: {
		counterparties: "suppliers",
		documents:      "purchases",
		number:         "purchase_number",
		total:          "total_amount",
		counterpartyFK: "supplier_id",
		paymentDocFK:   "purchase_id",
		forward:        "paid",
		reversal:       "supplier_refund",
	},
}

func tablesFor(side domain.Side) (sideTables, error) {
	t, ok := sides[side]
	if !ok {
		return sideTables{}, fmt.Errorf("unknown ledger side %q", side)
	}
	return t, nil
}

func (r *repo) Documents(ctx context.Context, db *gorm.DB, side domain.Side, companyID, counterpartyID snowflake.ID) ([]domain.DocumentRow, error) {
	t, err := tablesFor(side)
	if err != nil {
		return nil, err
	}

	var rows []domain.DocumentRow
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT id, %s AS number, %s AS total, status, created_at
		 FROM %s
		 WHERE company_id = ? AND %s = ? AND status <> 'cancelled'
		 ORDER BY created_at ASC, id ASC`, t.number, t.total, t.documents, t.counterpartyFK),
		companyID,
		counterpartyID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Payments(ctx context.Context, db *gorm.DB, side domain.Side, companyID, counterpartyID snowflake.ID) ([]domain.PaymentRow, error) {
	t, err := tablesFor(side)
	if err != nil {
		return nil, err
	}

	var rows []domain.PaymentRow
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT id, %s AS document_id, amount, payment_type, created_at
		 FROM payments
		 WHERE company_id = ? AND %s = ?
		 ORDER BY created_at ASC, id ASC`, t.paymentDocFK, t.counterpartyFK),
		companyID,
		counterpartyID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Counterparties(ctx context.Context, db *gorm.DB, side domain.Side, companyID snowflake.ID) ([]domain.Counterparty, error) {
	t, err := tablesFor(side)
	if err != nil {
		return nil, err
	}

	var rows []domain.Counterparty
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT id, name, phone, email FROM %s WHERE company_id = ? ORDER BY name ASC, id ASC`, t.counterparties),
		companyID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Totals(ctx context.Context, db *gorm.DB, side domain.Side, companyID snowflake.ID) (map[snowflake.ID]domain.CounterpartyTotals, error) {
	t, err := tablesFor(side)
	if err != nil {
		return nil, err
	}

	var billed []struct {
		CounterpartyID snowflake.ID
		Amount         decimal.Decimal
	}
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT %s AS counterparty_id, COALESCE(SUM(%s), 0) AS amount
		 FROM %s
		 WHERE company_id = ? AND %s IS NOT NULL AND status <> 'cancelled'
		 GROUP BY %s`, t.counterpartyFK, t.total, t.documents, t.counterpartyFK, t.counterpartyFK),
		companyID,
	).Scan(&billed).Error
	if err != nil {
		return nil, err
	}

	var paid []struct {
		CounterpartyID snowflake.ID
		Paid           decimal.Decimal
		Refunded       decimal.Decimal
	}
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT %s AS counterparty_id,
			COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) AS paid,
			COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) AS refunded
		 FROM payments
		 WHERE company_id = ? AND %s IS NOT NULL
		 GROUP BY %s`, t.counterpartyFK, t.counterpartyFK, t.counterpartyFK),
		t.forward,
		t.reversal,
		companyID,
	).Scan(&paid).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[snowflake.ID]domain.CounterpartyTotals, len(billed))
	get := func(id snowflake.ID) domain.CounterpartyTotals {
		if current, ok := totals[id]; ok {
			return current
		}
		return domain.CounterpartyTotals{
			CounterpartyID: id,
			Billed:         decimal.Zero,
			Paid:           decimal.Zero,
			Refunded:       decimal.Zero,
		}
	}
	for _, row := range billed {
		current := get(row.CounterpartyID)
		current.Billed = pkgdb.Money(row.Amount)
		totals[row.CounterpartyID] = current
	}
	for _, row := range paid {
		current := get(row.CounterpartyID)
		current.Paid = pkgdb.Money(row.Paid)
		current.Refunded = pkgdb.Money(row.Refunded)
		totals[row.CounterpartyID] = current
	}
	return totals, nil
}
