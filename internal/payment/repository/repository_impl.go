package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/payment/domain"
	pkgdb "github.com/smallbiznis/vyapar/pkg/db"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type documentTable struct {
	table        string
	counterparty string
	number       string
	total        string
	paymentRef   string
}

var documentTables = map[domain.DocumentKind]documentTable{
	domain.DocumentInvoice: {
		table:        "invoices",
		counterparty: "customer_id",
		number:       "invoice_number",
		total:        "total",
		paymentRef:   "invoice_id",
	},
	domain.DocumentPurchase: {
		table:        "purchases",
		counterparty: "supplier_id",
		number:       "purchase_number",
		total:        "total_amount",
		paymentRef:   "purchase_id",
	},
}

func tableFor(kind domain.DocumentKind) (documentTable, error) {
	t, ok := documentTables[kind]
	if !ok {
		return documentTable{}, fmt.Errorf("unknown document kind %q", kind)
	}
	return t, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, company_id, customer_id, invoice_id, supplier_id, purchase_id,
			amount, payment_type, payment_method, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.CompanyID,
		payment.CustomerID,
		payment.InvoiceID,
		payment.SupplierID,
		payment.PurchaseID,
		payment.Amount,
		payment.PaymentType,
		payment.Method,
		payment.Notes,
		payment.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	stmt := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("company_id = ?", companyID)
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SupplierID != nil {
		stmt = stmt.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.InvoiceID != nil {
		stmt = stmt.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.PurchaseID != nil {
		stmt = stmt.Where("purchase_id = ?", *filter.PurchaseID)
	}
	if filter.PaymentType != "" {
		stmt = stmt.Where("payment_type = ?", filter.PaymentType)
	}
	offset, limit := page.Window()
	err := stmt.
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

type documentRow struct {
	ID             snowflake.ID
	CompanyID      snowflake.ID
	CounterpartyID *snowflake.ID
	Number         string
	Total          decimal.Decimal
	Status         string
}

func (r *repo) LockDocument(ctx context.Context, db *gorm.DB, kind domain.DocumentKind, companyID, id snowflake.ID) (*domain.Document, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var row documentRow
	err = db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Table(t.table).
		Select(fmt.Sprintf(
			"id, company_id, %s AS counterparty_id, %s AS number, %s AS total, status",
			t.counterparty, t.number, t.total,
		)).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &domain.Document{
		Kind:           kind,
		ID:             row.ID,
		CompanyID:      row.CompanyID,
		CounterpartyID: row.CounterpartyID,
		Number:         row.Number,
		Total:          row.Total,
		Status:         row.Status,
	}, nil
}

func (r *repo) SumForDocument(ctx context.Context, db *gorm.DB, kind domain.DocumentKind, companyID, id snowflake.ID) (domain.NetPaid, error) {
	t, err := tableFor(kind)
	if err != nil {
		return domain.NetPaid{}, err
	}

	forward, reversal := domain.PaymentTypeReceived, domain.PaymentTypeRefund
	if kind == domain.DocumentPurchase {
		forward, reversal = domain.PaymentTypePaid, domain.PaymentTypeSupplierRefund
	}

	var sums struct {
		Forward  decimal.Decimal
		Reversal decimal.Decimal
	}
	err = db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT
			COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) AS forward,
			COALESCE(SUM(CASE WHEN payment_type = ? THEN amount ELSE 0 END), 0) AS reversal
		 FROM payments
		 WHERE company_id = ? AND %s = ?`, t.paymentRef),
		forward,
		reversal,
		companyID,
		id,
	).Scan(&sums).Error
	if err != nil {
		return domain.NetPaid{}, err
	}
	return domain.NetPaid{Forward: pkgdb.Money(sums.Forward), Reversal: pkgdb.Money(sums.Reversal)}, nil
}

func (r *repo) UpdateDocumentStatus(ctx context.Context, db *gorm.DB, kind domain.DocumentKind, companyID, id snowflake.ID, status string, updatedAt time.Time) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE %s SET status = ?, updated_at = ? WHERE company_id = ? AND id = ?`, t.table),
		status,
		updatedAt,
		companyID,
		id,
	).Error
}
