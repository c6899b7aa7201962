package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/invoice/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"github.com/smallbiznis/vyapar/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, company_id, customer_id, invoice_number, customer_name, customer_email, customer_phone,
			subtotal, tax_percent, tax_amount, discount, total, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.CompanyID,
		invoice.CustomerID,
		invoice.Number,
		invoice.CustomerName,
		invoice.CustomerEmail,
		invoice.CustomerPhone,
		invoice.Subtotal,
		invoice.TaxPercent,
		invoice.TaxAmount,
		invoice.Discount,
		invoice.Total,
		invoice.Status,
		invoice.Notes,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []*domain.InvoiceItem) error {
	return repository.ProvideStore[domain.InvoiceItem](db).BatchCreate(ctx, items)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Invoice, error) {
	return r.find(db.WithContext(ctx), companyID, id)
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Invoice, error) {
	return r.find(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), companyID, id)
}

func (r *repo) find(stmt *gorm.DB, companyID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := stmt.
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB, companyID snowflake.ID, customerID *snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	stmt := db.WithContext(ctx).Where("company_id = ?", companyID)
	if customerID != nil {
		stmt = stmt.Where("customer_id = ?", *customerID)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(1).
		Find(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	items, err := repository.ProvideStore[domain.InvoiceItem](db).Find(ctx,
		&domain.InvoiceItem{CompanyID: companyID, InvoiceID: invoiceID},
		repository.WithOrder("position asc, id asc"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at < ?", *filter.CreatedTo)
	}
	offset, limit := page.Window()
	err := stmt.
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, status domain.InvoiceStatus, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		status,
		updatedAt,
		companyID,
		id,
	).Error
}
