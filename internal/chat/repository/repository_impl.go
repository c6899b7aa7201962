package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/chat/domain"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CompanyIDByPhone(ctx context.Context, db *gorm.DB, phones []string) (snowflake.ID, error) {
	if len(phones) == 0 {
		return 0, nil
	}
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM companies WHERE phone IN ? ORDER BY id ASC LIMIT 1`,
		phones,
	).Scan(&ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return snowflake.ID(ids[0]), nil
}

func (r *repo) LatestSendableInvoice(ctx context.Context, db *gorm.DB, companyID snowflake.ID, customerName string) (*domain.InvoiceRef, error) {
	var row struct {
		ID            int64
		InvoiceNumber string
		CustomerName  string
	}

	stmt := db.WithContext(ctx).
		Table("invoices AS i").
		Select("i.id, i.invoice_number, c.name AS customer_name").
		Joins("JOIN customers c ON c.id = i.customer_id AND c.company_id = i.company_id").
		Where("i.company_id = ? AND i.status <> ?", companyID, invoicedomain.InvoiceStatusCancelled)
	if name := strings.ToLower(strings.TrimSpace(customerName)); name != "" {
		stmt = stmt.Where("LOWER(c.name) LIKE ?", "%"+name+"%")
	}

	err := stmt.
		Order("i.created_at DESC, i.id DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &domain.InvoiceRef{
		ID:           snowflake.ID(row.ID),
		Number:       row.InvoiceNumber,
		CustomerName: row.CustomerName,
	}, nil
}
