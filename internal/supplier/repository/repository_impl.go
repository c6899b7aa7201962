package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/supplier/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, supplier *domain.Supplier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO suppliers (id, company_id, name, phone, email, address, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		supplier.ID,
		supplier.CompanyID,
		supplier.Name,
		supplier.Phone,
		supplier.Email,
		supplier.Address,
		supplier.IsActive,
		supplier.CreatedAt,
		supplier.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&supplier).Error
	if err != nil {
		return nil, err
	}
	if supplier.ID == 0 {
		return nil, nil
	}
	return &supplier, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListSupplierFilter, page pagination.Pagination) ([]*domain.Supplier, error) {
	var suppliers []*domain.Supplier
	stmt := db.WithContext(ctx).
		Model(&domain.Supplier{}).
		Where("company_id = ?", companyID)
	if !filter.IncludeInactive {
		stmt = stmt.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	offset, limit := page.Window()
	err := stmt.
		Order("name asc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, supplier *domain.Supplier) error {
	return db.WithContext(ctx).Exec(
		`UPDATE suppliers SET name = ?, phone = ?, email = ?, address = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		supplier.Name,
		supplier.Phone,
		supplier.Email,
		supplier.Address,
		supplier.UpdatedAt,
		supplier.CompanyID,
		supplier.ID,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE suppliers SET is_active = ? WHERE company_id = ? AND id = ?`,
		false,
		companyID,
		id,
	).Error
}
