package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, material *domain.RawMaterial) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO raw_materials (id, company_id, name, unit, stock_quantity, cost_price, low_stock_threshold, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		material.ID,
		material.CompanyID,
		material.Name,
		material.Unit,
		material.StockQuantity,
		material.CostPrice,
		material.LowStockThreshold,
		material.IsActive,
		material.CreatedAt,
		material.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.RawMaterial, error) {
	return r.find(ctx, db.WithContext(ctx), companyID, id)
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.RawMaterial, error) {
	return r.find(ctx, db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), companyID, id)
}

func (r *repo) find(_ context.Context, stmt *gorm.DB, companyID, id snowflake.ID) (*domain.RawMaterial, error) {
	var material domain.RawMaterial
	err := stmt.
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&material).Error
	if err != nil {
		return nil, err
	}
	if material.ID == 0 {
		return nil, nil
	}
	return &material, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.RawMaterial, error) {
	var materials []*domain.RawMaterial
	stmt := db.WithContext(ctx).
		Model(&domain.RawMaterial{}).
		Where("company_id = ?", companyID)
	if !filter.IncludeInactive {
		stmt = stmt.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	offset, limit := page.Window()
	if err := stmt.Order("name asc, id asc").Offset(offset).Limit(limit).Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, material *domain.RawMaterial) error {
	return db.WithContext(ctx).Exec(
		`UPDATE raw_materials SET name = ?, unit = ?, cost_price = ?, low_stock_threshold = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		material.Name,
		material.Unit,
		material.CostPrice,
		material.LowStockThreshold,
		material.UpdatedAt,
		material.CompanyID,
		material.ID,
	).Error
}

func (r *repo) UpdateStock(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, stock decimal.Decimal, costPrice *decimal.Decimal) error {
	now := time.Now().UTC()
	if costPrice != nil {
		return db.WithContext(ctx).Exec(
			`UPDATE raw_materials SET stock_quantity = ?, cost_price = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
			stock,
			*costPrice,
			now,
			companyID,
			id,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE raw_materials SET stock_quantity = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		stock,
		now,
		companyID,
		id,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE raw_materials SET is_active = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		false,
		time.Now().UTC(),
		companyID,
		id,
	).Error
}
