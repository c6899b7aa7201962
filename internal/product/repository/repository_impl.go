package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/product/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, company_id, name, sku, description, unit, price, stock, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.CompanyID,
		product.Name,
		product.SKU,
		product.Description,
		product.Unit,
		product.Price,
		product.Stock,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
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
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET name = ?, sku = ?, description = ?, unit = ?, price = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		product.Name,
		product.SKU,
		product.Description,
		product.Unit,
		product.Price,
		product.UpdatedAt,
		product.CompanyID,
		product.ID,
	).Error
}

func (r *repo) UpdateStock(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, stock decimal.Decimal) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET stock = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		stock,
		time.Now().UTC(),
		companyID,
		id,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET is_active = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		false,
		time.Now().UTC(),
		companyID,
		id,
	).Error
}
