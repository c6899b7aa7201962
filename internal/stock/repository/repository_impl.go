package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/stock/domain"
	pkgdb "github.com/smallbiznis/vyapar/pkg/db"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, movement *domain.StockMovement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO stock_movements (
			id, company_id, product_id, raw_material_id, movement_type, quantity_change,
			reference_type, reference_id, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movement.ID,
		movement.CompanyID,
		movement.ProductID,
		movement.RawMaterialID,
		movement.MovementType,
		movement.QuantityChange,
		movement.ReferenceType,
		movement.ReferenceID,
		movement.Notes,
		movement.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.StockMovement, error) {
	var movements []*domain.StockMovement
	stmt := db.WithContext(ctx).
		Model(&domain.StockMovement{}).
		Where("company_id = ?", companyID)
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
	}
	if filter.RawMaterialID != nil {
		stmt = stmt.Where("raw_material_id = ?", *filter.RawMaterialID)
	}
	if filter.MovementType != "" {
		stmt = stmt.Where("movement_type = ?", filter.MovementType)
	}
	if filter.ReferenceType != "" {
		stmt = stmt.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		stmt = stmt.Where("reference_id = ?", *filter.ReferenceID)
	}
	offset, limit := page.Window()
	err := stmt.
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repo) SumByProduct(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.LedgerSum, error) {
	var sums []domain.LedgerSum
	err := db.WithContext(ctx).Raw(
		`SELECT product_id AS entity_id, COALESCE(SUM(quantity_change), 0) AS total
		 FROM stock_movements
		 WHERE company_id = ? AND product_id IS NOT NULL
		 GROUP BY product_id`,
		companyID,
	).Scan(&sums).Error
	return roundSums(sums), err
}

func (r *repo) SumByRawMaterial(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.LedgerSum, error) {
	var sums []domain.LedgerSum
	err := db.WithContext(ctx).Raw(
		`SELECT raw_material_id AS entity_id, COALESCE(SUM(quantity_change), 0) AS total
		 FROM stock_movements
		 WHERE company_id = ? AND raw_material_id IS NOT NULL
		 GROUP BY raw_material_id`,
		companyID,
	).Scan(&sums).Error
	return roundSums(sums), err
}

func roundSums(sums []domain.LedgerSum) []domain.LedgerSum {
	for i := range sums {
		sums[i].Total = pkgdb.Quantity(sums[i].Total)
	}
	return sums
}

func (r *repo) CachedProductStock(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.CachedStock, error) {
	var rows []domain.CachedStock
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, stock FROM products WHERE company_id = ? ORDER BY id`,
		companyID,
	).Scan(&rows).Error
	return rows, err
}

func (r *repo) CachedRawMaterialStock(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]domain.CachedStock, error) {
	var rows []domain.CachedStock
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, stock_quantity AS stock FROM raw_materials WHERE company_id = ? ORDER BY id`,
		companyID,
	).Scan(&rows).Error
	return rows, err
}
