package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/purchase/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"github.com/smallbiznis/vyapar/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO purchases (
			id, company_id, supplier_id, purchase_number, supplier_name,
			total_amount, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		purchase.ID,
		purchase.CompanyID,
		purchase.SupplierID,
		purchase.Number,
		purchase.SupplierName,
		purchase.TotalAmount,
		purchase.Status,
		purchase.Notes,
		purchase.CreatedAt,
		purchase.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []*domain.PurchaseItem) error {
	return repository.ProvideStore[domain.PurchaseItem](db).BatchCreate(ctx, items)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&purchase).Error
	if err != nil {
		return nil, err
	}
	if purchase.ID == 0 {
		return nil, nil
	}
	return &purchase, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, companyID, purchaseID snowflake.ID) ([]domain.PurchaseItem, error) {
	items, err := repository.ProvideStore[domain.PurchaseItem](db).Find(ctx,
		&domain.PurchaseItem{CompanyID: companyID, PurchaseID: purchaseID},
		repository.WithOrder("position asc, id asc"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PurchaseItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Purchase, error) {
	var purchases []*domain.Purchase
	stmt := db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		stmt = stmt.Where("supplier_id = ?", *filter.SupplierID)
	}
	offset, limit := page.Window()
	err := stmt.
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}
