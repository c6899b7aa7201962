package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/production/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"github.com/smallbiznis/vyapar/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, batch *domain.ProductionBatch) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO production_batches (
			id, company_id, batch_number, finished_product_id, product_name,
			quantity_produced, total_cost, cost_per_unit, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.CompanyID,
		batch.Number,
		batch.ProductID,
		batch.ProductName,
		batch.QuantityProduced,
		batch.TotalCost,
		batch.CostPerUnit,
		batch.Notes,
		batch.CreatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []*domain.ProductionItem) error {
	return repository.ProvideStore[domain.ProductionItem](db).BatchCreate(ctx, items)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.ProductionBatch, error) {
	var batch domain.ProductionBatch
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Limit(1).
		Find(&batch).Error
	if err != nil {
		return nil, err
	}
	if batch.ID == 0 {
		return nil, nil
	}
	return &batch, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, companyID, batchID snowflake.ID) ([]domain.ProductionItem, error) {
	items, err := repository.ProvideStore[domain.ProductionItem](db).Find(ctx,
		&domain.ProductionItem{CompanyID: companyID, BatchID: batchID},
		repository.WithOrder("position asc, id asc"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProductionItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.ProductionBatch, error) {
	var batches []*domain.ProductionBatch
	stmt := db.WithContext(ctx).
		Model(&domain.ProductionBatch{}).
		Where("company_id = ?", companyID)
	if filter.ProductID != nil {
		stmt = stmt.Where("finished_product_id = ?", *filter.ProductID)
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
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}
