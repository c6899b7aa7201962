package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/company/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, company domain.Company) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO companies (id, name, slug, address, phone, gst_number, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.Name,
		company.Slug,
		company.Address,
		company.Phone,
		company.GSTNumber,
		company.CreatedAt,
		company.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, company domain.Company) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE companies SET name = ?, address = ?, phone = ?, gst_number = ?, updated_at = ? WHERE id = ?`,
		company.Name,
		company.Address,
		company.Phone,
		company.GSTNumber,
		company.UpdatedAt,
		company.ID,
	).Error
}
