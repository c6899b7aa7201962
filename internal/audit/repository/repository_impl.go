package repository

import (
	"context"

	"github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

// List returns one row past the page so the caller can tell whether more exist.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.AuditLog, error) {
	offset, limit := page.Window()

	var logs []*domain.AuditLog
	err := db.WithContext(ctx).
		Scopes(matching(filter)).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func matching(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Model(&domain.AuditLog{}).Where("company_id = ?", filter.CompanyID)
		for _, eq := range []struct{ column, value string }{
			{"action", filter.Action},
			{"actor_type", filter.ActorType},
			{"target_type", filter.TargetType},
			{"target_id", filter.TargetID},
		} {
			if eq.value != "" {
				db = db.Where(eq.column+" = ?", eq.value)
			}
		}
		if filter.StartAt != nil {
			db = db.Where("created_at >= ?", filter.StartAt.UTC())
		}
		if filter.EndAt != nil {
			db = db.Where("created_at <= ?", filter.EndAt.UTC())
		}
		return db
	}
}
