package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Customer, error)
	FindByName(ctx context.Context, db *gorm.DB, companyID snowflake.ID, name string) (*Customer, error)
	// FindByPhone matches on the trailing ten digits so "+91 98xxx" and "98xxx" agree.
	FindByPhone(ctx context.Context, db *gorm.DB, companyID snowflake.ID, phone string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	// CountReferences returns how many invoices and payments point at the customer.
	CountReferences(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
