package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*User, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]*User, error)
}
