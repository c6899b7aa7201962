// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleStaff:
		return true
	default:
		return false
	}
}

// User is a dashboard account. Every user belongs to exactly one company and
// emails are unique across companies.
type User struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID           snowflake.ID `gorm:"not null;index" json:"company_id"`
	Email               string       `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	FullName            string       `gorm:"type:text;not null" json:"full_name"`
	PasswordHash        string       `gorm:"type:text;not null" json:"-"`
	Role                Role         `gorm:"type:text;not null;default:'owner'" json:"role"`
	IsActive            bool         `gorm:"not null;default:true" json:"is_active"`
	LastPasswordChanged *time.Time   `gorm:"column:last_password_changed" json:"-"`
	CreatedAt           time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
