// Package domain contains persistence models for the company service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the tenant. Every other row carries its ID.
type Company struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_companies_slug" json:"slug"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	Phone     string       `gorm:"type:text" json:"phone,omitempty"`
	GSTNumber string       `gorm:"column:gst_number;type:text" json:"gst_number,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }
