package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoices.company_id, invoices.number")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestIsContentionErr(t *testing.T) {
	assert.True(t, IsContentionErr(&pgconn.PgError{Code: "55P03"}))
	assert.True(t, IsContentionErr(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsContentionErr(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsContentionErr(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsContentionErr(nil))
	assert.False(t, IsContentionErr(errors.New("boom")))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)

	d, err := Dialect(Config{Type: "sqlite", Path: "file::memory:"})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}
