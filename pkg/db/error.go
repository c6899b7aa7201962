package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsDuplicateKeyErr reports a unique constraint violation, such as a clashing
// invoice number or customer phone, on any supported driver.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == codeUniqueViolation {
		return true
	}
	return containsAny(err.Error(),
		"duplicate key value violates unique constraint",
		"UNIQUE constraint failed",
		"Error 1062",
	)
}

// IsContentionErr reports lock timeouts, deadlocks and serialization failures
// that a caller may surface as a retryable conflict.
func IsContentionErr(err error) bool {
	if err == nil {
		return false
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return containsAny(err.Error(), "database is locked", "database table is locked")
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func containsAny(msg string, markers ...string) bool {
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
