// Package docnumber renders human-readable document numbers such as
// INV-00042 from a template and a per-company sequence.
package docnumber

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const (
	InvoiceTemplate    = "INV-{SEQ5}"
	PurchaseTemplate   = "PO-{SEQ5}"
	ProductionTemplate = "BATCH-{SEQ5}"
)

// Format replaces date and sequence tokens in template. It has no side
// effects and is deterministic for the same inputs.
func Format(template string, issuedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("document number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid document sequence: %d", seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in document number: %s", out)
	}
	return out, nil
}

// Next counts the company's rows in table and formats the following number.
// Two writers racing on the same company produce the same number; the
// unique (company_id, number) index rejects the loser.
func Next(ctx context.Context, tx *gorm.DB, table, template string, companyID snowflake.ID, issuedAt time.Time) (string, error) {
	var count int64
	err := tx.WithContext(ctx).
		Table(table).
		Where("company_id = ?", companyID).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return Format(template, issuedAt, count+1)
}
