package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debit(at time.Time, typ EntryType, amount int64) Posting {
	return Posting{Date: at, Type: typ, Debit: decimal.NewFromInt(amount), Credit: decimal.Zero}
}

func credit(at time.Time, amount int64) Posting {
	return Posting{Date: at, Type: EntryTypePayment, Debit: decimal.Zero, Credit: decimal.NewFromInt(amount)}
}

func balances(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RunningBalance.String())
	}
	return out
}

func TestBuildStatementRunningBalance(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	postings := []Posting{
		debit(t0.Add(time.Hour), EntryTypeInvoice, 500),
		debit(t0.Add(3*time.Hour), EntryTypeInvoice, 300),
		credit(t0.Add(2*time.Hour), 200),
	}

	entries, totals := BuildStatement(postings)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"500", "300", "600"}, balances(entries))
	assert.Equal(t, EntryTypePayment, entries[1].Type)
	assert.Equal(t, "800", totals.Documented.String())
	assert.Equal(t, "200", totals.Paid.String())
	assert.Equal(t, "600", totals.Outstanding().String())
	assert.True(t, totals.Outstanding().Equal(entries[len(entries)-1].RunningBalance))
}

func TestBuildStatementRefundRaisesOutstanding(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	postings := []Posting{
		debit(t0, EntryTypeInvoice, 1000),
		credit(t0.Add(time.Hour), 1000),
		debit(t0.Add(2*time.Hour), EntryTypeRefund, 250),
	}

	entries, totals := BuildStatement(postings)
	assert.Equal(t, []string{"1000", "0", "250"}, balances(entries))
	assert.Equal(t, "250", totals.Refunded.String())
	assert.Equal(t, "250", totals.Outstanding().String())
}

func TestBuildStatementKeepsInputOrderOnTies(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	postings := []Posting{
		debit(at, EntryTypeInvoice, 100),
		credit(at, 100),
		debit(at, EntryTypeInvoice, 40),
	}

	entries, _ := BuildStatement(postings)
	assert.Equal(t, []string{"100", "0", "40"}, balances(entries))
	assert.Equal(t, EntryTypeInvoice, entries[0].Type)
	assert.Equal(t, EntryTypePayment, entries[1].Type)
}

func TestBuildStatementEmpty(t *testing.T) {
	entries, totals := BuildStatement(nil)
	assert.Empty(t, entries)
	assert.True(t, totals.Outstanding().IsZero())
}
