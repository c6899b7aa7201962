package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/chat/domain"
	"github.com/stretchr/testify/assert"
)

func TestMatchIntent(t *testing.T) {
	cases := []struct {
		text string
		want domain.Intent
	}{
		{"revenue", domain.IntentRevenue},
		{"Sales kitni hui", domain.IntentRevenue},
		{"bhai kitna aaya aaj", domain.IntentRevenue},
		{"earn kitna hua", domain.IntentProfit},
		{"net profit batao", domain.IntentProfit},
		{"godown me kya hai", domain.IntentLowStock},
		{"stock check karo", domain.IntentLowStock},
		{"kitna bana is mahine", domain.IntentProduction},
		{"best seller kaun hai", domain.IntentTopProducts},
		{"top selling", domain.IntentTopProducts},
		{"madad", domain.IntentHelp},
	}
	for _, tc := range cases {
		got, ok := MatchIntent(tc.text)
		assert.True(t, ok, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}

	for _, text := range []string{"", "   ", "how do i improve cash flow", "namaste"} {
		_, ok := MatchIntent(text)
		assert.False(t, ok, text)
	}
}

func TestPeriods(t *testing.T) {
	for answer, want := range map[string]int{"1": 7, "30 din": 30, "Quarter": 90, " mahina ": 30} {
		got, ok := periodFromAnswer(answer)
		assert.True(t, ok, answer)
		assert.Equal(t, want, got, answer)
	}
	_, ok := periodFromAnswer("kal")
	assert.False(t, ok)

	for text, want := range map[string]int{"sales last week": 7, "revenue 90": 90, "last 3 month revenue": 90, "is mahina ka revenue": 30} {
		got, ok := periodInText(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
	_, ok = periodInText("revenue")
	assert.False(t, ok)
}

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"950":     "Rs 950",
		"999.4":   "Rs 999",
		"1000":    "Rs 1.0K",
		"3400":    "Rs 3.4K",
		"120000":  "Rs 1.2L",
		"2500000": "Rs 25.0L",
		"-4500":   "-Rs 4.5K",
		"0":       "Rs 0",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatINR(decimal.RequireFromString(in)), in)
	}
}

func TestParseInvoiceCommand(t *testing.T) {
	cases := []struct {
		text string
		kind invoiceCommand
		name string
	}{
		{"send last invoice", invoiceLast, ""},
		{"latest bill", invoiceLast, ""},
		{"aakhri bill bhejo", invoiceLast, ""},
		{"Copy", invoiceCopy, ""},
		{"create invoice for ravi", invoiceCreate, ""},
		{"bill banao", invoiceNone, ""},
		{"send invoice", invoiceAskCustomer, ""},
		{"invoice bhejo", invoiceAskCustomer, ""},
		{"send invoice to Ravi Traders", invoiceByName, "Ravi Traders"},
		{"send mehta bill", invoiceByName, "mehta"},
		{"Gupta ji ko invoice send karo", invoiceByName, "Gupta ji"},
		{"revenue", invoiceNone, ""},
	}
	for _, tc := range cases {
		kind, name := parseInvoiceCommand(tc.text)
		assert.Equal(t, tc.kind, kind, tc.text)
		assert.Equal(t, tc.name, name, tc.text)
	}
}
