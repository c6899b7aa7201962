package docnumber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	issued := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		template string
		seq      int64
		want     string
	}{
		{InvoiceTemplate, 1, "INV-00001"},
		{PurchaseTemplate, 42, "PO-00042"},
		{ProductionTemplate, 123456, "BATCH-123456"},
		{"INV-{YYYY}{MM}{DD}-{SEQ}", 7, "INV-20260409-7"},
	}
	for _, tc := range cases {
		got, err := Format(tc.template, issued, tc.seq)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatRejectsBadInput(t *testing.T) {
	_, err := Format("", time.Now(), 1)
	assert.Error(t, err)

	_, err = Format(InvoiceTemplate, time.Now(), 0)
	assert.Error(t, err)

	_, err = Format("INV-{NOPE}", time.Now(), 1)
	assert.Error(t, err)
}
