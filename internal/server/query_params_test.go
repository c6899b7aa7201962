package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIDFilters(t *testing.T) {
	assert.NoError(t, validateIDFilters(
		idFilter{field: "customer_id", value: ""},
		idFilter{field: "invoice_id", value: " 1234567890 "},
	))

	err := validateIDFilters(
		idFilter{field: "customer_id", value: "42"},
		idFilter{field: "invoice_id", value: "INV-0001"},
		idFilter{field: "purchase_id", value: "nope"},
	)
	require.Error(t, err)
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 1)
	assert.Equal(t, "invoice_id", verrs.Errors[0].Field)
	assert.Equal(t, "invalid_invoice_id", verrs.Errors[0].Code)

	assert.Error(t, validateIDFilters(idFilter{field: "supplier_id", value: "0"}))
}

func TestParseIncludeInactive(t *testing.T) {
	v, err := parseIncludeInactive("")
	require.NoError(t, err)
	assert.False(t, v)

	v, err = parseIncludeInactive("true")
	require.NoError(t, err)
	assert.True(t, v)

	_, err = parseIncludeInactive("sometimes")
	assert.Error(t, err)
}

func TestParsePositiveInt(t *testing.T) {
	n, err := parsePositiveInt("", 50)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = parsePositiveInt("7", 50)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = parsePositiveInt("365", 0)
	require.NoError(t, err)
	assert.Equal(t, 365, n)

	for _, raw := range []string{"0", "-3", "51", "ten"} {
		_, err := parsePositiveInt(raw, 50)
		assert.ErrorIs(t, err, errInvalidQueryValue, raw)
	}
}

func TestParseTimeBound(t *testing.T) {
	start, err := parseTimeBound("2026-02-03", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), *start)

	end, err := parseTimeBound("2026-02-03", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 23, 59, 59, 999999999, time.UTC), *end)

	exact, err := parseTimeBound("2026-02-03T10:30:00+05:30", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 5, 0, 0, 0, time.UTC), exact.UTC())

	none, err := parseTimeBound("  ", false)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseTimeBound("03/02/2026", false)
	assert.ErrorIs(t, err, errInvalidQueryValue)
}
