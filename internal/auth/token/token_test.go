package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	issuer, err := NewIssuer("s3cret", time.Hour, clk)
	require.NoError(t, err)

	raw, expiresAt, err := issuer.Issue(snowflake.ID(42), snowflake.ID(7), "owner")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	userID, companyID, claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), userID)
	assert.Equal(t, snowflake.ID(7), companyID)
	assert.Equal(t, "owner", claims.Role)
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	issuer, err := NewIssuer("s3cret", time.Hour, clk)
	require.NoError(t, err)

	raw, _, err := issuer.Issue(snowflake.ID(42), snowflake.ID(7), "staff")
	require.NoError(t, err)

	other, err := NewIssuer("different", time.Hour, clk)
	require.NoError(t, err)
	_, _, _, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)

	clk.Advance(2 * time.Hour)
	_, _, _, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)

	_, _, _, err = issuer.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour, clock.New())
	assert.ErrorIs(t, err, ErrMissingSecret)
}
