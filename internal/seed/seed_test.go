package seed

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	"github.com/smallbiznis/vyapar/internal/auth/password"
	"github.com/smallbiznis/vyapar/internal/clock"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureDefaultCompanyNoopWithoutID(t *testing.T) {
	db := testutil.OpenDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	require.NoError(t, EnsureDefaultCompany(context.Background(), db, testutil.Node(t), clk, config.Config{}, zap.NewNop()))

	var count int64
	require.NoError(t, db.Model(&companydomain.Company{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureDefaultCompanyIsIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{
		DefaultCompanyID:  4242,
		SeedOwnerEmail:    " Owner@Example.com ",
		SeedOwnerPassword: "s3cret-pass",
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, EnsureDefaultCompany(context.Background(), db, node, clk, cfg, zap.NewNop()))
	}

	var companies []companydomain.Company
	require.NoError(t, db.Find(&companies).Error)
	require.Len(t, companies, 1)
	assert.Equal(t, "4242", companies[0].ID.String())
	assert.Equal(t, "main", companies[0].Slug)

	var users []authdomain.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "owner@example.com", users[0].Email)
	assert.Equal(t, authdomain.RoleOwner, users[0].Role)
	assert.Equal(t, companies[0].ID, users[0].CompanyID)
	assert.True(t, password.Verify("s3cret-pass", users[0].PasswordHash))
}

func TestEnsureDefaultCompanyAvoidsSlugClash(t *testing.T) {
	db := testutil.OpenDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	now := clk.Now()
	require.NoError(t, db.Create(&companydomain.Company{
		ID: 1, Name: "Main", Slug: "main", CreatedAt: now, UpdatedAt: now,
	}).Error)

	cfg := config.Config{DefaultCompanyID: 2}
	require.NoError(t, EnsureDefaultCompany(context.Background(), db, testutil.Node(t), clk, cfg, zap.NewNop()))

	var company companydomain.Company
	require.NoError(t, db.First(&company, "id = ?", 2).Error)
	assert.Equal(t, "main-2", company.Slug)
}

func TestEnsureDefaultCompanyRejectsForeignOwner(t *testing.T) {
	db := testutil.OpenDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	now := clk.Now()
	require.NoError(t, db.Create(&authdomain.User{
		ID: 10, CompanyID: 99, Email: "owner@example.com", FullName: "Other",
		PasswordHash: "x", Role: authdomain.RoleOwner, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}).Error)

	cfg := config.Config{
		DefaultCompanyID:  1,
		SeedOwnerEmail:    "owner@example.com",
		SeedOwnerPassword: "s3cret-pass",
	}
	err := EnsureDefaultCompany(context.Background(), db, testutil.Node(t), clk, cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidSeed)
}
