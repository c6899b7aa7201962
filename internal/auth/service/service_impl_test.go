package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	authrepo "github.com/smallbiznis/vyapar/internal/auth/repository"
	authservice "github.com/smallbiznis/vyapar/internal/auth/service"
	"github.com/smallbiznis/vyapar/internal/auth/token"
	"github.com/smallbiznis/vyapar/internal/clock"
	companyrepo "github.com/smallbiznis/vyapar/internal/company/repository"
	companyservice "github.com/smallbiznis/vyapar/internal/company/service"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	svc   authdomain.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	issuer, err := token.NewIssuer("test-secret", time.Hour, clk)
	require.NoError(t, err)

	companySvc := companyservice.NewService(companyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  companyrepo.NewRepository(db),
	})

	return fixture{
		db:    db,
		clock: clk,
		svc: authservice.New(authservice.Params{
			DB:         db,
			Log:        zap.NewNop(),
			GenID:      node,
			Clock:      clk,
			Repo:       authrepo.Provide(),
			CompanySvc: companySvc,
			Issuer:     issuer,
		}),
	}
}

func (f fixture) register(t *testing.T, email string) *authdomain.RegisterResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), authdomain.RegisterRequest{
		CompanyName:  "Sharma Soaps",
		CompanyPhone: "9876543210",
		Email:        email,
		FullName:     "Ravi Sharma",
		Password:     "correct-password",
	})
	require.NoError(t, err)
	return res
}

func userContext(companyID, userID snowflake.ID, role authdomain.Role) context.Context {
	ctx := testutil.CompanyContext(companyID)
	return companyctx.WithActor(ctx, companyctx.Actor{Type: companyctx.ActorTypeUser, ID: userID.String(), Role: string(role)})
}

func TestRegisterCreatesCompanyAndOwner(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "Ravi@Example.com")

	assert.Equal(t, "sharma-soaps", res.Company.Slug)
	assert.Equal(t, res.Company.ID, res.User.CompanyID)
	assert.Equal(t, authdomain.RoleOwner, res.User.Role)
	assert.Equal(t, "ravi@example.com", res.User.Email)
	assert.NotContains(t, res.User.PasswordHash, "correct-password")

	_, err := f.svc.Register(context.Background(), authdomain.RegisterRequest{
		CompanyName: "Another",
		Email:       "ravi@example.com",
		FullName:    "Someone",
		Password:    "another-password",
	})
	assert.ErrorIs(t, err, authdomain.ErrEmailTaken)

	var companies int64
	require.NoError(t, f.db.Table("companies").Count(&companies).Error)
	assert.Equal(t, int64(1), companies)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  authdomain.RegisterRequest
		want error
	}{
		{"bad email", authdomain.RegisterRequest{CompanyName: "A", Email: "nope", FullName: "A", Password: "long-enough"}, authdomain.ErrInvalidEmail},
		{"short password", authdomain.RegisterRequest{CompanyName: "A", Email: "a@b.co", FullName: "A", Password: "short"}, authdomain.ErrWeakPassword},
		{"missing name", authdomain.RegisterRequest{CompanyName: "A", Email: "a@b.co", Password: "long-enough"}, authdomain.ErrInvalidName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "ravi@example.com")

	_, err := f.svc.Login(context.Background(), authdomain.LoginRequest{Email: "ravi@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), authdomain.LoginRequest{Email: "ghost@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	login, err := f.svc.Login(context.Background(), authdomain.LoginRequest{Email: "RAVI@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, f.clock.Now().Add(time.Hour), login.ExpiresAt)

	principal, err := f.svc.Authenticate(context.Background(), login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, principal.UserID)
	assert.Equal(t, res.Company.ID, principal.CompanyID)
	assert.Equal(t, authdomain.RoleOwner, principal.Role)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.Authenticate(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "ravi@example.com")

	login, err := f.svc.Login(context.Background(), authdomain.LoginRequest{Email: "ravi@example.com", Password: "correct-password"})
	require.NoError(t, err)

	require.NoError(t, f.db.Table("users").Where("id = ?", res.User.ID).Update("is_active", false).Error)

	_, err = f.svc.Login(context.Background(), authdomain.LoginRequest{Email: "ravi@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, authdomain.ErrAccountInactive)

	_, err = f.svc.Authenticate(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, authdomain.ErrAccountInactive)
}

func TestCreateUserAndMe(t *testing.T) {
	f := newFixture(t)
	res := f.register(t, "ravi@example.com")
	ctx := userContext(res.Company.ID, res.User.ID, authdomain.RoleOwner)

	staff, err := f.svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "priya@example.com", Password: "staff-password"})
	require.NoError(t, err)
	assert.Equal(t, authdomain.RoleStaff, staff.Role)
	assert.Equal(t, "priya", staff.FullName)
	assert.Equal(t, res.Company.ID, staff.CompanyID)

	_, err = f.svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "priya@example.com", Password: "staff-password"})
	assert.ErrorIs(t, err, authdomain.ErrEmailTaken)

	_, err = f.svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "x@example.com", Password: "staff-password", Role: "admin"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidRole)

	me, err := f.svc.Me(userContext(res.Company.ID, staff.ID, authdomain.RoleStaff))
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", me.Email)

	_, err = f.svc.Me(testutil.CompanyContext(res.Company.ID))
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
