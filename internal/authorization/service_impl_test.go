package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	authrepo "github.com/smallbiznis/vyapar/internal/auth/repository"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       Service
	companyID snowflake.ID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node := testutil.Node(t)
	return fixture{
		db:        db,
		node:      node,
		svc:       NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer}),
		companyID: node.Generate(),
	}
}

func (f fixture) user(t *testing.T, companyID snowflake.ID, role authdomain.Role) string {
	t.Helper()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	u := authdomain.User{
		ID:           f.node.Generate(),
		CompanyID:    companyID,
		Email:        f.node.Generate().String() + "@example.com",
		FullName:     "Test User",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, authrepo.Provide().Insert(context.Background(), f.db, &u))
	return "user:" + u.ID.String()
}

func TestOwnerMayDoEverything(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, f.companyID, authdomain.RoleOwner)
	ctx := testutil.CompanyContext(f.companyID)

	for _, check := range [][2]string{
		{ObjectInvoice, ActionInvoiceCancel},
		{ObjectStock, ActionStockAdjust},
		{ObjectProduct, ActionProductDelete},
		{ObjectUser, ActionUserCreate},
		{ObjectAuditLog, ActionAuditLogView},
	} {
		assert.NoError(t, f.svc.Authorize(ctx, owner, f.companyID.String(), check[0], check[1]), check[1])
	}
}

func TestStaffCannotCancelAdjustOrDelete(t *testing.T) {
	f := newFixture(t)
	staff := f.user(t, f.companyID, authdomain.RoleStaff)
	ctx := testutil.CompanyContext(f.companyID)
	company := f.companyID.String()

	assert.NoError(t, f.svc.Authorize(ctx, staff, company, ObjectInvoice, ActionInvoiceCreate))
	assert.NoError(t, f.svc.Authorize(ctx, staff, company, ObjectPayment, ActionPaymentCreate))
	assert.NoError(t, f.svc.Authorize(ctx, staff, company, ObjectAnalytics, ActionAnalyticsView))

	assert.ErrorIs(t, f.svc.Authorize(ctx, staff, company, ObjectInvoice, ActionInvoiceCancel), ErrForbidden)
	assert.ErrorIs(t, f.svc.Authorize(ctx, staff, company, ObjectStock, ActionStockAdjust), ErrForbidden)
	assert.ErrorIs(t, f.svc.Authorize(ctx, staff, company, ObjectCustomer, ActionCustomerDelete), ErrForbidden)
	assert.ErrorIs(t, f.svc.Authorize(ctx, staff, company, ObjectUser, ActionUserCreate), ErrForbidden)
}

func TestRoleChangesApplyOnNextCheck(t *testing.T) {
	f := newFixture(t)
	actor := f.user(t, f.companyID, authdomain.RoleStaff)
	ctx := testutil.CompanyContext(f.companyID)
	company := f.companyID.String()

	assert.ErrorIs(t, f.svc.Authorize(ctx, actor, company, ObjectInvoice, ActionInvoiceCancel), ErrForbidden)

	require.NoError(t, f.db.Table("users").Where("id = ?", actor[len("user:"):]).Update("role", string(authdomain.RoleOwner)).Error)
	assert.NoError(t, f.svc.Authorize(ctx, actor, company, ObjectInvoice, ActionInvoiceCancel))

	require.NoError(t, f.db.Table("users").Where("id = ?", actor[len("user:"):]).Update("role", string(authdomain.RoleStaff)).Error)
	assert.ErrorIs(t, f.svc.Authorize(ctx, actor, company, ObjectInvoice, ActionInvoiceCancel), ErrForbidden)
}

func TestForeignInactiveAndMalformedActors(t *testing.T) {
	f := newFixture(t)
	other := f.node.Generate()
	outsider := f.user(t, other, authdomain.RoleOwner)
	ctx := testutil.CompanyContext(f.companyID)
	company := f.companyID.String()

	assert.ErrorIs(t, f.svc.Authorize(ctx, outsider, company, ObjectInvoice, ActionInvoiceView), ErrForbidden)

	inactive := f.user(t, f.companyID, authdomain.RoleOwner)
	require.NoError(t, f.db.Table("users").Where("id = ?", inactive[len("user:"):]).Update("is_active", false).Error)
	assert.ErrorIs(t, f.svc.Authorize(ctx, inactive, company, ObjectInvoice, ActionInvoiceView), ErrForbidden)

	assert.ErrorIs(t, f.svc.Authorize(ctx, "api_key:1", company, ObjectInvoice, ActionInvoiceView), ErrInvalidActor)
	assert.ErrorIs(t, f.svc.Authorize(ctx, "", company, ObjectInvoice, ActionInvoiceView), ErrInvalidActor)
	assert.ErrorIs(t, f.svc.Authorize(ctx, outsider, "", ObjectInvoice, ActionInvoiceView), ErrInvalidCompany)
	assert.ErrorIs(t, f.svc.Authorize(ctx, outsider, company, "", ActionInvoiceView), ErrInvalidObject)
}
