package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCompany     = "company"
	ObjectUser        = "user"
	ObjectProduct     = "product"
	ObjectRawMaterial = "raw_material"
	ObjectCustomer    = "customer"
	ObjectSupplier    = "supplier"
	ObjectInvoice     = "invoice"
	ObjectPurchase    = "purchase"
	ObjectProduction  = "production"
	ObjectPayment     = "payment"
	ObjectStock       = "stock"
	ObjectLedger      = "ledger"
	ObjectAnalytics   = "analytics"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionCompanyView   = "company.view"
	ActionCompanyUpdate = "company.update"

	ActionUserView   = "user.view"
	ActionUserCreate = "user.create"

	ActionProductView   = "product.view"
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"

	ActionRawMaterialView   = "raw_material.view"
	ActionRawMaterialCreate = "raw_material.create"
	ActionRawMaterialUpdate = "raw_material.update"
	ActionRawMaterialDelete = "raw_material.delete"

	ActionCustomerView   = "customer.view"
	ActionCustomerCreate = "customer.create"
	ActionCustomerUpdate = "customer.update"
	ActionCustomerDelete = "customer.delete"

	ActionSupplierView   = "supplier.view"
	ActionSupplierCreate = "supplier.create"
	ActionSupplierUpdate = "supplier.update"
	ActionSupplierDelete = "supplier.delete"

	ActionInvoiceView   = "invoice.view"
	ActionInvoiceCreate = "invoice.create"
	ActionInvoiceCancel = "invoice.cancel"
	ActionInvoiceSend   = "invoice.send"

	ActionPurchaseView   = "purchase.view"
	ActionPurchaseCreate = "purchase.create"

	ActionProductionView   = "production.view"
	ActionProductionCreate = "production.create"

	ActionPaymentView   = "payment.view"
	ActionPaymentCreate = "payment.create"

	ActionStockView   = "stock.view"
	ActionStockAdjust = "stock.adjust"

	ActionLedgerView    = "ledger.view"
	ActionAnalyticsView = "analytics.view"
	ActionAuditLogView  = "audit_log.view"
)

const (
	RoleOwner = "role:owner"
	RoleStaff = "role:staff"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

// Authorize checks actor ("user:<id>") against the role stored on its user row.
func (s *ServiceImpl) Authorize(ctx context.Context, actor string, companyID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return ErrInvalidCompany
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, companyID)
	if err != nil {
		s.auditDenied(ctx, actor, object, action)
		return err
	}

	domain := fmt.Sprintf("company:%s", companyID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actor, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, companyID string) (string, string, error) {
	userIDRaw, ok := strings.CutPrefix(actor, userSubjectPrefix)
	if !ok {
		return "", "", ErrInvalidActor
	}
	userID, err := snowflake.ParseString(userIDRaw)
	if err != nil || userID == 0 {
		return "", "", ErrInvalidActor
	}
	parsedCompanyID, err := snowflake.ParseString(companyID)
	if err != nil || parsedCompanyID == 0 {
		return "", "", ErrInvalidCompany
	}

	role, err := s.roleForUser(ctx, parsedCompanyID, userID)
	if err != nil {
		return "", "", err
	}
	return UserSubject(userID.String()), "role:" + strings.ToLower(role), nil
}

func (s *ServiceImpl) roleForUser(ctx context.Context, companyID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM users
		 WHERE company_id = ? AND id = ? AND is_active = ?
		 LIMIT 1`,
		companyID,
		userID,
		true,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

// ensureGrouping keeps exactly one role per subject and domain.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actor string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, auditdomain.ActionAccessDenied, auditdomain.TargetAuthorization, object, map[string]any{
		"object":  object,
		"action":  action,
		"subject": actor,
	}); err != nil {
		s.log.Warn("audit authorization.denied failed", zap.Error(err))
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{RoleOwner, "*", "*"},

		// Staff run the day but cannot cancel, adjust or delete.
		{RoleStaff, ObjectCompany, ActionCompanyView},
		{RoleStaff, ObjectProduct, ActionProductView},
		{RoleStaff, ObjectProduct, ActionProductCreate},
		{RoleStaff, ObjectProduct, ActionProductUpdate},
		{RoleStaff, ObjectRawMaterial, ActionRawMaterialView},
		{RoleStaff, ObjectRawMaterial, ActionRawMaterialCreate},
		{RoleStaff, ObjectRawMaterial, ActionRawMaterialUpdate},
		{RoleStaff, ObjectCustomer, ActionCustomerView},
		{RoleStaff, ObjectCustomer, ActionCustomerCreate},
		{RoleStaff, ObjectCustomer, ActionCustomerUpdate},
		{RoleStaff, ObjectSupplier, ActionSupplierView},
		{RoleStaff, ObjectSupplier, ActionSupplierCreate},
		{RoleStaff, ObjectSupplier, ActionSupplierUpdate},
		{RoleStaff, ObjectInvoice, ActionInvoiceView},
		{RoleStaff, ObjectInvoice, ActionInvoiceCreate},
		{RoleStaff, ObjectInvoice, ActionInvoiceSend},
		{RoleStaff, ObjectPurchase, ActionPurchaseView},
		{RoleStaff, ObjectPurchase, ActionPurchaseCreate},
		{RoleStaff, ObjectProduction, ActionProductionView},
		{RoleStaff, ObjectProduction, ActionProductionCreate},
		{RoleStaff, ObjectPayment, ActionPaymentView},
		{RoleStaff, ObjectPayment, ActionPaymentCreate},
		{RoleStaff, ObjectStock, ActionStockView},
		{RoleStaff, ObjectLedger, ActionLedgerView},
		{RoleStaff, ObjectAnalytics, ActionAnalyticsView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
