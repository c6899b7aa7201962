package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

const (
	ActionInvoiceCreated    = "invoice.created"
	ActionInvoiceCancelled  = "invoice.cancelled"
	ActionInvoiceSent       = "invoice.sent"
	ActionPurchaseCreated   = "purchase.created"
	ActionProductionCreated = "production.created"
	ActionPaymentAccepted   = "payment.accepted"
	ActionStockAdjusted     = "stock.adjusted"
	ActionUserCreated       = "user.created"
	ActionAccessDenied      = "authorization.denied"
)

// Target types name the entity an audit entry is about.
const (
	TargetInvoice         = "invoice"
	TargetPurchase        = "purchase"
	TargetProductionBatch = "production_batch"
	TargetPayment         = "payment"
	TargetStockMovement   = "stock_movement"
	TargetUser            = "user"
	TargetAuthorization   = "authorization"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string     `form:"action"`
	ActorType  string     `form:"actor_type"`
	TargetType string     `form:"target_type"`
	TargetID   string     `form:"target_id"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02T15:04:05Z07:00"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02T15:04:05Z07:00"`
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// AuditLog records action on the target. Company and actor come from ctx.
	AuditLog(ctx context.Context, action string, targetType string, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidActorType = errors.New("invalid_actor_type")
)
