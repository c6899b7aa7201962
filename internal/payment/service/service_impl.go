package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	"github.com/smallbiznis/vyapar/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         paymentdomain.Repository
	CustomerRepo customerdomain.Repository
	SupplierRepo supplierdomain.Repository
	AuditSvc     auditdomain.Service `optional:"true"`
	ObsMetrics   *metrics.Metrics    `optional:"true"`
	TxMetrics    *metrics.TxMetrics  `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	clock        clock.Clock
	repo         paymentdomain.Repository
	customerRepo customerdomain.Repository
	supplierRepo supplierdomain.Repository
	auditSvc     auditdomain.Service
	obsMetrics   *metrics.Metrics
	txMetrics    *metrics.TxMetrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("payment.service"),

		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		supplierRepo: p.SupplierRepo,
		auditSvc:     p.AuditSvc,
		obsMetrics:   p.ObsMetrics,
		txMetrics:    p.TxMetrics,
	}
}

// settlementTarget is a validated payment request resolved to ids.
type settlementTarget struct {
	kind           paymentdomain.DocumentKind
	counterpartyID snowflake.ID
	documentID     *snowflake.ID
}

func (s *Service) AcceptPayment(ctx context.Context, req paymentdomain.AcceptPaymentRequest) (paymentdomain.Payment, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	paymentType := paymentdomain.PaymentType(strings.TrimSpace(string(req.PaymentType)))
	if !paymentType.Valid() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidPaymentType
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = paymentdomain.MethodCash
		if paymentType.Supplier() {
			method = paymentdomain.MethodBank
		}
	}
	if !paymentdomain.ValidMethod(method) {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidMethod
	}

	target, err := s.resolveTarget(paymentType, req)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if err := s.ensureCounterparty(ctx, companyID, paymentType, target.counterpartyID); err != nil {
		return paymentdomain.Payment{}, err
	}

	now := s.clock.Now().UTC()
	payment := paymentdomain.Payment{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		Amount:      amount,
		PaymentType: paymentType,
		Method:      method,
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
	}
	counterpartyID := target.counterpartyID
	if paymentType.Customer() {
		payment.CustomerID = &counterpartyID
		payment.InvoiceID = target.documentID
	} else {
		payment.SupplierID = &counterpartyID
		payment.PurchaseID = target.documentID
	}

	var status string
	start := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if target.documentID == nil {
			return s.repo.Insert(ctx, tx, &payment)
		}

		doc, err := s.repo.LockDocument(ctx, tx, target.kind, companyID, *target.documentID)
		if err != nil {
			return err
		}
		if doc == nil {
			if target.kind == paymentdomain.DocumentInvoice {
				return paymentdomain.ErrInvoiceNotFound
			}
			return paymentdomain.ErrPurchaseNotFound
		}
		// A walk-in invoice has no customer and can be settled by any
		// customer of the company.
		if doc.CounterpartyID != nil && *doc.CounterpartyID != target.counterpartyID {
			return paymentdomain.ErrDocumentOwnership
		}

		if paymentType.Forward() {
			if doc.Status == paymentdomain.StatusCancelled {
				return paymentdomain.ErrDocumentCancelled
			}
			sums, err := s.repo.SumForDocument(ctx, tx, doc.Kind, companyID, doc.ID)
			if err != nil {
				return err
			}
			net := sums.Net()
			if net.Add(payment.Amount).GreaterThan(doc.Total) {
				return &paymentdomain.OverpaymentError{
					Total:       doc.Total,
					AlreadyPaid: net,
					MaxPayable:  decimal.Max(doc.Total.Sub(net), decimal.Zero),
				}
			}
		}

		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			return err
		}
		status, err = s.RecomputeStatus(ctx, tx, *doc)
		return err
	})
	s.txMetrics.Observe(metrics.TxPaymentAccept, start, err)
	if err != nil {
		s.obsMetrics.RecordPaymentRejected(ctx, string(paymentType), rejectReason(err))
		return paymentdomain.Payment{}, err
	}
	s.obsMetrics.RecordPaymentAccepted(ctx, string(paymentType))

	fields := []zap.Field{
		zap.String("company_id", companyID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_type", string(paymentType)),
		zap.String("amount", payment.Amount.StringFixed(2)),
	}
	if target.documentID != nil {
		fields = append(fields,
			zap.String("document_id", target.documentID.String()),
			zap.String("document_status", status),
		)
	}
	s.log.Info("payment accepted", fields...)

	if s.auditSvc != nil {
		metadata := map[string]any{
			"payment_type":   string(paymentType),
			"amount":         payment.Amount.StringFixed(2),
			"payment_method": method,
		}
		if target.documentID != nil {
			metadata[string(target.kind)+"_id"] = target.documentID.String()
			metadata["document_status"] = status
		}
		if err := s.auditSvc.AuditLog(ctx, auditdomain.ActionPaymentAccepted, auditdomain.TargetPayment, payment.ID.String(), metadata); err != nil {
			s.log.Warn("audit log failed", zap.String("action", auditdomain.ActionPaymentAccepted), zap.Error(err))
		}
	}
	return payment, nil
}

func (s *Service) RecomputeStatus(ctx context.Context, tx *gorm.DB, doc paymentdomain.Document) (string, error) {
	if doc.Status == paymentdomain.StatusCancelled {
		return doc.Status, nil
	}

	sums, err := s.repo.SumForDocument(ctx, tx, doc.Kind, doc.CompanyID, doc.ID)
	if err != nil {
		return "", err
	}
	status := paymentdomain.StatusFor(sums.Net(), doc.Total)
	if status == doc.Status {
		return status, nil
	}
	if err := s.repo.UpdateDocumentStatus(ctx, tx, doc.Kind, doc.CompanyID, doc.ID, status, s.clock.Now().UTC()); err != nil {
		return "", err
	}
	return status, nil
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListPaymentRequest) (paymentdomain.ListPaymentResponse, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}

	filter := paymentdomain.ListFilter{}
	for _, f := range []struct {
		raw  string
		dest **snowflake.ID
	}{
		{req.CustomerID, &filter.CustomerID},
		{req.SupplierID, &filter.SupplierID},
		{req.InvoiceID, &filter.InvoiceID},
		{req.PurchaseID, &filter.PurchaseID},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		id, err := parseID(f.raw)
		if err != nil {
			return paymentdomain.ListPaymentResponse{}, err
		}
		*f.dest = &id
	}
	if raw := strings.TrimSpace(req.PaymentType); raw != "" {
		paymentType := paymentdomain.PaymentType(raw)
		if !paymentType.Valid() {
			return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidPaymentType
		}
		filter.PaymentType = paymentType
	}

	items, err := s.repo.List(ctx, s.db, companyID, filter, req.Pagination)
	if err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	payments := make([]paymentdomain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}
	return paymentdomain.ListPaymentResponse{PageInfo: pageInfo, Payments: payments}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (paymentdomain.Payment, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	paymentID, err := parseID(id)
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, companyID, paymentID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if payment == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) resolveTarget(paymentType paymentdomain.PaymentType, req paymentdomain.AcceptPaymentRequest) (settlementTarget, error) {
	counterparty, document, other := req.CustomerID, req.InvoiceID, req.SupplierID+req.PurchaseID
	kind := paymentdomain.DocumentInvoice
	if paymentType.Supplier() {
		counterparty, document, other = req.SupplierID, req.PurchaseID, req.CustomerID+req.InvoiceID
		kind = paymentdomain.DocumentPurchase
	}
	if strings.TrimSpace(other) != "" || strings.TrimSpace(counterparty) == "" {
		return settlementTarget{}, paymentdomain.ErrInvalidCounterparty
	}

	counterpartyID, err := parseID(counterparty)
	if err != nil {
		return settlementTarget{}, err
	}
	target := settlementTarget{kind: kind, counterpartyID: counterpartyID}
	if strings.TrimSpace(document) != "" {
		documentID, err := parseID(document)
		if err != nil {
			return settlementTarget{}, err
		}
		target.documentID = &documentID
	}
	return target, nil
}

func (s *Service) ensureCounterparty(ctx context.Context, companyID snowflake.ID, paymentType paymentdomain.PaymentType, id snowflake.ID) error {
	if paymentType.Customer() {
		customer, err := s.customerRepo.FindByID(ctx, s.db, companyID, id)
		if err != nil {
			return err
		}
		if customer == nil {
			return paymentdomain.ErrCustomerNotFound
		}
		return nil
	}

	supplier, err := s.supplierRepo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return paymentdomain.ErrSupplierNotFound
	}
	return nil
}

func rejectReason(err error) string {
	var overpayment *paymentdomain.OverpaymentError
	switch {
	case errors.As(err, &overpayment):
		return "overpayment"
	case errors.Is(err, paymentdomain.ErrDocumentOwnership):
		return "ownership"
	case errors.Is(err, paymentdomain.ErrDocumentCancelled):
		return "cancelled"
	case errors.Is(err, paymentdomain.ErrInvoiceNotFound), errors.Is(err, paymentdomain.ErrPurchaseNotFound):
		return "not_found"
	default:
		return metrics.ClassifyTxReason(err)
	}
}

func (s *Service) companyIDFromContext(ctx context.Context) (snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, paymentdomain.ErrInvalidCompany
	}
	return companyID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, paymentdomain.ErrInvalidID
	}
	return id, nil
}
