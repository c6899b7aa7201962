package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/internal/clock"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	"github.com/smallbiznis/vyapar/internal/docnumber"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"github.com/smallbiznis/vyapar/internal/observability/metrics"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/pkg/db"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"github.com/smallbiznis/vyapar/pkg/phone"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         invoicedomain.Repository
	CustomerRepo customerdomain.Repository
	ProductRepo  productdomain.Repository
	CompanyRepo  companydomain.Repository
	StockSvc     stockdomain.Service
	Renderer     invoicedomain.Renderer       `optional:"true"`
	Sender       invoicedomain.DocumentSender `optional:"true"`
	AuditSvc     auditdomain.Service          `optional:"true"`
	TxMetrics    *metrics.TxMetrics           `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	clock        clock.Clock
	repo         invoicedomain.Repository
	customerRepo customerdomain.Repository
	productRepo  productdomain.Repository
	companyRepo  companydomain.Repository
	stockSvc     stockdomain.Service
	renderer     invoicedomain.Renderer
	sender       invoicedomain.DocumentSender
	auditSvc     auditdomain.Service
	txMetrics    *metrics.TxMetrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		productRepo:  p.ProductRepo,
		companyRepo:  p.CompanyRepo,
		stockSvc:     p.StockSvc,
		renderer:     p.Renderer,
		sender:       p.Sender,
		auditSvc:     p.AuditSvc,
		txMetrics:    p.TxMetrics,
	}
}

type lineRequest struct {
	productID snowflake.ID
	quantity  decimal.Decimal
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if len(req.Items) == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrEmptyItems
	}
	if req.TaxPercent.IsNegative() || req.TaxPercent.GreaterThan(hundred) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTax
	}
	if req.Discount.IsNegative() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidDiscount
	}

	lines := make([]lineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := parseID(item.ProductID)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		if !item.Quantity.IsPositive() {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidQuantity
		}
		lines = append(lines, lineRequest{productID: productID, quantity: item.Quantity})
	}

	now := s.clock.Now().UTC()
	invoice := invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		TaxPercent:    req.TaxPercent,
		Discount:      req.Discount.Round(2),
		Status:        invoicedomain.InvoiceStatusUnpaid,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := parseID(raw)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		customer, err := s.customerRepo.FindByID(ctx, s.db, companyID, customerID)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		if customer == nil {
			return invoicedomain.Invoice{}, invoicedomain.ErrCustomerNotFound
		}
		invoice.CustomerID = &customer.ID
		invoice.CustomerName = customer.Name
		if invoice.CustomerEmail == "" {
			invoice.CustomerEmail = customer.Email
		}
		if invoice.CustomerPhone == "" {
			invoice.CustomerPhone = customer.Phone
		}
	}
	if invoice.CustomerName == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCustomer
	}

	start := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := docnumber.Next(ctx, tx, invoicedomain.Invoice{}.TableName(), docnumber.InvoiceTemplate, companyID, now)
		if err != nil {
			return err
		}
		invoice.Number = number

		items := make([]*invoicedomain.InvoiceItem, 0, len(lines))
		subtotal := decimal.Zero
		for i, line := range lines {
			product, err := s.productRepo.FindByID(ctx, tx, companyID, line.productID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return invoicedomain.ErrProductNotFound
			}

			if _, err := s.stockSvc.ApplyProduct(ctx, tx, stockdomain.Change{
				CompanyID:     companyID,
				EntityID:      product.ID,
				Quantity:      line.quantity.Neg(),
				MovementType:  stockdomain.MovementSale,
				ReferenceType: stockdomain.ReferenceInvoice,
				ReferenceID:   invoice.ID,
				Notes:         fmt.Sprintf("Sold via %s", number),
			}); err != nil {
				return err
			}

			lineTotal := product.Price.Mul(line.quantity).Round(2)
			subtotal = subtotal.Add(lineTotal)
			items = append(items, &invoicedomain.InvoiceItem{
				ID:          s.genID.Generate(),
				CompanyID:   companyID,
				InvoiceID:   invoice.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.quantity,
				UnitPrice:   product.Price,
				TotalPrice:  lineTotal,
				Position:    i,
			})
		}

		invoice.Subtotal = subtotal
		invoice.TaxAmount = subtotal.Mul(invoice.TaxPercent).Div(hundred).Round(2)
		invoice.Total = invoice.Subtotal.Add(invoice.TaxAmount).Sub(invoice.Discount)
		if invoice.Total.IsNegative() {
			return invoicedomain.ErrInvalidDiscount
		}

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return invoicedomain.ErrDuplicateNumber
			}
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}

		invoice.Items = make([]invoicedomain.InvoiceItem, 0, len(items))
		for _, item := range items {
			invoice.Items = append(invoice.Items, *item)
		}
		return nil
	})
	s.txMetrics.Observe(metrics.TxInvoiceCreate, start, err)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("company_id", companyID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.Number),
		zap.Int("items", len(invoice.Items)),
	)
	s.audit(ctx, auditdomain.ActionInvoiceCreated, invoice.ID, map[string]any{
		"invoice_number": invoice.Number,
		"total":          invoice.Total.StringFixed(2),
		"items":          len(invoice.Items),
	})
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	filter := invoicedomain.ListFilter{}
	if status := invoicedomain.InvoiceStatus(strings.TrimSpace(req.Status)); status != "" {
		if !invoicedomain.ValidStatus(status) {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := parseID(raw)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		filter.CustomerID = &customerID
	}

	items, err := s.repo.List(ctx, s.db, companyID, filter, req.Pagination)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoicedomain.ListInvoiceResponse{PageInfo: pageInfo, Invoices: invoices}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, companyID, invoiceID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return s.withItems(ctx, *invoice)
}

func (s *Service) Latest(ctx context.Context, customerID string) (invoicedomain.Invoice, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	var filter *snowflake.ID
	if raw := strings.TrimSpace(customerID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		filter = &id
	}

	invoice, err := s.repo.Latest(ctx, s.db, companyID, filter)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return s.withItems(ctx, *invoice)
}

func (s *Service) Cancel(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	var cancelled invoicedomain.Invoice
	start := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.LockByID(ctx, tx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrNotFound
		}
		if invoice.Status == invoicedomain.InvoiceStatusCancelled {
			return invoicedomain.ErrAlreadyCancelled
		}

		previous := invoice.Status
		invoice.Status = invoicedomain.InvoiceStatusCancelled
		invoice.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.UpdateStatus(ctx, tx, companyID, invoice.ID, invoice.Status, invoice.UpdatedAt); err != nil {
			return err
		}
		cancelled = *invoice

		s.log.Info("invoice cancelled",
			zap.String("company_id", companyID.String()),
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("previous_status", string(previous)),
		)
		return nil
	})
	s.txMetrics.Observe(metrics.TxInvoiceCancel, start, err)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.audit(ctx, auditdomain.ActionInvoiceCancelled, cancelled.ID, map[string]any{
		"invoice_number": cancelled.Number,
	})
	return s.withItems(ctx, cancelled)
}

func (s *Service) RenderPDF(ctx context.Context, id string) (invoicedomain.PDFDocument, error) {
	if s.renderer == nil {
		return invoicedomain.PDFDocument{}, invoicedomain.ErrRenderingDisabled
	}

	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.PDFDocument{}, err
	}
	return s.render(ctx, invoice)
}

func (s *Service) SendWhatsApp(ctx context.Context, id string, to string) (string, error) {
	if s.sender == nil {
		return "", invoicedomain.ErrDeliveryDisabled
	}
	if s.renderer == nil {
		return "", invoicedomain.ErrRenderingDisabled
	}

	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	recipient := phone.Normalize(to)
	if recipient == "" {
		recipient, err = s.customerPhone(ctx, invoice)
		if err != nil {
			return "", err
		}
	}
	if recipient == "" {
		return "", invoicedomain.ErrNoRecipient
	}

	doc, err := s.render(ctx, invoice)
	if err != nil {
		return "", err
	}

	caption := fmt.Sprintf("Invoice %s | Total Rs %s", invoice.Number, invoice.Total.StringFixed(2))
	if err := s.sender.SendDocument(ctx, recipient, doc.Filename, caption, doc.Content); err != nil {
		s.log.Warn("invoice delivery failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
		return "", err
	}

	s.audit(ctx, auditdomain.ActionInvoiceSent, invoice.ID, map[string]any{
		"invoice_number": invoice.Number,
		"to":             recipient,
	})
	return recipient, nil
}

func (s *Service) render(ctx context.Context, invoice invoicedomain.Invoice) (invoicedomain.PDFDocument, error) {
	company, err := s.companyRepo.FindByID(ctx, invoice.CompanyID)
	if err != nil {
		return invoicedomain.PDFDocument{}, err
	}
	if company == nil {
		return invoicedomain.PDFDocument{}, invoicedomain.ErrInvalidCompany
	}

	content, err := s.renderer.RenderInvoice(ctx, *company, invoice)
	if err != nil {
		return invoicedomain.PDFDocument{}, err
	}
	return invoicedomain.PDFDocument{
		Filename: invoice.Number + ".pdf",
		Content:  content,
	}, nil
}

func (s *Service) customerPhone(ctx context.Context, invoice invoicedomain.Invoice) (string, error) {
	if invoice.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, s.db, invoice.CompanyID, *invoice.CustomerID)
		if err != nil {
			return "", err
		}
		if customer != nil {
			if normalized := phone.Normalize(customer.Phone); normalized != "" {
				return normalized, nil
			}
		}
	}
	return phone.Normalize(invoice.CustomerPhone), nil
}

func (s *Service) withItems(ctx context.Context, invoice invoicedomain.Invoice) (invoicedomain.Invoice, error) {
	items, err := s.repo.ListItems(ctx, s.db, invoice.CompanyID, invoice.ID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoice.Items = items
	return invoice, nil
}

func (s *Service) audit(ctx context.Context, action string, invoiceID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, action, auditdomain.TargetInvoice, invoiceID.String(), metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) companyIDFromContext(ctx context.Context) (snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, invoicedomain.ErrInvalidCompany
	}
	return companyID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invoicedomain.ErrInvalidID
	}
	return id, nil
}
