package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	ledgerdomain "github.com/smallbiznis/vyapar/internal/ledger/domain"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         ledgerdomain.Repository
	CustomerRepo customerdomain.Repository
	SupplierRepo supplierdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         ledgerdomain.Repository
	customerRepo customerdomain.Repository
	supplierRepo supplierdomain.Repository
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("ledger.service"),
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		supplierRepo: p.SupplierRepo,
	}
}

func (s *Service) CustomerStatement(ctx context.Context, customerID string) (ledgerdomain.CustomerStatement, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return ledgerdomain.CustomerStatement{}, err
	}
	id, err := parseID(customerID)
	if err != nil {
		return ledgerdomain.CustomerStatement{}, err
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return ledgerdomain.CustomerStatement{}, err
	}
	if customer == nil {
		return ledgerdomain.CustomerStatement{}, ledgerdomain.ErrCustomerNotFound
	}

	entries, totals, open, err := s.statement(ctx, ledgerdomain.SideCustomer, companyID, customer.ID)
	if err != nil {
		return ledgerdomain.CustomerStatement{}, err
	}
	return ledgerdomain.CustomerStatement{
		Customer: ledgerdomain.Counterparty{
			ID:    customer.ID,
			Name:  customer.Name,
			Phone: customer.Phone,
			Email: customer.Email,
		},
		Summary: ledgerdomain.CustomerSummary{
			TotalInvoiced: totals.Documented,
			TotalPaid:     totals.Paid,
			TotalRefunded: totals.Refunded,
			Outstanding:   totals.Outstanding(),
		},
		Transactions:   entries,
		UnpaidInvoices: open,
	}, nil
}

func (s *Service) SupplierStatement(ctx context.Context, supplierID string) (ledgerdomain.SupplierStatement, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return ledgerdomain.SupplierStatement{}, err
	}
	id, err := parseID(supplierID)
	if err != nil {
		return ledgerdomain.SupplierStatement{}, err
	}

	supplier, err := s.supplierRepo.FindByID(ctx, s.db, companyID, id)
	if err != nil {
		return ledgerdomain.SupplierStatement{}, err
	}
	if supplier == nil {
		return ledgerdomain.SupplierStatement{}, ledgerdomain.ErrSupplierNotFound
	}

	entries, totals, open, err := s.statement(ctx, ledgerdomain.SideSupplier, companyID, supplier.ID)
	if err != nil {
		return ledgerdomain.SupplierStatement{}, err
	}
	return ledgerdomain.SupplierStatement{
		Supplier: ledgerdomain.Counterparty{
			ID:    supplier.ID,
			Name:  supplier.Name,
			Phone: supplier.Phone,
			Email: supplier.Email,
		},
		Summary: ledgerdomain.SupplierSummary{
			TotalPurchased: totals.Documented,
			TotalPaid:      totals.Paid,
			TotalRefunded:  totals.Refunded,
			Outstanding:    totals.Outstanding(),
		},
		Transactions:    entries,
		UnpaidPurchases: open,
	}, nil
}

func (s *Service) statement(ctx context.Context, side ledgerdomain.Side, companyID, counterpartyID snowflake.ID) ([]ledgerdomain.Entry, ledgerdomain.Totals, []ledgerdomain.OpenDocument, error) {
	documents, err := s.repo.Documents(ctx, s.db, side, companyID, counterpartyID)
	if err != nil {
		return nil, ledgerdomain.Totals{}, nil, err
	}
	payments, err := s.repo.Payments(ctx, s.db, side, companyID, counterpartyID)
	if err != nil {
		return nil, ledgerdomain.Totals{}, nil, err
	}

	documentType, forward, paymentPrefix := ledgerdomain.EntryTypeInvoice, "received", "PMT-"
	if side == ledgerdomain.SideSupplier {
		documentType, forward, paymentPrefix = ledgerdomain.EntryTypePurchase, "paid", "PAY-"
	}

	postings := make([]ledgerdomain.Posting, 0, len(documents)+len(payments))
	open := make([]ledgerdomain.OpenDocument, 0)
	for _, doc := range documents {
		documentID := doc.ID
		postings = append(postings, ledgerdomain.Posting{
			Date:       doc.CreatedAt,
			Type:       documentType,
			Reference:  doc.Number,
			DocumentID: &documentID,
			Debit:      doc.Total,
			Credit:     decimal.Zero,
		})
		if doc.Status == "unpaid" || doc.Status == "partially_paid" {
			open = append(open, ledgerdomain.OpenDocument{
				ID:     doc.ID,
				Number: doc.Number,
				Total:  doc.Total,
				Status: doc.Status,
			})
		}
	}
	for _, payment := range payments {
		posting := ledgerdomain.Posting{
			Date:       payment.CreatedAt,
			Reference:  paymentPrefix + strings.ToUpper(payment.ID.Base36()),
			DocumentID: payment.DocumentID,
		}
		if payment.PaymentType == forward {
			posting.Type = ledgerdomain.EntryTypePayment
			posting.Debit = decimal.Zero
			posting.Credit = payment.Amount
		} else {
			posting.Type = ledgerdomain.EntryTypeRefund
			posting.Debit = payment.Amount
			posting.Credit = decimal.Zero
		}
		postings = append(postings, posting)
	}

	entries, totals := ledgerdomain.BuildStatement(postings)
	return entries, totals, open, nil
}

func (s *Service) CustomerBalances(ctx context.Context) ([]ledgerdomain.Balance, error) {
	return s.balances(ctx, ledgerdomain.SideCustomer)
}

func (s *Service) SupplierBalances(ctx context.Context) ([]ledgerdomain.Balance, error) {
	return s.balances(ctx, ledgerdomain.SideSupplier)
}

func (s *Service) balances(ctx context.Context, side ledgerdomain.Side) ([]ledgerdomain.Balance, error) {
	companyID, err := s.companyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	counterparties, err := s.repo.Counterparties(ctx, s.db, side, companyID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, s.db, side, companyID)
	if err != nil {
		return nil, err
	}

	balances := make([]ledgerdomain.Balance, 0, len(counterparties))
	for _, c := range counterparties {
		billed, paid := decimal.Zero, decimal.Zero
		if t, ok := totals[c.ID]; ok {
			billed = t.Billed
			paid = t.Paid.Sub(t.Refunded)
		}
		balances = append(balances, ledgerdomain.Balance{
			ID:          c.ID,
			Name:        c.Name,
			Phone:       c.Phone,
			Email:       c.Email,
			TotalBilled: billed,
			TotalPaid:   paid,
			Outstanding: billed.Sub(paid),
		})
	}
	return balances, nil
}

func (s *Service) companyIDFromContext(ctx context.Context) (snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return 0, ledgerdomain.ErrInvalidCompany
	}
	return companyID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, ledgerdomain.ErrInvalidID
	}
	return id, nil
}
