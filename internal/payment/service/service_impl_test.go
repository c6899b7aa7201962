package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/internal/clock"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	customerrepo "github.com/smallbiznis/vyapar/internal/customer/repository"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/vyapar/internal/invoice/repository"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/vyapar/internal/payment/repository"
	paymentservice "github.com/smallbiznis/vyapar/internal/payment/service"
	purchasedomain "github.com/smallbiznis/vyapar/internal/purchase/domain"
	purchaserepo "github.com/smallbiznis/vyapar/internal/purchase/repository"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
	supplierrepo "github.com/smallbiznis/vyapar/internal/supplier/repository"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       paymentdomain.Service
	companyID snowflake.ID
	ctx       context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	svc := paymentservice.NewService(paymentservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		Repo:         paymentrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		SupplierRepo: supplierrepo.Provide(),
	})

	companyID := node.Generate()
	return fixture{
		db:        db,
		node:      node,
		svc:       svc,
		companyID: companyID,
		ctx:       testutil.CompanyContext(companyID),
	}
}

func (f fixture) seedCustomer(t *testing.T, name string) customerdomain.Customer {
	t.Helper()
	now := time.Now().UTC()
	customer := customerdomain.Customer{ID: f.node.Generate(), CompanyID: f.companyID, Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, customerrepo.Provide().Insert(f.ctx, f.db, &customer))
	return customer
}

func (f fixture) seedInvoice(t *testing.T, customerID *snowflake.ID, number string, total int64) invoicedomain.Invoice {
	t.Helper()
	return f.seedInvoiceTotal(t, customerID, number, decimal.NewFromInt(total))
}

func (f fixture) seedInvoiceTotal(t *testing.T, customerID *snowflake.ID, number string, amount decimal.Decimal) invoicedomain.Invoice {
	t.Helper()
	now := time.Now().UTC()
	invoice := invoicedomain.Invoice{
		ID:           f.node.Generate(),
		CompanyID:    f.companyID,
		CustomerID:   customerID,
		Number:       number,
		CustomerName: "Counter sale",
		Subtotal:     amount,
		Total:        amount,
		Status:       invoicedomain.InvoiceStatusUnpaid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, invoicerepo.Provide().Insert(f.ctx, f.db, &invoice))
	return invoice
}

func (f fixture) invoiceStatus(t *testing.T, id snowflake.ID) invoicedomain.InvoiceStatus {
	t.Helper()
	invoice, err := invoicerepo.Provide().FindByID(f.ctx, f.db, f.companyID, id)
	require.NoError(t, err)
	require.NotNil(t, invoice)
	return invoice.Status
}

func (f fixture) receive(customerID, invoiceID snowflake.ID, amount int64, paymentType paymentdomain.PaymentType) (paymentdomain.Payment, error) {
	return f.svc.AcceptPayment(f.ctx, paymentdomain.AcceptPaymentRequest{
		CustomerID:  customerID.String(),
		InvoiceID:   invoiceID.String(),
		Amount:      decimal.NewFromInt(amount),
		PaymentType: paymentType,
	})
}

func TestSettlementStatusesMatchDocumentStatuses(t *testing.T) {
	assert.Equal(t, string(invoicedomain.InvoiceStatusUnpaid), paymentdomain.StatusUnpaid)
	assert.Equal(t, string(invoicedomain.InvoiceStatusPartiallyPaid), paymentdomain.StatusPartiallyPaid)
	assert.Equal(t, string(invoicedomain.InvoiceStatusPaid), paymentdomain.StatusPaid)
	assert.Equal(t, string(invoicedomain.InvoiceStatusCancelled), paymentdomain.StatusCancelled)
	assert.Equal(t, string(purchasedomain.PurchaseStatusPaid), paymentdomain.StatusPaid)
	assert.Equal(t, string(purchasedomain.PurchaseStatusPartiallyPaid), paymentdomain.StatusPartiallyPaid)
}

func TestStatusFor(t *testing.T) {
	total := decimal.NewFromInt(1000)
	assert.Equal(t, paymentdomain.StatusUnpaid, paymentdomain.StatusFor(decimal.Zero, total))
	assert.Equal(t, paymentdomain.StatusUnpaid, paymentdomain.StatusFor(decimal.NewFromInt(-50), total))
	assert.Equal(t, paymentdomain.StatusPartiallyPaid, paymentdomain.StatusFor(decimal.NewFromInt(1), total))
	assert.Equal(t, paymentdomain.StatusPaid, paymentdomain.StatusFor(total, total))
	assert.Equal(t, paymentdomain.StatusPaid, paymentdomain.StatusFor(decimal.NewFromInt(1200), total))
}

func TestOverpaymentGuard(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")
	invoice := f.seedInvoice(t, &customer.ID, "INV-00001", 1000)

	_, err := f.receive(customer.ID, invoice.ID, 700, paymentdomain.PaymentTypeReceived)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, f.invoiceStatus(t, invoice.ID))

	_, err = f.receive(customer.ID, invoice.ID, 400, paymentdomain.PaymentTypeReceived)
	var overpayment *paymentdomain.OverpaymentError
	require.True(t, errors.As(err, &overpayment))
	assert.True(t, overpayment.Total.Equal(decimal.NewFromInt(1000)))
	assert.True(t, overpayment.AlreadyPaid.Equal(decimal.NewFromInt(700)))
	assert.True(t, overpayment.MaxPayable.Equal(decimal.NewFromInt(300)))

	payment, err := f.receive(customer.ID, invoice.ID, 300, paymentdomain.PaymentTypeReceived)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.MethodCash, payment.Method)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, f.invoiceStatus(t, invoice.ID))

	list, err := f.svc.List(f.ctx, paymentdomain.ListPaymentRequest{InvoiceID: invoice.ID.String()})
	require.NoError(t, err)
	assert.Len(t, list.Payments, 2)
}

func TestRefundIsUncappedAndReopensInvoice(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")
	invoice := f.seedInvoice(t, &customer.ID, "INV-00001", 1000)

	_, err := f.receive(customer.ID, invoice.ID, 1000, paymentdomain.PaymentTypeReceived)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, f.invoiceStatus(t, invoice.ID))

	_, err = f.receive(customer.ID, invoice.ID, 400, paymentdomain.PaymentTypeRefund)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, f.invoiceStatus(t, invoice.ID))

	_, err = f.receive(customer.ID, invoice.ID, 5000, paymentdomain.PaymentTypeRefund)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusUnpaid, f.invoiceStatus(t, invoice.ID))
}

func TestRecomputeStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")
	invoice := f.seedInvoice(t, &customer.ID, "INV-00001", 1000)
	_, err := f.receive(customer.ID, invoice.ID, 250, paymentdomain.PaymentTypeReceived)
	require.NoError(t, err)

	repo := paymentrepo.Provide()
	var first, second string
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		doc, err := repo.LockDocument(f.ctx, tx, paymentdomain.DocumentInvoice, f.companyID, invoice.ID)
		require.NoError(t, err)
		require.NotNil(t, doc)
		first, err = f.svc.RecomputeStatus(f.ctx, tx, *doc)
		if err != nil {
			return err
		}
		second, err = f.svc.RecomputeStatus(f.ctx, tx, *doc)
		return err
	}))
	assert.Equal(t, paymentdomain.StatusPartiallyPaid, first)
	assert.Equal(t, first, second)
	assert.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, f.invoiceStatus(t, invoice.ID))
}

func TestOwnershipAndTenancy(t *testing.T) {
	f := newFixture(t)
	owner := f.seedCustomer(t, "Sharma Traders")
	other := f.seedCustomer(t, "Gupta Stores")
	invoice := f.seedInvoice(t, &owner.ID, "INV-00001", 1000)

	_, err := f.receive(other.ID, invoice.ID, 100, paymentdomain.PaymentTypeReceived)
	assert.ErrorIs(t, err, paymentdomain.ErrDocumentOwnership)

	_, err = f.receive(owner.ID, f.node.Generate(), 100, paymentdomain.PaymentTypeReceived)
	assert.ErrorIs(t, err, paymentdomain.ErrInvoiceNotFound)

	_, err = f.receive(f.node.Generate(), invoice.ID, 100, paymentdomain.PaymentTypeReceived)
	assert.ErrorIs(t, err, paymentdomain.ErrCustomerNotFound)

	foreign := testutil.CompanyContext(f.node.Generate())
	_, err = f.svc.AcceptPayment(foreign, paymentdomain.AcceptPaymentRequest{
		CustomerID:  owner.ID.String(),
		Amount:      decimal.NewFromInt(10),
		PaymentType: paymentdomain.PaymentTypeReceived,
	})
	assert.ErrorIs(t, err, paymentdomain.ErrCustomerNotFound)

	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCancelledInvoiceRejectsForwardPayments(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")
	invoice := f.seedInvoice(t, &customer.ID, "INV-00001", 1000)
	_, err := f.receive(customer.ID, invoice.ID, 100, paymentdomain.PaymentTypeReceived)
	require.NoError(t, err)
	require.NoError(t, invoicerepo.Provide().UpdateStatus(f.ctx, f.db, f.companyID, invoice.ID, invoicedomain.InvoiceStatusCancelled, time.Now().UTC()))

	_, err = f.receive(customer.ID, invoice.ID, 100, paymentdomain.PaymentTypeReceived)
	assert.ErrorIs(t, err, paymentdomain.ErrDocumentCancelled)

	_, err = f.receive(customer.ID, invoice.ID, 100, paymentdomain.PaymentTypeRefund)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusCancelled, f.invoiceStatus(t, invoice.ID))
}

func TestAcceptPaymentValidation(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")

	cases := []struct {
		name string
		req  paymentdomain.AcceptPaymentRequest
		want error
	}{
		{
			name: "unknown type",
			req:  paymentdomain.AcceptPaymentRequest{CustomerID: customer.ID.String(), Amount: decimal.NewFromInt(1), PaymentType: "gift"},
			want: paymentdomain.ErrInvalidPaymentType,
		},
		{
			name: "zero amount",
			req:  paymentdomain.AcceptPaymentRequest{CustomerID: customer.ID.String(), PaymentType: paymentdomain.PaymentTypeReceived},
			want: paymentdomain.ErrInvalidAmount,
		},
		{
			name: "unknown method",
			req:  paymentdomain.AcceptPaymentRequest{CustomerID: customer.ID.String(), Amount: decimal.NewFromInt(1), PaymentType: paymentdomain.PaymentTypeReceived, Method: "barter"},
			want: paymentdomain.ErrInvalidMethod,
		},
		{
			name: "both counterparties",
			req:  paymentdomain.AcceptPaymentRequest{CustomerID: customer.ID.String(), SupplierID: f.node.Generate().String(), Amount: decimal.NewFromInt(1), PaymentType: paymentdomain.PaymentTypeReceived},
			want: paymentdomain.ErrInvalidCounterparty,
		},
		{
			name: "supplier type for customer",
			req:  paymentdomain.AcceptPaymentRequest{CustomerID: customer.ID.String(), Amount: decimal.NewFromInt(1), PaymentType: paymentdomain.PaymentTypePaid},
			want: paymentdomain.ErrInvalidCounterparty,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AcceptPayment(f.ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSupplierPaymentSettlesPurchase(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	supplier := supplierdomain.Supplier{ID: f.node.Generate(), CompanyID: f.companyID, Name: "Agarwal Oils", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, supplierrepo.Provide().Insert(f.ctx, f.db, &supplier))
	purchase := purchasedomain.Purchase{
		ID:           f.node.Generate(),
		CompanyID:    f.companyID,
		SupplierID:   supplier.ID,
		Number:       "PO-00001",
		SupplierName: supplier.Name,
		TotalAmount:  decimal.NewFromInt(600),
		Status:       purchasedomain.PurchaseStatusUnpaid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, purchaserepo.Provide().Insert(f.ctx, f.db, &purchase))

	payment, err := f.svc.AcceptPayment(f.ctx, paymentdomain.AcceptPaymentRequest{
		SupplierID:  supplier.ID.String(),
		PurchaseID:  purchase.ID.String(),
		Amount:      decimal.NewFromInt(600),
		PaymentType: paymentdomain.PaymentTypePaid,
	})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.MethodBank, payment.Method)
	require.NotNil(t, payment.SupplierID)
	assert.Nil(t, payment.CustomerID)

	stored, err := purchaserepo.Provide().FindByID(f.ctx, f.db, f.companyID, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, purchasedomain.PurchaseStatusPaid, stored.Status)

	_, err = f.svc.AcceptPayment(f.ctx, paymentdomain.AcceptPaymentRequest{
		SupplierID:  supplier.ID.String(),
		PurchaseID:  purchase.ID.String(),
		Amount:      decimal.NewFromInt(1),
		PaymentType: paymentdomain.PaymentTypePaid,
	})
	var overpayment *paymentdomain.OverpaymentError
	require.True(t, errors.As(err, &overpayment))
	assert.True(t, overpayment.MaxPayable.IsZero())
}

func TestFractionalPaymentsSettleExactly(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")
	invoice := f.seedInvoiceTotal(t, &customer.ID, "INV-00001", decimal.RequireFromString("1.00"))

	pay := func(amount string) (paymentdomain.Payment, error) {
		return f.svc.AcceptPayment(f.ctx, paymentdomain.AcceptPaymentRequest{
			CustomerID:  customer.ID.String(),
			InvoiceID:   invoice.ID.String(),
			Amount:      decimal.RequireFromString(amount),
			PaymentType: paymentdomain.PaymentTypeReceived,
		})
	}

	_, err := pay("0.10")
	require.NoError(t, err)
	_, err = pay("0.20")
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, f.invoiceStatus(t, invoice.ID))

	_, err = pay("0.70")
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, f.invoiceStatus(t, invoice.ID))

	_, err = pay("0.01")
	var overpayment *paymentdomain.OverpaymentError
	require.ErrorAs(t, err, &overpayment)
	assert.Equal(t, "1.00", overpayment.AlreadyPaid.StringFixed(2))
	assert.True(t, overpayment.MaxPayable.IsZero())
}

func TestSubPaisaAmountIsRejected(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")

	_, err := f.svc.AcceptPayment(f.ctx, paymentdomain.AcceptPaymentRequest{
		CustomerID:  customer.ID.String(),
		Amount:      decimal.RequireFromString("0.004"),
		PaymentType: paymentdomain.PaymentTypeReceived,
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	payment, err := f.svc.AcceptPayment(f.ctx, paymentdomain.AcceptPaymentRequest{
		CustomerID:  customer.ID.String(),
		Amount:      decimal.RequireFromString("0.005"),
		PaymentType: paymentdomain.PaymentTypeReceived,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.01", payment.Amount.StringFixed(2))

	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Where("amount <= 0").Count(&count).Error)
	assert.Zero(t, count)
}

func TestWalkInInvoiceAcceptsPayment(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Sharma Traders")
	walkIn := f.seedInvoice(t, nil, "INV-00001", 500)

	payment, err := f.receive(customer.ID, walkIn.ID, 500, paymentdomain.PaymentTypeReceived)
	require.NoError(t, err)
	require.NotNil(t, payment.InvoiceID)
	assert.Equal(t, walkIn.ID, *payment.InvoiceID)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, f.invoiceStatus(t, walkIn.ID))

	_, err = f.receive(customer.ID, walkIn.ID, 1, paymentdomain.PaymentTypeReceived)
	var overpayment *paymentdomain.OverpaymentError
	assert.ErrorAs(t, err, &overpayment)
}
