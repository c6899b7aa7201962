package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	customerrepo "github.com/smallbiznis/vyapar/internal/customer/repository"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/vyapar/internal/invoice/repository"
	ledgerdomain "github.com/smallbiznis/vyapar/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/vyapar/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/vyapar/internal/ledger/service"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/vyapar/internal/payment/repository"
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

var t0 = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       ledgerdomain.Service
	companyID snowflake.ID
	ctx       context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	companyID := node.Generate()
	return fixture{
		db:   db,
		node: node,
		svc: ledgerservice.NewService(ledgerservice.Params{
			DB:           db,
			Log:          zap.NewNop(),
			Repo:         ledgerrepo.Provide(),
			CustomerRepo: customerrepo.Provide(),
			SupplierRepo: supplierrepo.Provide(),
		}),
		companyID: companyID,
		ctx:       testutil.CompanyContext(companyID),
	}
}

func (f fixture) customer(t *testing.T, name string) customerdomain.Customer {
	t.Helper()
	c := customerdomain.Customer{ID: f.node.Generate(), CompanyID: f.companyID, Name: name, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, customerrepo.Provide().Insert(f.ctx, f.db, &c))
	return c
}

func (f fixture) invoice(t *testing.T, customerID snowflake.ID, number string, total int64, at time.Time, status invoicedomain.InvoiceStatus) invoicedomain.Invoice {
	t.Helper()
	return f.invoiceAmount(t, customerID, number, decimal.NewFromInt(total), at, status)
}

func (f fixture) invoiceAmount(t *testing.T, customerID snowflake.ID, number string, amount decimal.Decimal, at time.Time, status invoicedomain.InvoiceStatus) invoicedomain.Invoice {
	t.Helper()
	inv := invoicedomain.Invoice{
		ID:           f.node.Generate(),
		CompanyID:    f.companyID,
		CustomerID:   &customerID,
		Number:       number,
		CustomerName: "customer",
		Subtotal:     amount,
		Total:        amount,
		Status:       status,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, invoicerepo.Provide().Insert(f.ctx, f.db, &inv))
	return inv
}

func (f fixture) payment(t *testing.T, p paymentdomain.Payment) {
	t.Helper()
	p.ID = f.node.Generate()
	p.CompanyID = f.companyID
	if p.Method == "" {
		p.Method = paymentdomain.MethodCash
	}
	require.NoError(t, paymentrepo.Provide().Insert(f.ctx, f.db, &p))
}

func TestCustomerStatement(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Sharma Traders")
	a := f.invoice(t, c.ID, "INV-00001", 500, t0.Add(time.Hour), invoicedomain.InvoiceStatusPartiallyPaid)
	f.invoice(t, c.ID, "INV-00002", 300, t0.Add(3*time.Hour), invoicedomain.InvoiceStatusUnpaid)
	f.invoice(t, c.ID, "INV-00003", 999, t0.Add(4*time.Hour), invoicedomain.InvoiceStatusCancelled)
	f.payment(t, paymentdomain.Payment{
		CustomerID:  &c.ID,
		InvoiceID:   &a.ID,
		Amount:      decimal.NewFromInt(200),
		PaymentType: paymentdomain.PaymentTypeReceived,
		CreatedAt:   t0.Add(2 * time.Hour),
	})

	statement, err := f.svc.CustomerStatement(f.ctx, c.ID.String())
	require.NoError(t, err)

	require.Len(t, statement.Transactions, 3)
	var running []string
	for _, e := range statement.Transactions {
		running = append(running, e.RunningBalance.String())
	}
	assert.Equal(t, []string{"500", "300", "600"}, running)
	assert.Equal(t, "INV-00001", statement.Transactions[0].Reference)
	assert.Equal(t, ledgerdomain.EntryTypePayment, statement.Transactions[1].Type)
	assert.Contains(t, statement.Transactions[1].Reference, "PMT-")

	assert.Equal(t, "800", statement.Summary.TotalInvoiced.String())
	assert.Equal(t, "200", statement.Summary.TotalPaid.String())
	assert.Equal(t, "600", statement.Summary.Outstanding.String())
	assert.Len(t, statement.UnpaidInvoices, 2)
	assert.Equal(t, "Sharma Traders", statement.Customer.Name)
}

func TestStatementUnknownCounterparty(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Sharma Traders")

	_, err := f.svc.CustomerStatement(f.ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, ledgerdomain.ErrCustomerNotFound)

	_, err = f.svc.CustomerStatement(testutil.CompanyContext(f.node.Generate()), c.ID.String())
	assert.ErrorIs(t, err, ledgerdomain.ErrCustomerNotFound)

	_, err = f.svc.SupplierStatement(f.ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, ledgerdomain.ErrSupplierNotFound)

	_, err = f.svc.CustomerStatement(f.ctx, "abc")
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidID)
}

func TestSupplierStatementAndBalances(t *testing.T) {
	f := newFixture(t)
	supplier := supplierdomain.Supplier{ID: f.node.Generate(), CompanyID: f.companyID, Name: "Agarwal Oils", IsActive: true, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, supplierrepo.Provide().Insert(f.ctx, f.db, &supplier))
	purchase := purchasedomain.Purchase{
		ID:           f.node.Generate(),
		CompanyID:    f.companyID,
		SupplierID:   supplier.ID,
		Number:       "PO-00001",
		SupplierName: supplier.Name,
		TotalAmount:  decimal.NewFromInt(900),
		Status:       purchasedomain.PurchaseStatusPartiallyPaid,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, purchaserepo.Provide().Insert(f.ctx, f.db, &purchase))
	f.payment(t, paymentdomain.Payment{
		SupplierID:  &supplier.ID,
		PurchaseID:  &purchase.ID,
		Amount:      decimal.NewFromInt(400),
		PaymentType: paymentdomain.PaymentTypePaid,
		Method:      paymentdomain.MethodBank,
		CreatedAt:   t0.Add(time.Hour),
	})
	f.payment(t, paymentdomain.Payment{
		SupplierID:  &supplier.ID,
		Amount:      decimal.NewFromInt(50),
		PaymentType: paymentdomain.PaymentTypeSupplierRefund,
		Method:      paymentdomain.MethodBank,
		CreatedAt:   t0.Add(2 * time.Hour),
	})

	statement, err := f.svc.SupplierStatement(f.ctx, supplier.ID.String())
	require.NoError(t, err)
	require.Len(t, statement.Transactions, 3)
	assert.Equal(t, "550", statement.Transactions[2].RunningBalance.String())
	assert.Equal(t, "900", statement.Summary.TotalPurchased.String())
	assert.Equal(t, "400", statement.Summary.TotalPaid.String())
	assert.Equal(t, "50", statement.Summary.TotalRefunded.String())
	assert.Equal(t, "550", statement.Summary.Outstanding.String())
	assert.Contains(t, statement.Transactions[1].Reference, "PAY-")

	balances, err := f.svc.SupplierBalances(f.ctx)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "900", balances[0].TotalBilled.String())
	assert.Equal(t, "350", balances[0].TotalPaid.String())
	assert.Equal(t, "550", balances[0].Outstanding.String())
}

func TestCustomerBalancesIncludeIdleCustomers(t *testing.T) {
	f := newFixture(t)
	busy := f.customer(t, "Bansal Kirana")
	f.customer(t, "Zaveri Sweets")
	f.invoice(t, busy.ID, "INV-00001", 1200, t0, invoicedomain.InvoiceStatusUnpaid)

	balances, err := f.svc.CustomerBalances(f.ctx)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "Bansal Kirana", balances[0].Name)
	assert.Equal(t, "1200", balances[0].Outstanding.String())
	assert.Equal(t, "Zaveri Sweets", balances[1].Name)
	assert.True(t, balances[1].Outstanding.IsZero())
}

func TestCustomerBalancesRoundFractionalSums(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Iyer Stores")
	a := f.invoiceAmount(t, c.ID, "INV-00001", decimal.RequireFromString("0.10"), t0, invoicedomain.InvoiceStatusPaid)
	b := f.invoiceAmount(t, c.ID, "INV-00002", decimal.RequireFromString("0.20"), t0.Add(time.Hour), invoicedomain.InvoiceStatusPaid)
	for _, inv := range []invoicedomain.Invoice{a, b} {
		f.payment(t, paymentdomain.Payment{
			CustomerID:  &c.ID,
			InvoiceID:   &inv.ID,
			Amount:      inv.Total,
			PaymentType: paymentdomain.PaymentTypeReceived,
			CreatedAt:   t0.Add(2 * time.Hour),
		})
	}

	balances, err := f.svc.CustomerBalances(f.ctx)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "0.3", balances[0].TotalBilled.String())
	assert.Equal(t, "0.3", balances[0].TotalPaid.String())
	assert.True(t, balances[0].Outstanding.IsZero(), "outstanding %s", balances[0].Outstanding)
}
