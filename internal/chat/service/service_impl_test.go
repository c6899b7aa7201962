package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	analyticsdomain "github.com/smallbiznis/vyapar/internal/analytics/domain"
	analyticsmocks "github.com/smallbiznis/vyapar/internal/analytics/mocks"
	"github.com/smallbiznis/vyapar/internal/chat/domain"
	"github.com/smallbiznis/vyapar/internal/chat/mocks"
	"github.com/smallbiznis/vyapar/internal/chat/repository"
	"github.com/smallbiznis/vyapar/internal/clock"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/config"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"github.com/smallbiznis/vyapar/internal/providers/ai"
	"github.com/smallbiznis/vyapar/internal/ratelimit"
	"github.com/smallbiznis/vyapar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const owner = "919800000001"

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc       *Service
	db        *gorm.DB
	node      *snowflake.Node
	clk       *clock.FakeClock
	companyID snowflake.ID
	analytics *analyticsmocks.MockService
	invoices  *mocks.MockInvoiceSender
	messenger *mocks.MockMessenger
	advisor   *mocks.MockCompleter
}

type harnessOption func(*Params)

func withoutAdvisor() harnessOption {
	return func(p *Params) { p.Advisor = nil }
}

func withDefaultCompany(p *Params) {
	p.Config.DefaultCompanyID = int64(companyIDFromDB(p.DB))
}

func companyIDFromDB(db *gorm.DB) snowflake.ID {
	var company companydomain.Company
	db.Order("id asc").Limit(1).Find(&company)
	return company.ID
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	companyID := node.Generate()
	require.NoError(t, db.Create(&companydomain.Company{
		ID:        companyID,
		Name:      "Sharma Soaps",
		Slug:      "sharma-soaps",
		Phone:     "+" + owner,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	h := &harness{
		db:        db,
		node:      node,
		clk:       clock.NewFakeClock(now),
		companyID: companyID,
		analytics: analyticsmocks.NewMockService(ctrl),
		invoices:  mocks.NewMockInvoiceSender(ctrl),
		messenger: mocks.NewMockMessenger(ctrl),
		advisor:   mocks.NewMockCompleter(ctrl),
	}

	p := Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     h.clk,
		Rules:     config.NewStaticRules(config.DefaultRules()),
		Repo:      repository.Provide(),
		Analytics: h.analytics,
		Invoices:  h.invoices,
		Cooldown:  ratelimit.NewMemoryCooldown(h.clk),
		Messenger: h.messenger,
		Advisor:   h.advisor,
	}
	for _, opt := range opts {
		opt(&p)
	}
	h.svc = New(p)
	return h
}

func (h *harness) say(from, text string) domain.Reply {
	return h.svc.Handle(context.Background(), domain.InboundMessage{From: from, ID: "wamid", Body: text})
}

func (h *harness) customer(t *testing.T, name, phone string) customerdomain.Customer {
	t.Helper()
	c := customerdomain.Customer{
		ID:        h.node.Generate(),
		CompanyID: h.companyID,
		Name:      name,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, h.db.Create(&c).Error)
	return c
}

func (h *harness) invoice(t *testing.T, number string, customer *customerdomain.Customer, status invoicedomain.InvoiceStatus, at time.Time) invoicedomain.Invoice {
	t.Helper()
	inv := invoicedomain.Invoice{
		ID:           h.node.Generate(),
		CompanyID:    h.companyID,
		Number:       number,
		CustomerName: "Walk-in",
		Subtotal:     decimal.NewFromInt(100),
		Total:        decimal.NewFromInt(100),
		Status:       status,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	if customer != nil {
		inv.CustomerID = &customer.ID
		inv.CustomerName = customer.Name
	}
	require.NoError(t, h.db.Create(&inv).Error)
	return inv
}

// companyScope matches a context scoped to the company with a WhatsApp actor.
type companyScope snowflake.ID

func (m companyScope) Matches(x interface{}) bool {
	ctx, ok := x.(context.Context)
	if !ok {
		return false
	}
	id, ok := companyctx.CompanyIDFromContext(ctx)
	actor := companyctx.ActorFromContext(ctx)
	return ok && id == snowflake.ID(m) && actor.Type == companyctx.ActorTypeWhatsApp
}

func (m companyScope) String() string {
	return "context for company " + snowflake.ID(m).String()
}

func TestUnknownSender(t *testing.T) {
	h := newHarness(t)

	reply := h.say("919811111111", "revenue")
	assert.Equal(t, domain.RouteUnknownSender, reply.Route)
	assert.Equal(t, unknownSender, reply.Text)
}

func TestDefaultCompanyServesUnknownNumbers(t *testing.T) {
	h := newHarness(t, withDefaultCompany)

	reply := h.say("919811111111", "help")
	assert.Equal(t, domain.RouteIntent, reply.Route)
	assert.Equal(t, domain.IntentHelp, reply.Intent)
	assert.Equal(t, helpReply, reply.Text)
}

func TestRevenueOffersOtherPeriods(t *testing.T) {
	h := newHarness(t)
	h.analytics.EXPECT().RevenueTrend(companyScope(h.companyID), 0).Return(analyticsdomain.RevenueTrend{
		Days:   30,
		Total:  decimal.NewFromInt(120000),
		Series: make([]analyticsdomain.RevenuePoint, 3),
	}, nil)
	h.analytics.EXPECT().RevenueTrend(companyScope(h.companyID), 7).Return(analyticsdomain.RevenueTrend{
		Days:   7,
		Total:  decimal.NewFromInt(3400),
		Series: make([]analyticsdomain.RevenuePoint, 2),
	}, nil)

	reply := h.say(owner, "revenue")
	assert.Equal(t, domain.RouteIntent, reply.Route)
	assert.Equal(t, "Revenue (Last 30 Days)\n\nTotal: Rs 1.2L\n3 din me transactions aaye.\n\nDusra period? Reply 7, 30 ya 90.", reply.Text)

	reply = h.say(owner, "hafta")
	assert.Equal(t, domain.RouteFollowUp, reply.Route)
	assert.Equal(t, domain.IntentRevenue, reply.Intent)
	assert.Equal(t, "Revenue (Last 7 Days)\n\nTotal: Rs 3.4K\n2 din me transactions aaye.", reply.Text)
}

func TestRevenuePeriodInMessage(t *testing.T) {
	h := newHarness(t)
	h.analytics.EXPECT().RevenueTrend(gomock.Any(), 90).Return(analyticsdomain.RevenueTrend{Days: 90, Total: decimal.NewFromInt(950)}, nil)

	reply := h.say(owner, "sales this quarter")
	assert.Equal(t, "Revenue (Last 90 Days)\n\nTotal: Rs 950\n0 din me transactions aaye.", reply.Text)

	// No pending question, so a bare number is just a short message.
	reply = h.say(owner, "7")
	assert.Equal(t, domain.RouteGreeting, reply.Route)
}

func TestSessionExpires(t *testing.T) {
	h := newHarness(t)
	h.analytics.EXPECT().RevenueTrend(gomock.Any(), 0).Return(analyticsdomain.RevenueTrend{Days: 30}, nil)

	h.say(owner, "revenue")
	h.clk.Advance(6 * time.Minute)

	reply := h.say(owner, "7")
	assert.Equal(t, domain.RouteGreeting, reply.Route)
}

func TestAnalyticsIntents(t *testing.T) {
	h := newHarness(t)
	h.analytics.EXPECT().ProfitSummary(gomock.Any()).Return(analyticsdomain.ProfitSummary{
		Revenue:       decimal.NewFromInt(250000),
		TotalExpenses: decimal.NewFromInt(150000),
		GrossProfit:   decimal.NewFromInt(100000),
		Margin:        decimal.NewFromInt(40),
		Period:        "Mar 2026",
	}, nil)
	h.analytics.EXPECT().LowStock(gomock.Any()).Return(analyticsdomain.LowStockReport{
		Products:     []analyticsdomain.LowStockItem{{Name: "Neem Soap", Stock: decimal.NewFromInt(4), Unit: "pcs"}},
		RawMaterials: []analyticsdomain.LowStockItem{{Name: "Caustic Soda", Stock: decimal.RequireFromString("2.5")}},
	}, nil)
	h.analytics.EXPECT().ProductionSummary(gomock.Any()).Return(analyticsdomain.ProductionSummary{
		TotalUnits:   decimal.NewFromInt(140),
		TotalCost:    decimal.NewFromInt(1500),
		TotalBatches: 2,
		Period:       "Mar 2026",
	}, nil)
	h.analytics.EXPECT().TopProducts(gomock.Any(), 0).Return([]analyticsdomain.TopProduct{
		{Product: "Neem Soap", QtySold: decimal.NewFromInt(15), Revenue: decimal.NewFromInt(600)},
	}, nil)

	assert.Equal(t, "Profit Summary - Mar 2026\n\nRevenue: Rs 2.5L\nExpenses: Rs 1.5L\nProfit: Rs 1.0L\nMargin: 40.0%",
		h.say(owner, "profit kitna hua").Text)
	assert.Equal(t, "Low Stock Alert\n\n. Neem Soap (4 pcs)\n. Caustic Soda (2.5 pcs)",
		h.say(owner, "maal khatam?").Text)
	assert.Equal(t, "Production Summary - Mar 2026\n\nUnits Produced: 140\nBatches: 2\nCost: Rs 1.5K",
		h.say(owner, "production").Text)
	assert.Equal(t, "Top Products\n\n1. Neem Soap - 15 sold (Rs 600)",
		h.say(owner, "top selling items").Text)
}

func TestIntentFailureApologizes(t *testing.T) {
	h := newHarness(t)
	h.analytics.EXPECT().LowStock(gomock.Any()).Return(analyticsdomain.LowStockReport{}, errors.New("db down"))

	reply := h.say(owner, "low stock")
	assert.Equal(t, domain.RouteIntent, reply.Route)
	assert.Equal(t, apologyReply, reply.Text)
}

func TestSendLastInvoiceThenCopy(t *testing.T) {
	h := newHarness(t)
	ravi := h.customer(t, "Ravi Traders", "9822222222")
	sent := h.invoice(t, "INV-0001", &ravi, invoicedomain.InvoiceStatusUnpaid, now.Add(-2*time.Hour))
	h.invoice(t, "INV-0002", &ravi, invoicedomain.InvoiceStatusCancelled, now.Add(-time.Hour))
	h.invoice(t, "INV-0003", nil, invoicedomain.InvoiceStatusPaid, now.Add(-time.Minute))

	gomock.InOrder(
		h.invoices.EXPECT().SendWhatsApp(companyScope(h.companyID), sent.ID.String(), "").Return("919822222222", nil),
		h.invoices.EXPECT().SendWhatsApp(gomock.Any(), sent.ID.String(), owner).Return(owner, nil),
	)

	reply := h.say(owner, "send last invoice")
	assert.Equal(t, domain.RouteInvoice, reply.Route)
	assert.Equal(t, "Invoice INV-0001 bhej di Ravi Traders ko.\nReply 'copy' agar apne liye chahiye.", reply.Text)

	reply = h.say(owner, "copy")
	assert.Equal(t, "Invoice copy bhej di boss.", reply.Text)
}

func TestCopyNeedsRecentSend(t *testing.T) {
	h := newHarness(t)
	ravi := h.customer(t, "Ravi Traders", "9822222222")
	inv := h.invoice(t, "INV-0001", &ravi, invoicedomain.InvoiceStatusUnpaid, now)
	h.invoices.EXPECT().SendWhatsApp(gomock.Any(), inv.ID.String(), "").Return("919822222222", nil)

	assert.Equal(t, "Pehle koi invoice send karo, phir copy milegi.", h.say(owner, "copy").Text)

	h.say(owner, "pichla bill bhejo")
	h.clk.Advance(25 * time.Hour)
	assert.Equal(t, "Pehle koi invoice send karo, phir copy milegi.", h.say(owner, "copy").Text)
}

func TestSendInvoiceByCustomerName(t *testing.T) {
	h := newHarness(t)
	ravi := h.customer(t, "Ravi Traders", "9822222222")
	mehta := h.customer(t, "Mehta Stores", "")
	raviInv := h.invoice(t, "INV-0001", &ravi, invoicedomain.InvoiceStatusUnpaid, now.Add(-time.Hour))
	mehtaInv := h.invoice(t, "INV-0002", &mehta, invoicedomain.InvoiceStatusUnpaid, now)

	h.invoices.EXPECT().SendWhatsApp(gomock.Any(), raviInv.ID.String(), "").Return("919822222222", nil)
	h.invoices.EXPECT().SendWhatsApp(gomock.Any(), mehtaInv.ID.String(), "").Return("", invoicedomain.ErrNoRecipient)

	assert.Equal(t, "Invoice INV-0001 bhej di Ravi Traders ko.\nReply 'copy' agar apne liye chahiye.",
		h.say(owner, "ravi ka bill bhejo").Text)
	assert.Equal(t, "Customer ka phone number nahi hai.", h.say(owner, "send invoice to mehta").Text)
	assert.Equal(t, "'gupta' ka koi invoice nahi mila boss.", h.say(owner, "send gupta invoice").Text)
}

func TestSendInvoiceAsksForCustomer(t *testing.T) {
	h := newHarness(t)
	ravi := h.customer(t, "Ravi Traders", "9822222222")
	inv := h.invoice(t, "INV-0001", &ravi, invoicedomain.InvoiceStatusUnpaid, now)
	h.invoices.EXPECT().SendWhatsApp(gomock.Any(), inv.ID.String(), "").Return("919822222222", nil)

	reply := h.say(owner, "send invoice")
	assert.Equal(t, customerPrompt, reply.Text)

	reply = h.say(owner, "Ravi")
	assert.Equal(t, domain.RouteFollowUp, reply.Route)
	assert.Equal(t, domain.IntentInvoiceSend, reply.Intent)
	assert.Contains(t, reply.Text, "INV-0001")
}

func TestCreateInvoiceIsRefused(t *testing.T) {
	h := newHarness(t)

	reply := h.say(owner, "new invoice banao for Ravi")
	assert.Equal(t, domain.RouteInvoice, reply.Route)
	assert.Equal(t, createRefusal, reply.Text)
}

func TestGreetings(t *testing.T) {
	h := newHarness(t)
	for _, text := range []string{"hi", "Thank you", "ok?", "hmm"} {
		reply := h.say(owner, text)
		assert.Equal(t, domain.RouteGreeting, reply.Route, text)
		assert.Equal(t, greetingReply, reply.Text, text)
	}
}

func TestAdvisorCooldowns(t *testing.T) {
	h := newHarness(t)
	h.analytics.EXPECT().RevenueTrend(gomock.Any(), 30).Return(analyticsdomain.RevenueTrend{Total: decimal.NewFromInt(5000)}, nil).AnyTimes()
	h.analytics.EXPECT().ProfitSummary(gomock.Any()).Return(analyticsdomain.ProfitSummary{}, errors.New("boom")).AnyTimes()
	h.analytics.EXPECT().LowStock(gomock.Any()).Return(analyticsdomain.LowStockReport{}, nil).AnyTimes()
	h.analytics.EXPECT().TopProducts(gomock.Any(), 3).Return([]analyticsdomain.TopProduct{{Product: "Neem Soap"}}, nil).AnyTimes()

	question := "how do i improve cash flow"
	gomock.InOrder(
		h.advisor.EXPECT().
			Complete(gomock.Any(), gomock.Any(), question).
			DoAndReturn(func(_ context.Context, system, _ string) (string, error) {
				assert.Contains(t, system, `"revenue_30d":"5000.00"`)
				assert.Contains(t, system, `"profit":"0"`)
				assert.Contains(t, system, `"top_products":["Neem Soap"]`)
				return "Collect dues from Ravi first.", nil
			}),
		h.advisor.EXPECT().Complete(gomock.Any(), gomock.Any(), question).Return("", &ai.CoolingDownError{Remaining: 29 * time.Second}),
		h.advisor.EXPECT().Complete(gomock.Any(), gomock.Any(), question).Return("", errors.New("timeout")),
	)

	reply := h.say(owner, question)
	assert.Equal(t, domain.RouteAI, reply.Route)
	assert.Equal(t, "AI Business Advisor\n\nCollect dues from Ravi first.", reply.Text)

	h.clk.Advance(10 * time.Second)
	assert.Equal(t, "Thoda ruko boss, 20 second baad pucho.", h.say(owner, question).Text)

	h.clk.Advance(21 * time.Second)
	assert.Equal(t, "AI abhi cooling down hai. 29 second baad try karo.", h.say(owner, question).Text)

	h.clk.Advance(31 * time.Second)
	assert.Equal(t, aiApologyReply, h.say(owner, question).Text)
}

func TestAdvisorDisabled(t *testing.T) {
	h := newHarness(t, withoutAdvisor())

	reply := h.say(owner, "should i raise prices this month")
	assert.Equal(t, domain.RouteAI, reply.Route)
	assert.Equal(t, aiDisabledReply, reply.Text)
}

func TestProcessSendsEveryReply(t *testing.T) {
	h := newHarness(t)
	gomock.InOrder(
		h.messenger.EXPECT().SendText(gomock.Any(), "+91 98000 00001", greetingReply).Return("wamid.1", nil),
		h.messenger.EXPECT().SendText(gomock.Any(), owner, helpReply).Return("", errors.New("graph down")),
	)

	delivered := h.svc.Process(context.Background(), []domain.InboundMessage{
		{From: "+91 98000 00001", ID: "a", Body: "hello"},
		{From: owner, ID: "b", Body: "menu"},
	})
	assert.Equal(t, 1, delivered)
}
