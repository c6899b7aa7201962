package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/vyapar/internal/analytics/domain"
	"github.com/smallbiznis/vyapar/internal/cache"
	"github.com/smallbiznis/vyapar/internal/chat/domain"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/config"
	obslogger "github.com/smallbiznis/vyapar/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/vyapar/internal/observability/metrics"
	"github.com/smallbiznis/vyapar/internal/providers/ai"
	"github.com/smallbiznis/vyapar/internal/ratelimit"
	"github.com/smallbiznis/vyapar/pkg/phone"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apologyReply    = "Thoda problem hua boss. Dobara try karo."
	aiApologyReply  = "AI advisor abhi available nahi hai. Thodi der baad try karo."
	aiDisabledReply = "AI advisor abhi configured nahi hai. Commands ke liye 'help' bhejo."
	aiBusyReply     = "AI abhi busy hai. Ek minute baad try karo."
	unknownSender   = "Ye number kisi business se linked nahi hai."

	helpReply = "Business Assistant\n\n" +
		"Commands:\n" +
		". revenue - Last 30 days revenue\n" +
		". profit - Profit summary\n" +
		". low stock - Stock alerts\n" +
		". production - Production summary\n" +
		". top products - Best sellers\n" +
		". send last invoice - Send latest invoice\n" +
		". send invoice to <name>\n\n" +
		"Ya kuch bhi pucho business ke baare me!"

	greetingReply = "Hello boss! Main tumhara Business Assistant hu.\n\n" +
		"Ye try karo:\n" +
		". revenue - Last 30 din ka revenue\n" +
		". profit - Profit summary\n" +
		". low stock - Stock alerts\n" +
		". production - Production report\n" +
		". top products - Best sellers\n" +
		". send last invoice - Invoice bhejo\n\n" +
		"Ya kuch bhi pucho business ke baare me!"

	advisorPrompt = "You are a CFO advising a small Indian manufacturing business. " +
		"Use the real numbers provided. Be concise and actionable. " +
		"Plain text only, no markdown. Use Rs for currency. " +
		"Keep the response under 150 words."
)

var skipMessages = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "ok": {}, "okay": {}, "yes": {}, "no": {},
	"thanks": {}, "thank you": {}, "bye": {}, "hm": {}, "hmm": {}, "ya": {},
	"haan": {}, "nahi": {}, "theek": {}, "acha": {}, "accha": {}, "sahi": {},
}

const (
	awaitingPeriod   = "period"
	awaitingCustomer = "customer_name"
)

type session struct {
	intent   domain.Intent
	awaiting string
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Rules     *config.RulesHolder
	Config    config.Config
	Repo      domain.Repository
	Analytics analyticsdomain.Service
	Invoices  domain.InvoiceSender
	Cooldown  ratelimit.Cooldown
	Messenger domain.Messenger    `optional:"true"`
	Advisor   ai.Completer        `optional:"true"`
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	rules            *config.RulesHolder
	repo             domain.Repository
	analytics        analyticsdomain.Service
	invoices         domain.InvoiceSender
	cooldown         ratelimit.Cooldown
	messenger        domain.Messenger
	advisor          domain.Completer
	metrics          *obsmetrics.Metrics
	defaultCompanyID snowflake.ID

	sessions *cache.TTLCache[string, session]
	lastSent *cache.TTLCache[string, string]
}

func NewService(p Params) domain.Service {
	return New(p)
}

func New(p Params) *Service {
	s := &Service{
		db:               p.DB,
		log:              p.Log.Named("chat.service"),
		rules:            p.Rules,
		repo:             p.Repo,
		analytics:        p.Analytics,
		invoices:         p.Invoices,
		cooldown:         p.Cooldown,
		messenger:        p.Messenger,
		metrics:          p.Metrics,
		defaultCompanyID: snowflake.ID(p.Config.DefaultCompanyID),
		sessions:         cache.NewTTLCacheWithClock[string, session](p.Clock),
		lastSent:         cache.NewTTLCacheWithClock[string, string](p.Clock),
	}
	if p.Advisor != nil {
		s.advisor = p.Advisor
	}
	return s
}

func (s *Service) Process(ctx context.Context, msgs []domain.InboundMessage) int {
	delivered := 0
	for _, msg := range msgs {
		reply := s.Handle(ctx, msg)
		if s.messenger == nil {
			s.log.Warn("reply dropped, messenger disabled", zap.String("route", string(reply.Route)))
			continue
		}
		if _, err := s.messenger.SendText(ctx, msg.From, reply.Text); err != nil {
			s.log.Error("reply delivery failed",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	return delivered
}

func (s *Service) Handle(ctx context.Context, msg domain.InboundMessage) domain.Reply {
	sender := phone.Normalize(msg.From)
	if sender == "" {
		sender = strings.TrimSpace(msg.From)
	}
	text := strings.TrimSpace(msg.Body)

	reply := s.route(ctx, sender, text)
	s.metrics.RecordChatMessage(ctx, string(reply.Route))
	obslogger.WithChatSender(obslogger.WithContext(ctx, s.log), sender).Info("chat message handled",
		zap.String("message_id", msg.ID),
		zap.String("route", string(reply.Route)),
		zap.String("intent", string(reply.Intent)),
	)
	return reply
}

func (s *Service) route(ctx context.Context, sender, text string) domain.Reply {
	companyID, err := s.resolveCompany(ctx, sender)
	if err != nil {
		s.log.Error("company lookup failed", zap.Error(err))
		return domain.Reply{Text: apologyReply, Route: domain.RouteUnknownSender}
	}
	if companyID == 0 {
		return domain.Reply{Text: unknownSender, Route: domain.RouteUnknownSender}
	}
	ctx = companyctx.WithCompanyID(ctx, companyID)
	ctx = companyctx.WithActor(ctx, companyctx.Actor{Type: companyctx.ActorTypeWhatsApp, ID: sender})

	if reply, ok := s.followUp(ctx, sender, text); ok {
		return reply
	}

	invoiceKind, customerName := parseInvoiceCommand(text)

	if invoiceKind == invoiceNone {
		if intent, ok := MatchIntent(text); ok {
			return domain.Reply{
				Text:   s.runIntent(ctx, sender, intent, text),
				Route:  domain.RouteIntent,
				Intent: intent,
			}
		}
	}

	if invoiceKind != invoiceNone {
		return domain.Reply{
			Text:   s.handleInvoiceCommand(ctx, sender, invoiceKind, customerName),
			Route:  domain.RouteInvoice,
			Intent: domain.IntentInvoiceSend,
		}
	}

	cmd := strings.ToLower(text)
	if _, skip := skipMessages[cmd]; skip || len([]rune(cmd)) <= 3 {
		return domain.Reply{Text: greetingReply, Route: domain.RouteGreeting}
	}

	return domain.Reply{Text: s.advise(ctx, sender, text), Route: domain.RouteAI}
}

func (s *Service) resolveCompany(ctx context.Context, sender string) (snowflake.ID, error) {
	var candidates []string
	if normalized := phone.Normalize(sender); normalized != "" {
		local := phone.Local(normalized)
		candidates = append(candidates, normalized, "+"+normalized, local, "0"+local)
	}
	id, err := s.repo.CompanyIDByPhone(ctx, s.db, candidates)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}
	return s.defaultCompanyID, nil
}

func (s *Service) followUp(ctx context.Context, sender, text string) (domain.Reply, bool) {
	pending, ok := s.sessions.Take(sender)
	if !ok {
		return domain.Reply{}, false
	}

	switch pending.awaiting {
	case awaitingPeriod:
		if days, ok := periodFromAnswer(text); ok {
			return domain.Reply{
				Text:   s.revenueReply(ctx, days),
				Route:  domain.RouteFollowUp,
				Intent: pending.intent,
			}, true
		}
	case awaitingCustomer:
		if name := strings.TrimSpace(text); len([]rune(name)) >= 2 {
			return domain.Reply{
				Text:   s.sendLatest(ctx, sender, name),
				Route:  domain.RouteFollowUp,
				Intent: pending.intent,
			}, true
		}
	}
	return domain.Reply{}, false
}

func (s *Service) runIntent(ctx context.Context, sender string, intent domain.Intent, text string) string {
	switch intent {
	case domain.IntentHelp:
		return helpReply
	case domain.IntentRevenue:
		if days, ok := periodInText(text); ok {
			return s.revenueReply(ctx, days)
		}
		reply := s.revenueReply(ctx, 0)
		if reply != apologyReply {
			s.sessions.Set(sender, session{intent: intent, awaiting: awaitingPeriod}, s.rules.Get().Chat.SessionTTL)
			reply += "\n\nDusra period? Reply 7, 30 ya 90."
		}
		return reply
	case domain.IntentProfit:
		return s.profitReply(ctx)
	case domain.IntentLowStock:
		return s.lowStockReply(ctx)
	case domain.IntentProduction:
		return s.productionReply(ctx)
	case domain.IntentTopProducts:
		return s.topProductsReply(ctx)
	default:
		return helpReply
	}
}

func (s *Service) revenueReply(ctx context.Context, days int) string {
	trend, err := s.analytics.RevenueTrend(ctx, days)
	if err != nil {
		return s.intentFailed(domain.IntentRevenue, err)
	}
	return fmt.Sprintf("Revenue (Last %d Days)\n\nTotal: %s\n%d din me transactions aaye.",
		trend.Days, FormatINR(trend.Total), len(trend.Series))
}

func (s *Service) profitReply(ctx context.Context) string {
	p, err := s.analytics.ProfitSummary(ctx)
	if err != nil {
		return s.intentFailed(domain.IntentProfit, err)
	}
	return fmt.Sprintf("Profit Summary - %s\n\nRevenue: %s\nExpenses: %s\nProfit: %s\nMargin: %s%%",
		p.Period, FormatINR(p.Revenue), FormatINR(p.TotalExpenses), FormatINR(p.GrossProfit), p.Margin.StringFixed(1))
}

func (s *Service) lowStockReply(ctx context.Context) string {
	report, err := s.analytics.LowStock(ctx)
	if err != nil {
		return s.intentFailed(domain.IntentLowStock, err)
	}
	if len(report.Products) == 0 && len(report.RawMaterials) == 0 {
		return "Stock sab theek hai boss. Koi low stock nahi."
	}

	lines := []string{"Low Stock Alert\n"}
	for _, items := range [][]analyticsdomain.LowStockItem{report.Products, report.RawMaterials} {
		for _, item := range items {
			unit := item.Unit
			if unit == "" {
				unit = "pcs"
			}
			lines = append(lines, fmt.Sprintf(". %s (%s %s)", item.Name, item.Stock.String(), unit))
		}
	}
	return strings.Join(lines, "\n")
}

func (s *Service) productionReply(ctx context.Context) string {
	p, err := s.analytics.ProductionSummary(ctx)
	if err != nil {
		return s.intentFailed(domain.IntentProduction, err)
	}
	return fmt.Sprintf("Production Summary - %s\n\nUnits Produced: %s\nBatches: %d\nCost: %s",
		p.Period, p.TotalUnits.String(), p.TotalBatches, FormatINR(p.TotalCost))
}

func (s *Service) topProductsReply(ctx context.Context) string {
	top, err := s.analytics.TopProducts(ctx, 0)
	if err != nil {
		return s.intentFailed(domain.IntentTopProducts, err)
	}
	if len(top) == 0 {
		return "Abhi tak koi product sell nahi hua boss."
	}

	lines := []string{"Top Products\n"}
	for i, p := range top {
		lines = append(lines, fmt.Sprintf("%d. %s - %s sold (%s)", i+1, p.Product, p.QtySold.String(), FormatINR(p.Revenue)))
	}
	return strings.Join(lines, "\n")
}

func (s *Service) intentFailed(intent domain.Intent, err error) string {
	s.log.Error("intent handler failed", zap.String("intent", string(intent)), zap.Error(err))
	return apologyReply
}

func (s *Service) advise(ctx context.Context, sender, text string) string {
	if s.advisor == nil {
		return aiDisabledReply
	}

	ok, remaining, err := s.cooldown.Acquire(ctx, "ai:user:"+sender, s.rules.Get().AI.UserCooldown)
	if err != nil {
		s.log.Error("user cooldown check failed", zap.Error(err))
		s.metrics.RecordAICall(ctx, "error")
		return aiApologyReply
	}
	if !ok {
		s.metrics.RecordAICall(ctx, "user_cooldown")
		return fmt.Sprintf("Thoda ruko boss, %d second baad pucho.", waitSeconds(remaining))
	}

	prompt := advisorPrompt + "\n\nBusiness data: " + s.businessContext(ctx)
	answer, err := s.advisor.Complete(ctx, prompt, text)
	if err != nil {
		var cooling *ai.CoolingDownError
		switch {
		case errors.As(err, &cooling):
			s.metrics.RecordAICall(ctx, "global_cooldown")
			return fmt.Sprintf("AI abhi cooling down hai. %d second baad try karo.", waitSeconds(cooling.Remaining))
		case errors.Is(err, ai.ErrBusy):
			s.metrics.RecordAICall(ctx, "busy")
			return aiBusyReply
		default:
			s.log.Error("advisor failed", zap.Error(err))
			s.metrics.RecordAICall(ctx, "error")
			return aiApologyReply
		}
	}
	s.metrics.RecordAICall(ctx, "ok")
	return "AI Business Advisor\n\n" + answer
}

type businessSnapshot struct {
	Revenue30d    string   `json:"revenue_30d"`
	Profit        string   `json:"profit"`
	Expenses      string   `json:"expenses"`
	LowStockCount int      `json:"low_stock_count"`
	TopProducts   []string `json:"top_products"`
}

// businessContext summarises analytics for the advisor. Each figure is best
// effort and left at zero when its query fails.
func (s *Service) businessContext(ctx context.Context) string {
	snap := businessSnapshot{Revenue30d: "0", Profit: "0", Expenses: "0", TopProducts: []string{}}

	if trend, err := s.analytics.RevenueTrend(ctx, 30); err == nil {
		snap.Revenue30d = trend.Total.StringFixed(2)
	}
	if p, err := s.analytics.ProfitSummary(ctx); err == nil {
		snap.Profit = p.GrossProfit.StringFixed(2)
		snap.Expenses = p.TotalExpenses.StringFixed(2)
	}
	if report, err := s.analytics.LowStock(ctx); err == nil {
		snap.LowStockCount = len(report.Products) + len(report.RawMaterials)
	}
	if top, err := s.analytics.TopProducts(ctx, 3); err == nil {
		for _, p := range top {
			snap.TopProducts = append(snap.TopProducts, p.Product)
		}
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func waitSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func companyIDFrom(ctx context.Context) (snowflake.ID, bool) {
	return companyctx.CompanyIDFromContext(ctx)
}
