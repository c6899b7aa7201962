package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/vyapar/internal/analytics"
	analyticsdomain "github.com/smallbiznis/vyapar/internal/analytics/domain"
	"github.com/smallbiznis/vyapar/internal/audit"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	"github.com/smallbiznis/vyapar/internal/auth"
	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	"github.com/smallbiznis/vyapar/internal/authorization"
	"github.com/smallbiznis/vyapar/internal/chat"
	chatdomain "github.com/smallbiznis/vyapar/internal/chat/domain"
	"github.com/smallbiznis/vyapar/internal/company"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/smallbiznis/vyapar/internal/customer"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	"github.com/smallbiznis/vyapar/internal/invoice"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"github.com/smallbiznis/vyapar/internal/ledger"
	ledgerdomain "github.com/smallbiznis/vyapar/internal/ledger/domain"
	"github.com/smallbiznis/vyapar/internal/observability"
	obsmiddleware "github.com/smallbiznis/vyapar/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/vyapar/internal/observability/metrics"
	obstracing "github.com/smallbiznis/vyapar/internal/observability/tracing"
	"github.com/smallbiznis/vyapar/internal/payment"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	"github.com/smallbiznis/vyapar/internal/product"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	"github.com/smallbiznis/vyapar/internal/production"
	productiondomain "github.com/smallbiznis/vyapar/internal/production/domain"
	"github.com/smallbiznis/vyapar/internal/providers"
	"github.com/smallbiznis/vyapar/internal/purchase"
	purchasedomain "github.com/smallbiznis/vyapar/internal/purchase/domain"
	"github.com/smallbiznis/vyapar/internal/ratelimit"
	"github.com/smallbiznis/vyapar/internal/rawmaterial"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	"github.com/smallbiznis/vyapar/internal/stock"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/internal/supplier"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	company.Module,
	customer.Module,
	supplier.Module,
	product.Module,
	rawmaterial.Module,
	stock.Module,
	invoice.Module,
	purchase.Module,
	production.Module,
	payment.Module,
	ledger.Module,
	analytics.Module,
	providers.Module,
	ratelimit.Module,
	chat.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	authsvc        authdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	companySvc     companydomain.Service
	customerSvc    customerdomain.Service
	supplierSvc    supplierdomain.Service
	productSvc     productdomain.Service
	rawMaterialSvc rawmaterialdomain.Service
	stockSvc       stockdomain.Service
	invoiceSvc     invoicedomain.Service
	purchaseSvc    purchasedomain.Service
	productionSvc  productiondomain.Service
	paymentSvc     paymentdomain.Service
	ledgerSvc      ledgerdomain.Service
	analyticsSvc   analyticsdomain.Service
	chatSvc        chatdomain.Service
	messenger      chatdomain.Messenger
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	CompanySvc     companydomain.Service
	CustomerSvc    customerdomain.Service
	SupplierSvc    supplierdomain.Service
	ProductSvc     productdomain.Service
	RawMaterialSvc rawmaterialdomain.Service
	StockSvc       stockdomain.Service
	InvoiceSvc     invoicedomain.Service
	PurchaseSvc    purchasedomain.Service
	ProductionSvc  productiondomain.Service
	PaymentSvc     paymentdomain.Service
	LedgerSvc      ledgerdomain.Service
	AnalyticsSvc   analyticsdomain.Service
	ChatSvc        chatdomain.Service
	Messenger      chatdomain.Messenger `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		companySvc:     p.CompanySvc,
		customerSvc:    p.CustomerSvc,
		supplierSvc:    p.SupplierSvc,
		productSvc:     p.ProductSvc,
		rawMaterialSvc: p.RawMaterialSvc,
		stockSvc:       p.StockSvc,
		invoiceSvc:     p.InvoiceSvc,
		purchaseSvc:    p.PurchaseSvc,
		productionSvc:  p.ProductionSvc,
		paymentSvc:     p.PaymentSvc,
		ledgerSvc:      p.LedgerSvc,
		analyticsSvc:   p.AnalyticsSvc,
		chatSvc:        p.ChatSvc,
		messenger:      p.Messenger,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/api/auth")

	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Users --------
	api.GET("/users", s.authorizeAction(authorization.ObjectUser, authorization.ActionUserView), s.ListUsers)
	api.POST("/users", s.authorizeAction(authorization.ObjectUser, authorization.ActionUserCreate), s.CreateUser)

	// -------- Company --------
	api.GET("/company", s.authorizeAction(authorization.ObjectCompany, authorization.ActionCompanyView), s.GetCompany)
	api.PATCH("/company", s.authorizeAction(authorization.ObjectCompany, authorization.ActionCompanyUpdate), s.UpdateCompany)

	// -------- Products --------
	api.GET("/products", s.authorizeAction(authorization.ObjectProduct, authorization.ActionProductView), s.ListProducts)
	api.POST("/products", s.authorizeAction(authorization.ObjectProduct, authorization.ActionProductCreate), s.CreateProduct)
	api.GET("/products/:id", s.authorizeAction(authorization.ObjectProduct, authorization.ActionProductView), s.GetProductByID)
	api.PATCH("/products/:id", s.authorizeAction(authorization.ObjectProduct, authorization.ActionProductUpdate), s.UpdateProduct)
	api.DELETE("/products/:id", s.authorizeAction(authorization.ObjectProduct, authorization.ActionProductDelete), s.DeleteProduct)

	// -------- Raw materials --------
	api.GET("/raw-materials", s.authorizeAction(authorization.ObjectRawMaterial, authorization.ActionRawMaterialView), s.ListRawMaterials)
	api.POST("/raw-materials", s.authorizeAction(authorization.ObjectRawMaterial, authorization.ActionRawMaterialCreate), s.CreateRawMaterial)
	api.GET("/raw-materials/:id", s.authorizeAction(authorization.ObjectRawMaterial, authorization.ActionRawMaterialView), s.GetRawMaterialByID)
	api.PATCH("/raw-materials/:id", s.authorizeAction(authorization.ObjectRawMaterial, authorization.ActionRawMaterialUpdate), s.UpdateRawMaterial)
	api.DELETE("/raw-materials/:id", s.authorizeAction(authorization.ObjectRawMaterial, authorization.ActionRawMaterialDelete), s.DeleteRawMaterial)

	// -------- Customers --------
	api.GET("/customers", s.authorizeAction(authorization.ObjectCustomer, authorization.ActionCustomerView), s.ListCustomers)
	api.POST("/customers", s.authorizeAction(authorization.ObjectCustomer, authorization.ActionCustomerCreate), s.CreateCustomer)
	api.GET("/customers/:id", s.authorizeAction(authorization.ObjectCustomer, authorization.ActionCustomerView), s.GetCustomerByID)
	api.PATCH("/customers/:id", s.authorizeAction(authorization.ObjectCustomer, authorization.ActionCustomerUpdate), s.UpdateCustomer)
	api.DELETE("/customers/:id", s.authorizeAction(authorization.ObjectCustomer, authorization.ActionCustomerDelete), s.DeleteCustomer)

	// -------- Suppliers --------
	api.GET("/suppliers", s.authorizeAction(authorization.ObjectSupplier, authorization.ActionSupplierView), s.ListSuppliers)
	api.POST("/suppliers", s.authorizeAction(authorization.ObjectSupplier, authorization.ActionSupplierCreate), s.CreateSupplier)
	api.GET("/suppliers/:id", s.authorizeAction(authorization.ObjectSupplier, authorization.ActionSupplierView), s.GetSupplierByID)
	api.PATCH("/suppliers/:id", s.authorizeAction(authorization.ObjectSupplier, authorization.ActionSupplierUpdate), s.UpdateSupplier)
	api.DELETE("/suppliers/:id", s.authorizeAction(authorization.ObjectSupplier, authorization.ActionSupplierDelete), s.DeleteSupplier)

	// -------- Stock --------
	api.POST("/stock/adjustments", s.authorizeAction(authorization.ObjectStock, authorization.ActionStockAdjust), s.AdjustStock)
	api.GET("/stock-movements", s.authorizeAction(authorization.ObjectStock, authorization.ActionStockView), s.ListStockMovements)
	api.GET("/stock-movements/reconcile", s.authorizeAction(authorization.ObjectStock, authorization.ActionStockView), s.ReconcileStock)

	// -------- Invoices --------
	api.GET("/invoices", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
	api.POST("/invoices", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceCreate), s.CreateInvoice)
	api.GET("/invoices/:id", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoiceByID)
	api.POST("/invoices/:id/cancel", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceCancel), s.CancelInvoice)
	api.GET("/invoices/:id/pdf", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.DownloadInvoicePDF)
	api.POST("/invoices/:id/send-whatsapp", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceSend), s.SendInvoiceWhatsApp)

	// -------- Purchases --------
	api.GET("/purchases", s.authorizeAction(authorization.ObjectPurchase, authorization.ActionPurchaseView), s.ListPurchases)
	api.POST("/purchases", s.authorizeAction(authorization.ObjectPurchase, authorization.ActionPurchaseCreate), s.CreatePurchase)
	api.GET("/purchases/:id", s.authorizeAction(authorization.ObjectPurchase, authorization.ActionPurchaseView), s.GetPurchaseByID)

	// -------- Production --------
	api.GET("/production", s.authorizeAction(authorization.ObjectProduction, authorization.ActionProductionView), s.ListProductionBatches)
	api.POST("/production", s.authorizeAction(authorization.ObjectProduction, authorization.ActionProductionCreate), s.CreateProductionBatch)
	api.GET("/production/:id", s.authorizeAction(authorization.ObjectProduction, authorization.ActionProductionView), s.GetProductionBatchByID)

	// -------- Payments --------
	api.GET("/payments", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentView), s.ListPayments)
	api.POST("/payments/customer", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentCreate), s.CreateCustomerPayment)
	api.POST("/payments/supplier", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentCreate), s.CreateSupplierPayment)
	api.GET("/payments/:id", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentView), s.GetPaymentByID)

	// -------- Ledger --------
	api.GET("/ledger/customers", s.authorizeAction(authorization.ObjectLedger, authorization.ActionLedgerView), s.ListCustomerBalances)
	api.GET("/ledger/customers/:id", s.authorizeAction(authorization.ObjectLedger, authorization.ActionLedgerView), s.GetCustomerStatement)
	api.GET("/ledger/suppliers", s.authorizeAction(authorization.ObjectLedger, authorization.ActionLedgerView), s.ListSupplierBalances)
	api.GET("/ledger/suppliers/:id", s.authorizeAction(authorization.ObjectLedger, authorization.ActionLedgerView), s.GetSupplierStatement)

	// -------- Analytics --------
	reports := api.Group("/analytics", s.authorizeAction(authorization.ObjectAnalytics, authorization.ActionAnalyticsView))
	{
		reports.GET("/dashboard", s.GetDashboardSummary)
		reports.GET("/revenue", s.GetRevenueTrend)
		reports.GET("/top-products", s.GetTopProducts)
		reports.GET("/low-stock", s.GetLowStock)
		reports.GET("/production-summary", s.GetProductionSummary)
		reports.GET("/profit-summary", s.GetProfitSummary)
		reports.GET("/inventory-valuation", s.GetInventoryValuation)
	}

	// -------- Audit --------
	api.GET("/audit-logs", s.authorizeAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)

	// -------- WhatsApp --------
	api.POST("/whatsapp/send-text", s.authorizeAction(authorization.ObjectInvoice, authorization.ActionInvoiceSend), s.SendWhatsAppText)
}

func (s *Server) registerWebhookRoutes() {
	hook := s.engine.Group("/webhook")

	hook.GET("/whatsapp", s.VerifyWhatsAppWebhook)
	hook.POST("/whatsapp", s.ReceiveWhatsAppWebhook)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
