package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type customerPaymentRequest struct {
	CustomerID    string          `json:"customer_id"`
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   string          `json:"payment_type"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
}

type supplierPaymentRequest struct {
	SupplierID    string          `json:"supplier_id"`
	PurchaseID    string          `json:"purchase_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   string          `json:"payment_type"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
}

func (s *Server) CreateCustomerPayment(c *gin.Context) {
	var req customerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentType := paymentTypeOrDefault(req.PaymentType, paymentdomain.PaymentTypeReceived)
	if !paymentType.Customer() {
		AbortWithError(c, paymentdomain.ErrInvalidPaymentType)
		return
	}

	resp, err := s.paymentSvc.AcceptPayment(c.Request.Context(), paymentdomain.AcceptPaymentRequest{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		InvoiceID:   strings.TrimSpace(req.InvoiceID),
		Amount:      req.Amount,
		PaymentType: paymentType,
		Method:      strings.TrimSpace(req.PaymentMethod),
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CreateSupplierPayment(c *gin.Context) {
	var req supplierPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentType := paymentTypeOrDefault(req.PaymentType, paymentdomain.PaymentTypePaid)
	if !paymentType.Supplier() {
		AbortWithError(c, paymentdomain.ErrInvalidPaymentType)
		return
	}

	resp, err := s.paymentSvc.AcceptPayment(c.Request.Context(), paymentdomain.AcceptPaymentRequest{
		SupplierID:  strings.TrimSpace(req.SupplierID),
		PurchaseID:  strings.TrimSpace(req.PurchaseID),
		Amount:      req.Amount,
		PaymentType: paymentType,
		Method:      strings.TrimSpace(req.PaymentMethod),
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func paymentTypeOrDefault(raw string, fallback paymentdomain.PaymentType) paymentdomain.PaymentType {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback
	}
	return paymentdomain.PaymentType(raw)
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID  string `form:"customer_id"`
		SupplierID  string `form:"supplier_id"`
		InvoiceID   string `form:"invoice_id"`
		PurchaseID  string `form:"purchase_id"`
		PaymentType string `form:"payment_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := validateIDFilters(
		idFilter{field: "customer_id", value: query.CustomerID},
		idFilter{field: "supplier_id", value: query.SupplierID},
		idFilter{field: "invoice_id", value: query.InvoiceID},
		idFilter{field: "purchase_id", value: query.PurchaseID},
	); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		Pagination:  query.Pagination,
		CustomerID:  strings.TrimSpace(query.CustomerID),
		SupplierID:  strings.TrimSpace(query.SupplierID),
		InvoiceID:   strings.TrimSpace(query.InvoiceID),
		PurchaseID:  strings.TrimSpace(query.PurchaseID),
		PaymentType: strings.ToLower(strings.TrimSpace(query.PaymentType)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPaymentValidationError(err error) bool {
	switch err {
	case paymentdomain.ErrInvalidCompany,
		paymentdomain.ErrInvalidID,
		paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrInvalidPaymentType,
		paymentdomain.ErrInvalidMethod,
		paymentdomain.ErrInvalidCounterparty,
		paymentdomain.ErrDocumentCancelled:
		return true
	default:
		return false
	}
}
