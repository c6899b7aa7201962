package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/vyapar/internal/analytics/domain"
	auditdomain "github.com/smallbiznis/vyapar/internal/audit/domain"
	authdomain "github.com/smallbiznis/vyapar/internal/auth/domain"
	"github.com/smallbiznis/vyapar/internal/authorization"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	customerdomain "github.com/smallbiznis/vyapar/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/vyapar/internal/ledger/domain"
	paymentdomain "github.com/smallbiznis/vyapar/internal/payment/domain"
	productdomain "github.com/smallbiznis/vyapar/internal/product/domain"
	productiondomain "github.com/smallbiznis/vyapar/internal/production/domain"
	purchasedomain "github.com/smallbiznis/vyapar/internal/purchase/domain"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	supplierdomain "github.com/smallbiznis/vyapar/internal/supplier/domain"
	"github.com/smallbiznis/vyapar/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// classifyErrorForLog feeds the request logger the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var stockErr *stockdomain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "insufficient_stock",
			Message: stockErr.Error(),
			Details: map[string]any{
				"name":      stockErr.Name,
				"available": stockErr.Available,
				"requested": stockErr.Requested,
			},
		}
	}

	var overErr *paymentdomain.OverpaymentError
	if errors.As(err, &overErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "overpayment",
			Message: overErr.Error(),
			Details: map[string]any{
				"total":        overErr.Total.StringFixed(2),
				"already_paid": overErr.AlreadyPaid.StringFixed(2),
				"max_payable":  overErr.MaxPayable.StringFixed(2),
			},
		}
	}

	if errors.Is(err, paymentdomain.ErrDocumentOwnership) {
		return http.StatusBadRequest, errorPayload{
			Type:    "ownership_error",
			Message: "document does not belong to the counterparty",
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrAccountInactive):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, invoicedomain.ErrDeliveryDisabled),
		errors.Is(err, invoicedomain.ErrRenderingDisabled):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isAuthValidationError(err),
		isCompanyValidationError(err),
		isCustomerValidationError(err),
		isSupplierValidationError(err),
		isProductValidationError(err),
		isRawMaterialValidationError(err),
		isStockValidationError(err),
		isInvoiceValidationError(err),
		isPurchaseValidationError(err),
		isProductionValidationError(err),
		isPaymentValidationError(err),
		isLedgerValidationError(err),
		isAnalyticsValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, customerdomain.ErrDuplicateName),
		errors.Is(err, customerdomain.ErrInUse),
		errors.Is(err, invoicedomain.ErrAlreadyCancelled),
		errors.Is(err, invoicedomain.ErrDuplicateNumber),
		errors.Is(err, purchasedomain.ErrDuplicateNumber),
		errors.Is(err, productiondomain.ErrDuplicateNumber):
		return true
	case db.IsDuplicateKeyErr(err), db.IsContentionErr(err):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	if db.IsContentionErr(err) {
		return "resource is busy, retry the request"
	}
	if errors.Is(err, ErrConflict) || db.IsDuplicateKeyErr(err) {
		return "conflict"
	}
	return err.Error()
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, supplierdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, rawmaterialdomain.ErrNotFound),
		errors.Is(err, stockdomain.ErrProductNotFound),
		errors.Is(err, stockdomain.ErrRawMaterialNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrCustomerNotFound),
		errors.Is(err, invoicedomain.ErrProductNotFound),
		errors.Is(err, purchasedomain.ErrNotFound),
		errors.Is(err, purchasedomain.ErrSupplierNotFound),
		errors.Is(err, purchasedomain.ErrRawMaterialNotFound),
		errors.Is(err, productiondomain.ErrNotFound),
		errors.Is(err, productiondomain.ErrProductNotFound),
		errors.Is(err, productiondomain.ErrRawMaterialNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrCustomerNotFound),
		errors.Is(err, paymentdomain.ErrSupplierNotFound),
		errors.Is(err, paymentdomain.ErrInvoiceNotFound),
		errors.Is(err, paymentdomain.ErrPurchaseNotFound),
		errors.Is(err, ledgerdomain.ErrCustomerNotFound),
		errors.Is(err, ledgerdomain.ErrSupplierNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return "not found"
	}
	return strings.ReplaceAll(err.Error(), "_", " ")
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "weak_password":
		return "password must be at least 8 characters"
	case "document_cancelled":
		return "document is cancelled"
	case "invoice_recipient_missing":
		return "no phone number to send to"
	default:
		if strings.HasSuffix(code, "_required") {
			return strings.ReplaceAll(code, "_", " ")
		}
		return "invalid value"
	}
}

func isAuthValidationError(err error) bool {
	switch err {
	case authdomain.ErrInvalidCompany,
		authdomain.ErrInvalidEmail,
		authdomain.ErrWeakPassword,
		authdomain.ErrInvalidName,
		authdomain.ErrInvalidRole:
		return true
	default:
		return false
	}
}

func isAnalyticsValidationError(err error) bool {
	switch err {
	case analyticsdomain.ErrInvalidCompany,
		analyticsdomain.ErrInvalidPeriod:
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch err {
	case auditdomain.ErrInvalidCompany,
		auditdomain.ErrInvalidTimeRange,
		auditdomain.ErrInvalidAction,
		auditdomain.ErrInvalidActorType:
		return true
	default:
		return false
	}
}
