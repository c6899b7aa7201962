package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSafeAttributesKeepsHTTPFields(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/invoices"),
		attribute.String("customer_name", "Sharma Traders"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorHidesMessage(t *testing.T) {
	err := SafeError(errors.New("customer 9876543210 not found"))
	assert.NotContains(t, err.Error(), "9876543210")
	assert.Nil(t, SafeError(nil))
}

func TestGinMiddlewareTagsCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/invoices/:id", func(c *gin.Context) {
		ctx := companyctx.WithCompanyID(c.Request.Context(), snowflake.ID(42))
		ctx = companyctx.WithActor(ctx, companyctx.Actor{Type: companyctx.ActorTypeUser, ID: "7"})
		c.Request = c.Request.WithContext(ctx)
		_ = c.Error(errors.New("customer 9876543210 exploded"))
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/invoices/5", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "HTTP GET /api/invoices/:id", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := map[attribute.Key]string{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "42", attrs["vyapar.company_id"])
	assert.Equal(t, "user", attrs["vyapar.actor_type"])
	assert.Equal(t, "500", attrs["http.status_code"])

	require.Len(t, span.Events(), 1)
	for _, kv := range span.Events()[0].Attributes {
		assert.NotContains(t, kv.Value.Emit(), "9876543210")
	}
}
