package context

import (
	stdctx "context"
	"strings"
)

type requestIDKey struct{}
type ipAddressKey struct{}
type userAgentKey struct{}

// WithRequestID stores the request correlation id.
func WithRequestID(ctx stdctx.Context, requestID string) stdctx.Context {
	return stdctx.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, requestIDKey{})
}

func WithIPAddress(ctx stdctx.Context, ip string) stdctx.Context {
	return stdctx.WithValue(ctx, ipAddressKey{}, strings.TrimSpace(ip))
}

func IPAddressFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, ipAddressKey{})
}

func WithUserAgent(ctx stdctx.Context, userAgent string) stdctx.Context {
	return stdctx.WithValue(ctx, userAgentKey{}, strings.TrimSpace(userAgent))
}

func UserAgentFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, userAgentKey{})
}

func stringValue(ctx stdctx.Context, key any) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
