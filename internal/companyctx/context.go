package companyctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// CompanyContextKey is the request context key for the active company ID.
type CompanyContextKey struct{}

type actorContextKey struct{}

// Actor identifies who performs a request.
type Actor struct {
	Type string // user, whatsapp, system
	ID   string
	Role string
}

const (
	ActorTypeUser     = "user"
	ActorTypeWhatsApp = "whatsapp"
	ActorTypeSystem   = "system"
)

// WithCompanyID stores the company ID in the context.
func WithCompanyID(ctx context.Context, companyID snowflake.ID) context.Context {
	return context.WithValue(ctx, CompanyContextKey{}, companyID)
}

// CompanyIDFromContext returns the company ID from context, if set.
func CompanyIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(CompanyContextKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}

// WithActor stores the acting principal in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the acting principal, defaulting to system.
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{Type: ActorTypeSystem}
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok || actor.Type == "" {
		return Actor{Type: ActorTypeSystem}
	}
	return actor
}
