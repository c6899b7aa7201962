package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/vyapar/internal/companyctx"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "bearer "

	contextUserIDKey     = "user_id"
	contextCompanyIDKey  = "company_id"
	contextChatSenderKey = "chat_sender"
)

// AuthRequired resolves the bearer token into the company and actor of the
// request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader(headerAuthorization))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := companyctx.WithCompanyID(c.Request.Context(), principal.CompanyID)
		ctx = companyctx.WithActor(ctx, companyctx.Actor{
			Type: companyctx.ActorTypeUser,
			ID:   principal.UserID.String(),
			Role: string(principal.Role),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set(contextUserIDKey, principal.UserID.String())
		c.Set(contextCompanyIDKey, principal.CompanyID.String())
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
