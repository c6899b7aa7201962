package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/vyapar/internal/authorization"
	"github.com/smallbiznis/vyapar/internal/companyctx"
)

// authorizeAction guards a dashboard route with the role policy of the
// signed-in user.
func (s *Server) authorizeAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorize(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorize(c *gin.Context, object string, action string) error {
	ctx := c.Request.Context()
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	actor := companyctx.ActorFromContext(ctx)
	if actor.Type != companyctx.ActorTypeUser || actor.ID == "" {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(ctx, authorization.UserSubject(actor.ID), companyID.String(), object, action)
}
