package router

import (
	"context"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/constants"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionIDMiddleware binds every request to a session. Clients echo the
// X-Session-ID they were given; anything that is not a UUID starts a new session.
func (routerService *RouterService) sessionIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.SessionIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		ctx := context.WithValue(c.Request.Context(), log.SessionIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.SessionIDHeader, id)
		c.Next()
	}
}

func SessionID(ctx *RequestContext) string {
	return log.GetSessionID(ctx.Request.Context())
}
