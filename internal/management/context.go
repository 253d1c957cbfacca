package management

import (
	"context"

	"github.com/gin-gonic/gin"
)

const ChangedByHeader = "X-Changed-By"

type changedByKey struct{}

func WithChangedBy(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, changedByKey{}, user)
}

// ChangedBy names the actor recorded on config events and audit entries.
func ChangedBy(ctx context.Context) string {
	if user, ok := ctx.Value(changedByKey{}).(string); ok {
		return user
	}
	return "system"
}

func ChangedByMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader(ChangedByHeader); user != "" {
			c.Request = c.Request.WithContext(WithChangedBy(c.Request.Context(), user))
		}
		c.Next()
	}
}
