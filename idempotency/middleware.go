package idempotency

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const Header = "Idempotency-Key"

type Keys interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Middleware rejects a replayed Idempotency-Key with 409. Requests without
// the header pass through. When redis is unreachable the request is served
// without the guard.
func Middleware(keys Keys, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(Header))
		if raw == "" {
			c.Next()
			return
		}
		// 按实际路径区分：同一个 key 用在两张借用单上互不影响
		k := c.Request.Method + ":" + c.Request.URL.Path + ":" + raw

		ok, err := keys.Claim(c.Request.Context(), k)
		if err != nil {
			logger.Warn("idempotency claim failed", "key", raw, "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   gin.H{"kind": "DuplicateRequest", "message": "request with this Idempotency-Key was already processed"},
			})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// 请求已结束，不能再用它的 ctx
			if err := keys.Release(context.WithoutCancel(c.Request.Context()), k); err != nil {
				logger.Warn("idempotency release failed", "key", raw, "err", err)
			}
		}
	}
}
