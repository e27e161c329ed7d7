package middleware

import (
	"fmt"
	"net/http"
	"time"

	"vendorledger/internal/cache"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdempotencyHeader = "Idempotency-Key"

// Idempotency rejects a second request carrying the same Idempotency-Key with 409.
// Requests without the header pass through. A key whose request failed (status >= 400)
// is released so the client can retry with it.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 128 {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Idempotency-Key is too long"))
			return
		}

		scoped := scopeKey(c, key)
		ctx := c.Request.Context()
		fresh, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			log.Error("idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Request could not be de-duplicated, retry later"))
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, response.ErrorWithCode(http.StatusConflict, "DUPLICATE_REQUEST", "A request with this Idempotency-Key was already processed"))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

// scopeKey namespaces the client key by caller and route.
func scopeKey(c *gin.Context, key string) string {
	caller := "anonymous"
	if actor, ok := ActorFrom(c); ok {
		caller = fmt.Sprintf("%s:%d", actor.Role, actor.ID)
	}
	return fmt.Sprintf("%s|%s %s|%s", caller, c.Request.Method, c.FullPath(), key)
}
