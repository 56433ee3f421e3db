package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDCtxKey    = "user_id"
	userEmailCtxKey = "user_email"
)

// HandleAuthMiddleware is the authorization gate: it verifies the bearer
// token and attaches the resolved identity to the request context before
// any handler runs. Every authentication failure is a 401; preflight
// requests pass through unverified so CORS can answer them.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		h.logger.Warn().Msg("authorization header required")
		abort(c, newUnauthorizedError("authorization header required"))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("invalid authorization header")
		abort(c, newUnauthorizedError("invalid authorization header"))
		return
	}

	claims, err := h.tokens.Verify(parts[1])
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to verify token")
		abort(c, newUnauthorizedError("invalid or expired token"))
		return
	}

	c.Set(userIDCtxKey, claims.UserID)
	c.Set(userEmailCtxKey, claims.Email)
	c.Next()
}

// userIDFromContext returns the identity attached by the gate.
func userIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// CORSMiddleware mirrors trusted origins back to the client and answers
// preflight requests directly.
func CORSMiddleware(trustedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Add("Vary", "Origin")
		c.Writer.Header().Add("Vary", "Access-Control-Request-Method")

		origin := c.GetHeader("Origin")
		if origin != "" {
			for _, o := range trustedOrigins {
				if origin == o || o == "*" {
					c.Header("Access-Control-Allow-Origin", origin)
					if c.Request.Method == http.MethodOptions &&
						c.GetHeader("Access-Control-Request-Method") != "" {
						c.Header("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, DELETE")
						c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
						c.AbortWithStatus(http.StatusOK)
						return
					}
					break
				}
			}
		}
		c.Next()
	}
}
