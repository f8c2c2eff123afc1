package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey types the keys stored in request contexts. Using a custom type
// prevents collisions.
type contextKey string

const (
	loggerCtxKey       = contextKey("logger")
	userIDKey          = contextKey("userID")
	sourceSystemKey    = contextKey("sourceSystem")
	SourceSystemHeader = "X-Source-System"
	RequestIDHeader    = "X-Request-ID"
)

// GetUserIDFromContext retrieves the authenticated user ID, which the ledger
// records as the actor of every mutation.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		userID, ok := userIDVal.(string)
		return userID, ok && userID != ""
	}
	return UserIDFromCtx(c.Request.Context())
}

// UserIDFromCtx retrieves the authenticated user ID from a standard context.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetSourceSystemFromContext retrieves the calling system named by the X-Source-System header.
func GetSourceSystemFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(sourceSystemKey)); exists {
		src, ok := v.(string)
		return src, ok && src != ""
	}
	src, ok := c.Request.Context().Value(sourceSystemKey).(string)
	return src, ok && src != ""
}
