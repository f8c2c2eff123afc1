package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
// The token subject becomes the actor recorded on every mutation.
func AuthMiddleware(jwtSecret string, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := utils.ParseAndValidateJWT(parts[1], jwtSecret, issuer)
		if err != nil {
			logger.Warn("Invalid token", slog.Any("error", err))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		userID := strings.TrimSpace(claims.Subject)
		if userID == "" {
			logger.Error("User ID (subject) missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		enrichedLogger := logger.With(slog.String("user_id", userID))
		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(userIDKey), userID)

		c.Next()
	}
}

// RequireSourceSystem rejects requests that do not name their calling system.
// Every mutation is attributed to both an actor and a source system.
func RequireSourceSystem() gin.HandlerFunc {
	return func(c *gin.Context) {
		src := strings.TrimSpace(c.GetHeader(SourceSystemHeader))
		if src == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("Source system header missing")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": SourceSystemHeader + " header required"})
			return
		}
		if len(src) > 100 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": SourceSystemHeader + " header too long"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), sourceSystemKey, src)
		ctx = context.WithValue(ctx, loggerCtxKey, GetLoggerFromCtx(ctx).With(slog.String("source_system", src)))
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(sourceSystemKey), src)
		c.Next()
	}
}
