package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusFor maps ledger error categories onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it as a JSON error. Internal failures are
// not echoed to the caller.
func respondError(c *gin.Context, err error, internalMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(internalMsg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": internalMsg})
		return
	}
	logger.Warn(internalMsg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestIdentity returns the actor and source system attributed to the request.
func requestIdentity(c *gin.Context) (string, string, bool) {
	actor, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	src, ok := middleware.GetSourceSystemFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": middleware.SourceSystemHeader + " header required"})
		return "", "", false
	}
	return actor, src, true
}
