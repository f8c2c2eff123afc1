package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	balanceService portssvc.BalanceSvc
	auditService   portssvc.AuditSvc
}

// RegisterLedgerRoutes registers the integrity, trial balance and audit log routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvc, auditService portssvc.AuditSvc) {
	h := &ledgerHandler{balanceService: balanceService, auditService: auditService}

	rg.GET("/integrity", h.verifyIntegrity)
	rg.GET("/trial-balance", h.trialBalance)
	rg.GET("/audit-log", h.listAuditLog)
}

func (h *ledgerHandler) verifyIntegrity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.IntegrityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	if params.TransactionID != nil && *params.TransactionID == "" {
		params.TransactionID = nil
	}

	result, err := h.balanceService.VerifyIntegrity(c.Request.Context(), params.TransactionID)
	if err != nil {
		respondError(c, err, "Failed to verify ledger integrity")
		return
	}

	if !result.Valid {
		logger.Warn("Ledger integrity violations found", slog.Int("violations", len(result.Violations)))
	}
	c.JSON(http.StatusOK, result)
}

func (h *ledgerHandler) trialBalance(c *gin.Context) {
	var params dto.BalanceSheetParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rows, err := h.balanceService.TrialBalance(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, err, "Failed to compute trial balance")
		return
	}

	asOf := time.Now().UTC()
	if params.AsOf != nil {
		asOf = params.AsOf.UTC()
	}
	c.JSON(http.StatusOK, dto.TrialBalanceResponse{AsOf: asOf, Rows: rows})
}

func (h *ledgerHandler) listAuditLog(c *gin.Context) {
	var params dto.ListAuditLogParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.auditService.ListAuditLog(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list audit log")
		return
	}
	c.JSON(http.StatusOK, page)
}
