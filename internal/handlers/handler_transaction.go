package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles posting, lookup and reversal of transactions.
type transactionHandler struct {
	postingService  portssvc.PostingSvc
	reversalService portssvc.ReversalSvc
}

// RegisterTransactionRoutes registers routes related to transactions.
func RegisterTransactionRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvc, reversalService portssvc.ReversalSvc) {
	h := &transactionHandler{postingService: postingService, reversalService: reversalService}

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.postTransaction)
		txns.GET("/:id", h.getTransaction)
		txns.POST("/:id/reverse", h.reverseTransaction)
	}
}

func (h *transactionHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var input domain.TransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		actor, _ := middleware.GetUserIDFromContext(c)
		src, _ := middleware.GetSourceSystemFromContext(c)
		h.postingService.RecordRejected(c.Request.Context(), actor, src, fmt.Errorf("%w: malformed request body: %v", apperrors.ErrValidation, err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, src, ok := requestIdentity(c)
	if !ok {
		return
	}

	logger.Info("Received request to post transaction",
		slog.String("business_event_type", input.BusinessEventType),
		slog.Int("entry_count", len(input.Entries)))

	txn, err := h.postingService.Post(c.Request.Context(), input, actor, src)
	if err != nil {
		respondError(c, err, "Failed to post transaction")
		return
	}

	logger.Info("Transaction posted", slog.String("transaction_id", txn.TransactionID), slog.String("transaction_number", txn.TransactionNumber))
	c.JSON(http.StatusCreated, txn)
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.postingService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id := c.Param("id")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, src, ok := requestIdentity(c)
	if !ok {
		return
	}

	reversal, err := h.reversalService.Reverse(c.Request.Context(), id, req.Reason, actor, src)
	if err != nil {
		respondError(c, err, "Failed to reverse transaction")
		return
	}

	logger.Info("Transaction reversed", slog.String("transaction_id", id), slog.String("reversal_id", reversal.TransactionID))
	c.JSON(http.StatusCreated, reversal)
}
