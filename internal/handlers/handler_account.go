package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	balanceService portssvc.BalanceSvc
	currency       string
}

func newAccountHandler(as portssvc.AccountSvcFacade, bs portssvc.BalanceSvc, currency string) *accountHandler {
	return &accountHandler{
		accountService: as,
		balanceService: bs,
		currency:       currency,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, balanceService portssvc.BalanceSvc, currency string) {
	h := newAccountHandler(accountService, balanceService, currency)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code", h.getAccount)
		accounts.POST("/:code/deactivate", h.deactivateAccount)
		accounts.GET("/:code/balance", h.getAccountBalance)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, src, ok := requestIdentity(c)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", req.AccountType))

	account, err := h.accountService.Register(c.Request.Context(), req, actor, src)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.List(c.Request.Context(), params.ActiveOnly)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListAccountResponse(accounts)})
}

func (h *accountHandler) getAccount(c *gin.Context) {
	code := c.Param("code")

	account, err := h.accountService.Lookup(c.Request.Context(), code)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	actor, src, ok := requestIdentity(c)
	if !ok {
		return
	}

	account, err := h.accountService.Deactivate(c.Request.Context(), code, actor, src)
	if err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated", slog.String("code", code))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var params dto.AccountBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for balance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	balance, err := h.balanceService.BalanceOf(c.Request.Context(), code, params.AsOf)
	if err != nil {
		respondError(c, err, "Failed to calculate balance")
		return
	}

	asOf := time.Now().UTC()
	if params.AsOf != nil {
		asOf = params.AsOf.UTC()
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		Code:         code,
		Balance:      balance,
		Formatted:    utils.FormatWithCurrency(balance, h.currency),
		CurrencyCode: h.currency,
		AsOf:         asOf,
	})
}
