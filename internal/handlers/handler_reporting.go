package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler generates signed reports and verifies them.
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
}

// RegisterReportingRoutes registers the report generation and verification routes.
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvc) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/income-statement", h.incomeStatement)
		reports.GET("/general-ledger", h.generalLedger)
		reports.GET("/audit-trail", h.auditTrail)
		reports.POST("/verify", h.verify)
	}
}

// generateReport binds query parameters into P, resolves the caller identity
// and writes the report produced by build.
func generateReport[P any, R domain.SignedReport](c *gin.Context, name string, build func(P, string, string) (R, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params P
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind report parameters", slog.String("report", name), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	actor, src, ok := requestIdentity(c)
	if !ok {
		return
	}

	report, err := build(params, actor, src)
	if err != nil {
		respondError(c, err, "Failed to generate "+name)
		return
	}

	logger.Info("Report generated", slog.String("report", name), slog.String("report_id", report.Envelope().ReportID))
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	generateReport(c, "trial balance", func(p dto.TrialBalanceParams, actor, src string) (*domain.TrialBalanceReport, error) {
		return h.reportingService.TrialBalance(c.Request.Context(), p, actor, src)
	})
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	generateReport(c, "balance sheet", func(p dto.BalanceSheetParams, actor, src string) (*domain.BalanceSheetReport, error) {
		return h.reportingService.BalanceSheet(c.Request.Context(), p, actor, src)
	})
}

func (h *reportingHandler) incomeStatement(c *gin.Context) {
	generateReport(c, "income statement", func(p dto.PeriodParams, actor, src string) (*domain.IncomeStatementReport, error) {
		return h.reportingService.IncomeStatement(c.Request.Context(), p, actor, src)
	})
}

func (h *reportingHandler) generalLedger(c *gin.Context) {
	generateReport(c, "general ledger", func(p dto.GeneralLedgerParams, actor, src string) (*domain.GeneralLedgerReport, error) {
		return h.reportingService.GeneralLedger(c.Request.Context(), p, actor, src)
	})
}

func (h *reportingHandler) auditTrail(c *gin.Context) {
	generateReport(c, "audit trail", func(p dto.AuditTrailParams, actor, src string) (*domain.AuditTrailReport, error) {
		return h.reportingService.AuditTrail(c.Request.Context(), p, actor, src)
	})
}

func (h *reportingHandler) verify(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Report document required"})
		return
	}

	valid, err := h.reportingService.VerifyDocument(body)
	if err != nil {
		respondError(c, err, "Failed to verify report")
		return
	}
	c.JSON(http.StatusOK, dto.VerifyReportResponse{Valid: valid})
}
