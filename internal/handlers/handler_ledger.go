package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finboard/report_engine/internal/core/domain"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
	"github.com/finboard/report_engine/internal/dto"
	"github.com/finboard/report_engine/internal/middleware"
)

// ledgerHandler serves the imported ledger rows backing drill-down views
type ledgerHandler struct {
	queryService portssvc.ReportQuerySvc
}

func newLedgerHandler(qs portssvc.ReportQuerySvc) *ledgerHandler {
	return &ledgerHandler{queryService: qs}
}

// registerLedgerRoutes registers routes for imported ledger rows
func registerLedgerRoutes(rg *gin.RouterGroup, qs portssvc.ReportQuerySvc) {
	h := newLedgerHandler(qs)

	ledgerGroup := rg.Group("/companies/:company_id/ledger")
	{
		ledgerGroup.GET("/:kind/lines", h.getLines)
	}
}

func parseLedgerKind(s string) (domain.LedgerKind, bool) {
	switch k := domain.LedgerKind(s); k {
	case domain.LedgerGeneral, domain.LedgerBank, domain.LedgerAccountsPayable,
		domain.LedgerBalance, domain.LedgerOpeningBalance, domain.LedgerPriorDayBalance:
		return k, true
	}
	return "", false
}

// getLines returns the imported rows of one ledger snapshot.
func (h *ledgerHandler) getLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	kind, ok := parseLedgerKind(c.Param("kind"))
	if !ok {
		logger.Warn("Invalid ledger kind", slog.String("kind", c.Param("kind")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ledger kind"})
		return
	}

	startStr := c.Query("startDate")
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use YYYY-MM-DD"})
		return
	}
	endStr := c.Query("endDate")
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use YYYY-MM-DD"})
		return
	}

	lines, err := h.queryService.ListLedgerLines(c.Request.Context(), companyID, kind, start, end)
	if err != nil {
		logger.Error("Failed to list ledger lines",
			slog.String("error", err.Error()),
			slog.String("company_id", companyID),
			slog.String("kind", string(kind)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledger lines"})
		return
	}

	logger.Info("Ledger lines listed",
		slog.String("company_id", companyID),
		slog.String("kind", string(kind)),
		slog.Int("line_count", len(lines)))
	c.JSON(http.StatusOK, dto.ToLedgerLinesResponse(lines))
}
