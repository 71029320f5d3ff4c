package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
	portssvc "github.com/finboard/report_engine/internal/core/ports/services"
	"github.com/finboard/report_engine/internal/dto"
	"github.com/finboard/report_engine/internal/middleware"
)

// reportHandler handles HTTP requests for computed report snapshots
type reportHandler struct {
	queryService portssvc.ReportQuerySvc
	refreshQueue portssvc.RefreshQueue
}

// newReportHandler creates a new reportHandler
func newReportHandler(qs portssvc.ReportQuerySvc, rq portssvc.RefreshQueue) *reportHandler {
	return &reportHandler{
		queryService: qs,
		refreshQueue: rq,
	}
}

// registerReportRoutes registers routes for computed report snapshots
func registerReportRoutes(rg *gin.RouterGroup, qs portssvc.ReportQuerySvc, rq portssvc.RefreshQueue) {
	h := newReportHandler(qs, rq)

	reportGroup := rg.Group("/reports/:report_id")
	{
		reportGroup.GET("/values", h.getItemValues)
		reportGroup.GET("/digests", h.getDigests)
		reportGroup.POST("/refresh", h.postRefresh)
	}
}

// snapshotParams parses the period query triple shared by the snapshot reads.
func snapshotParams(c *gin.Context) (start, end time.Time, periodType domain.PeriodType, ok bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	startStr := c.Query("startDate")
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		logger.Warn("Invalid startDate format", slog.String("startDate", startStr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use YYYY-MM-DD"})
		return start, end, periodType, false
	}
	endStr := c.Query("endDate")
	end, err = time.Parse("2006-01-02", endStr)
	if err != nil {
		logger.Warn("Invalid endDate format", slog.String("endDate", endStr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use YYYY-MM-DD"})
		return start, end, periodType, false
	}
	if start.After(end) {
		logger.Warn("Invalid date range", slog.String("startDate", startStr), slog.String("endDate", endStr))
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be before or equal to endDate"})
		return start, end, periodType, false
	}

	periodType, ok = parsePeriodType(c.DefaultQuery("periodType", string(domain.PeriodMonthly)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodType. Use DAILY, MONTHLY or ANNUAL"})
		return start, end, periodType, false
	}
	return start, end, periodType, true
}

func parsePeriodType(s string) (domain.PeriodType, bool) {
	switch pt := domain.PeriodType(s); pt {
	case domain.PeriodDaily, domain.PeriodMonthly, domain.PeriodAnnual:
		return pt, true
	}
	return "", false
}

// getItemValues returns every computed cell of one period snapshot.
func (h *reportHandler) getItemValues(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reportID := c.Param("report_id")

	start, end, periodType, ok := snapshotParams(c)
	if !ok {
		return
	}

	values, err := h.queryService.GetItemValues(c.Request.Context(), reportID, start, end, periodType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Snapshot not found", slog.String("report_id", reportID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not found for the requested period"})
		} else {
			logger.Error("Failed to load snapshot values", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot values"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToItemValuesResponse(reportID, start, end, periodType, values))
}

// getDigests returns the stored dependency-digest map of one period snapshot.
func (h *reportHandler) getDigests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reportID := c.Param("report_id")

	start, end, periodType, ok := snapshotParams(c)
	if !ok {
		return
	}

	digests, err := h.queryService.GetDigests(c.Request.Context(), reportID, start, end, periodType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Snapshot not found", slog.String("report_id", reportID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not found for the requested period"})
		} else {
			logger.Error("Failed to load snapshot digests", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot digests"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.DigestsResponse{ReportID: reportID, Digests: digests})
}

// postRefresh enqueues a prioritised refresh of one period snapshot. The
// recompute itself runs on the worker; the handler only validates and queues.
func (h *reportHandler) postRefresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reportID := c.Param("report_id")

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid refresh request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use YYYY-MM-DD"})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be before or equal to endDate"})
		return
	}

	if err := h.refreshQueue.EnqueueRefresh(c.Request.Context(), reportID, start, end, domain.PeriodType(req.PeriodType), true); err != nil {
		logger.Error("Failed to enqueue refresh", slog.String("error", err.Error()), slog.String("report_id", reportID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue refresh"})
		return
	}

	logger.Info("Refresh enqueued",
		slog.String("report_id", reportID),
		slog.String("period_type", req.PeriodType))
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
