package handlers

import (
	"errors"
	"net/http"

	"staff_sync_backend/internal/models"
	"staff_sync_backend/internal/services"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard, report and analytics read models.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

func respondReportError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, services.ErrInvalidDateFormat) || errors.Is(err, services.ErrInvalidDateRange) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		return
	}
	utils.LogError(err, fallback)
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
}

// GetDashboardSummary returns the per-day snapshot for ?date= (default today).
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.DashboardSummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondReportError(c, err, "Failed to build dashboard summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAttendanceReport returns rows and totals for ?from=&to=&user_id=.
func (h *ReportHandler) GetAttendanceReport(c *gin.Context) {
	var params models.ReportRequestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}
	report, err := h.reportService.AttendanceReport(c.Request.Context(), params)
	if err != nil {
		respondReportError(c, err, "Failed to build attendance report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetAttendanceAnalytics returns per-day status counts for ?from=&to=.
func (h *ReportHandler) GetAttendanceAnalytics(c *gin.Context) {
	var params models.ReportRequestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}
	days, err := h.reportService.Analytics(c.Request.Context(), params)
	if err != nil {
		respondReportError(c, err, "Failed to build attendance analytics.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}
