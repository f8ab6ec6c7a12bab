package handlers

import (
	"errors"
	"net/http"

	"staff_sync_backend/internal/services"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler holds the attendance service.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

func respondAttendanceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, "You are already checked in.", ""))
	case errors.Is(err, services.ErrNotCheckedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, "You are not checked in.", ""))
	case errors.Is(err, services.ErrAttendanceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Attendance record not found.", ""))
	case errors.Is(err, services.ErrInvalidDateFormat), errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	default:
		utils.LogError(err, fallback)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// CheckIn starts the caller's clock.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	result, err := h.attendanceService.CheckIn(c.Request.Context(), actor.ID)
	if err != nil {
		respondAttendanceError(c, err, "Failed to check in.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckOut stops the caller's clock.
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	result, err := h.attendanceService.CheckOut(c.Request.Context(), actor.ID)
	if err != nil {
		respondAttendanceError(c, err, "Failed to check out.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStatus returns the caller's live check-in status.
func (h *AttendanceHandler) GetStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	status, err := h.attendanceService.Status(c.Request.Context(), actor.ID)
	if err != nil {
		respondAttendanceError(c, err, "Failed to read check-in status.")
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetRecords lists attendance rows visible to the caller.
func (h *AttendanceHandler) GetRecords(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var params services.ListAttendanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}

	records, total, err := h.attendanceService.ListRecords(c.Request.Context(), actor, params)
	if err != nil {
		respondAttendanceError(c, err, "Failed to fetch attendance records.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"total": total,
	})
}

// UpdateRecord applies an admin correction.
func (h *AttendanceHandler) UpdateRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}

	record, err := h.attendanceService.UpdateRecord(c.Request.Context(), id, req)
	if err != nil {
		respondAttendanceError(c, err, "Failed to update attendance record.")
		return
	}
	c.JSON(http.StatusOK, record)
}
