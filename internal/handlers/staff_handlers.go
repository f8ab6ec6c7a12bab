package handlers

import (
	"errors"
	"net/http"

	"staff_sync_backend/internal/services"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StaffHandler serves the staff directory.
type StaffHandler struct {
	authService services.AuthService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(as services.AuthService) *StaffHandler {
	return &StaffHandler{authService: as}
}

// GetStaffMembers handles fetching the roster with pagination and search.
func (h *StaffHandler) GetStaffMembers(c *gin.Context) {
	page, pageSize := parsePaging(c)

	users, totalCount, err := h.authService.ListUsers(c.Request.Context(), page, pageSize, optionalQuery(c, "search"))
	if err != nil {
		utils.LogError(err, "GetStaffMembers: Error from authService.ListUsers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch staff members.", "Internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      users,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateStaffMember adds a roster entry of any role on behalf of the caller.
func (h *StaffHandler) CreateStaffMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), actor, req)
	if err != nil {
		utils.LogError(err, "CreateStaffMember: Error from authService.Signup")
		respondAuthError(c, err, "Failed to create staff member.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// DeleteStaffMember removes a roster entry.
func (h *StaffHandler) DeleteStaffMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.authService.DeleteUser(c.Request.Context(), actor.ID, userID)
	if err != nil {
		utils.LogError(err, "DeleteStaffMember: Error from authService.DeleteUser for ID "+utils.Int64ToStr(userID))
		if errors.Is(err, services.ErrCannotDeleteSelf) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "You cannot delete your own account.", ""))
		} else if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete staff member.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
