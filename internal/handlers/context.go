package handlers

import (
	"net/http"
	"strconv"

	"staff_sync_backend/internal/middleware"
	"staff_sync_backend/internal/models"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// currentActor reads the caller set by AuthMiddleware.
func currentActor(c *gin.Context) (*models.User, bool) {
	userID := c.GetInt64(middleware.ContextUserID)
	if userID == 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return nil, false
	}
	return &models.User{
		ID:      userID,
		StaffID: c.GetString(middleware.ContextStaffID),
		Role:    c.GetString(middleware.ContextUserRole),
	}, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

func parsePaging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
