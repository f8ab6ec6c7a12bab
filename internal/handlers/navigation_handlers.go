package handlers

import (
	"net/http"

	"staff_sync_backend/internal/access"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// NavigationHandler exposes the access policy to the client.
type NavigationHandler struct {
	policy *access.Policy
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(policy *access.Policy) *NavigationHandler {
	return &NavigationHandler{policy: policy}
}

// GetPages lists the pages the caller may open.
func (h *NavigationHandler) GetPages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pages":        h.policy.Pages(actor.Role),
		"default_page": h.policy.DefaultPage(actor.Role),
	})
}

// Resolve decides where a request for ?page= ends up.
func (h *NavigationHandler) Resolve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page := c.Query("page")
	if page == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Query parameter 'page' is required.", ""))
		return
	}
	c.JSON(http.StatusOK, h.policy.Resolve(actor.Role, access.Page(page)))
}
