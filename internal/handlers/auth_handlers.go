package handlers

import (
	"errors"
	"net/http"

	"staff_sync_backend/internal/services"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// respondAuthError maps auth service errors shared by several endpoints.
func respondAuthError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid credentials.", ""))
	case errors.Is(err, services.ErrAdminRequired):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Only an administrator can create admin accounts.", ""))
	case errors.Is(err, services.ErrEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// Signup handles self-registration. Admin accounts are created through the staff directory.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Signup: Failed to bind JSON")
		utils.RespondValidationFailed(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), nil, req)
	if err != nil {
		utils.LogError(err, "Signup: Error from authService.Signup")
		respondAuthError(c, err, "Failed to register user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			utils.LogError(err, "Login: Error from authService.Login")
		}
		respondAuthError(c, err, "Login failed due to an internal error.")
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// Logout ends the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), actor.ID); err != nil {
		utils.LogError(err, "Logout: Error from authService.Logout")
		respondAuthError(c, err, "Failed to log out.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUserProfile(c.Request.Context(), actor.ID)
	if err != nil {
		utils.LogError(err, "GetCurrentUser: Error from authService.GetUserProfile")
		respondAuthError(c, err, "Failed to retrieve user profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCredentials changes the caller's email, name or password.
func (h *AuthHandler) UpdateCredentials(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}

	user, err := h.authService.UpdateCredentials(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondAuthError(c, err, "Failed to update credentials.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the caller's descriptive fields.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondAuthError(c, err, "Failed to update profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}
