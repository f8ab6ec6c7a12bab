package middleware

import (
	"context"
	"net/http"
	"strings"

	"staff_sync_backend/internal/access"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextStaffID  = "staffID"
	ContextUserRole = "userRole"
	ContextTokenID  = "tokenID"
)

// SessionValidator reports whether a token id is still the user's live session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID int64, tokenID string) (bool, error)
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
// A token is only accepted while it is the user's current session.
func AuthMiddleware(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		active, err := sessions.ValidateSession(c.Request.Context(), claims.UserID, claims.ID)
		if err != nil {
			utils.LogError(err, "AuthMiddleware: session lookup failed")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to verify session.", "Internal error"))
			return
		}
		if !active {
			utils.LogDebug("Rejected token of a closed session", map[string]interface{}{"user_id": claims.UserID})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Session has ended. Please log in again.", ""))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextStaffID, claims.StaffID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)

		c.Next()
	}
}

// PageAccessMiddleware allows the request only when the caller's role may open page.
func PageAccessMiddleware(policy *access.Policy, page access.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "User role not found. Ensure AuthMiddleware runs first.", ""))
			return
		}

		decision := policy.Resolve(role, page)
		if !decision.Allowed {
			apiErr := utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, decision.Notice, "redirect: "+string(decision.Page))
			utils.RespondWithError(c, apiErr)
			return
		}

		c.Next()
	}
}
