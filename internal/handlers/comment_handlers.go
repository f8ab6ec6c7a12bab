package handlers

import (
	"errors"
	"net/http"

	"staff_sync_backend/internal/services"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CommentHandler holds the comment service.
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(cs services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: cs}
}

func respondCommentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidDateFormat):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrCommentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Comment not found.", ""))
	default:
		utils.LogError(err, fallback)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// CreateComment files a comment for the caller.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}
	comment, err := h.commentService.CreateComment(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondCommentError(c, err, "Failed to create comment.")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetComments lists comments visible to the caller.
func (h *CommentHandler) GetComments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := parsePaging(c)
	comments, total, err := h.commentService.ListComments(c.Request.Context(), actor, optionalQuery(c, "status"), page, pageSize)
	if err != nil {
		respondCommentError(c, err, "Failed to fetch comments.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      comments,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ReviewComment approves or rejects a comment.
func (h *CommentHandler) ReviewComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReviewCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err)
		return
	}
	comment, err := h.commentService.ReviewComment(c.Request.Context(), id, req)
	if err != nil {
		respondCommentError(c, err, "Failed to review comment.")
		return
	}
	c.JSON(http.StatusOK, comment)
}
