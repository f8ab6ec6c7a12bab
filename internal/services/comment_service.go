package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staff_sync_backend/internal/models"
	"staff_sync_backend/internal/repositories"
	"staff_sync_backend/pkg/utils"
)

var ErrCommentNotFound = errors.New("comment not found")

// CreateCommentRequest DTO
type CreateCommentRequest struct {
	Date    string `json:"date" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=absence late early-departure other"`
	Comment string `json:"comment" binding:"required"`
}

// ReviewCommentRequest DTO
type ReviewCommentRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

type CommentService interface {
	CreateComment(ctx context.Context, userID int64, req CreateCommentRequest) (*models.StaffComment, error)
	ListComments(ctx context.Context, actor *models.User, status *string, page, pageSize int) ([]models.StaffComment, int, error)
	ReviewComment(ctx context.Context, id int64, req ReviewCommentRequest) (*models.StaffComment, error)
}

type commentService struct {
	commentRepo repositories.CommentRepository
}

func NewCommentService(commentRepo repositories.CommentRepository) CommentService {
	return &commentService{commentRepo: commentRepo}
}

func isCommentType(t string) bool {
	switch t {
	case models.CommentAbsence, models.CommentLate, models.CommentEarlyDeparture, models.CommentOther:
		return true
	}
	return false
}

func isCommentStatus(s string) bool {
	switch s {
	case models.CommentPending, models.CommentApproved, models.CommentRejected:
		return true
	}
	return false
}

func (s *commentService) CreateComment(ctx context.Context, userID int64, req CreateCommentRequest) (*models.StaffComment, error) {
	date := strings.TrimSpace(req.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDateFormat
	}
	if !isCommentType(req.Type) {
		return nil, validationError("unknown comment type %q", req.Type)
	}
	if utils.IsEmpty(req.Comment) {
		return nil, validationError("comment must not be empty")
	}

	comment, err := s.commentRepo.CreateComment(ctx, &models.StaffComment{
		UserID:  userID,
		Date:    date,
		Type:    req.Type,
		Comment: strings.TrimSpace(req.Comment),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments lists comments; staff see only their own.
func (s *commentService) ListComments(ctx context.Context, actor *models.User, status *string, page, pageSize int) ([]models.StaffComment, int, error) {
	if status != nil && !isCommentStatus(*status) {
		return nil, 0, validationError("unknown comment status %q", *status)
	}
	var userID *int64
	if !actor.IsAdmin() {
		userID = &actor.ID
	}
	comments, total, err := s.commentRepo.ListComments(ctx, userID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

func (s *commentService) ReviewComment(ctx context.Context, id int64, req ReviewCommentRequest) (*models.StaffComment, error) {
	if !isCommentStatus(req.Status) {
		return nil, validationError("unknown comment status %q", req.Status)
	}
	comment, err := s.commentRepo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to review comment: %w", err)
	}
	return comment, nil
}
