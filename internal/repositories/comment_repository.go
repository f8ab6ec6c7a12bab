package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"staff_sync_backend/internal/models"
)

// CommentRepository stores staff comments about their attendance.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.StaffComment) (*models.StaffComment, error)
	FindByID(ctx context.Context, id int64) (*models.StaffComment, error)
	ListComments(ctx context.Context, userID *int64, status *string, page, pageSize int) ([]models.StaffComment, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.StaffComment, error)
}

type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentSelect = `SELECT c.id, c.user_id, to_char(c.comment_date, 'YYYY-MM-DD'), c.type, c.comment, c.status,
	    c.created_at, c.updated_at, u.name, u.staff_id
	  FROM staff_comments c
	  JOIN users u ON u.id = c.user_id`

func scanComment(row scanner, extra ...interface{}) (*models.StaffComment, error) {
	var c models.StaffComment
	dest := []interface{}{
		&c.ID, &c.UserID, &c.Date, &c.Type, &c.Comment, &c.Status,
		&c.CreatedAt, &c.UpdatedAt, &c.UserName, &c.UserStaffID,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning staff comment: %v", ErrDatabaseError, err)
	}
	return &c, nil
}

// CreateComment inserts a pending comment and returns it with the author's details.
func (r *commentRepository) CreateComment(ctx context.Context, comment *models.StaffComment) (*models.StaffComment, error) {
	query := `INSERT INTO staff_comments (user_id, comment_date, type, comment, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $6)
	          RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		comment.UserID, comment.Date, comment.Type, comment.Comment, models.CommentPending, time.Now(),
	).Scan(&id)
	if err != nil {
		return nil, wrapWriteError(err, "creating staff comment")
	}
	return r.FindByID(ctx, id)
}

// FindByID returns one comment.
func (r *commentRepository) FindByID(ctx context.Context, id int64) (*models.StaffComment, error) {
	return scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
}

// ListComments pages through comments, newest first.
func (r *commentRepository) ListComments(ctx context.Context, userID *int64, status *string, page, pageSize int) ([]models.StaffComment, int, error) {
	page, pageSize = normalizePage(page, pageSize)

	var conditions []string
	var args []interface{}
	if userID != nil {
		args = append(args, *userID)
		conditions = append(conditions, fmt.Sprintf("c.user_id = $%d", len(args)))
	}
	if status != nil {
		args = append(args, *status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}

	query := strings.Replace(commentSelect, "u.staff_id", "u.staff_id, COUNT(*) OVER() AS total_count", 1)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying staff comments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	comments := []models.StaffComment{}
	totalCount := 0
	for rows.Next() {
		c, err := scanComment(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating staff comments: %v", ErrDatabaseError, err)
	}
	return comments, totalCount, nil
}

// UpdateStatus records an admin review decision.
func (r *commentRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.StaffComment, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff_comments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: updating staff comment %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: updating staff comment %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}
