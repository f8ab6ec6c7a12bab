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

// UserRepository defines the interface for roster database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error)
	FindUserByStaffIDAndEmail(ctx context.Context, staffID, email string) (*models.User, error)
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error)
	StaffIDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	CountByRole(ctx context.Context, role string) (int, error)
	UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error
	ListUsers(ctx context.Context, page, pageSize int, search *string) ([]models.User, int, error)
	DeleteUser(ctx context.Context, executor SQLExecutor, userID int64) error
}

// userRepository implements the UserRepository interface.
type userRepository struct {
	db *sql.DB // The direct database connection pool
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, staff_id, email, password_hash, name, role, department, position,
	to_char(dob, 'YYYY-MM-DD'), gender, phone_number, created_at, updated_at`

func scanUser(row scanner, extra ...interface{}) (*models.User, error) {
	u := &models.User{}
	dest := []interface{}{
		&u.ID, &u.StaffID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Department, &u.Position,
		&u.DOB, &u.Gender, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}
	return u, nil
}

// CreateUser inserts a new roster entry and returns its id.
// The user must carry a generated StaffID and a bcrypt PasswordHash.
func (r *userRepository) CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (staff_id, email, password_hash, name, role, department, position, dob, gender, phone_number, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	          RETURNING id`

	now := time.Now()
	var userID int64
	err := executor.QueryRowContext(ctx, query,
		user.StaffID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.Department, user.Position, user.DOB, user.Gender, user.PhoneNumber, now,
	).Scan(&userID)
	if err != nil {
		return 0, wrapWriteError(err, "creating user")
	}
	user.ID = userID
	user.CreatedAt = now
	user.UpdatedAt = now
	return userID, nil
}

// FindUserByStaffIDAndEmail looks a user up by the exact login pair.
func (r *userRepository) FindUserByStaffIDAndEmail(ctx context.Context, staffID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE staff_id = $1 AND email = $2`
	return scanUser(r.db.QueryRowContext(ctx, query, staffID, email))
}

// FindUserByID retrieves a user by their ID.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, userID))
}

// EmailTaken reports whether another user already owns the email.
func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, exceptUserID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking email: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

// StaffIDsWithPrefix returns every staff id that starts with prefix.
func (r *userRepository) StaffIDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT staff_id FROM users WHERE left(staff_id, length($1)) = $1 ORDER BY staff_id`, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: listing staff ids: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning staff id: %v", ErrDatabaseError, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staff ids: %v", ErrDatabaseError, err)
	}
	return ids, nil
}

// CountByRole counts roster entries holding role.
func (r *userRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// UpdateUser persists the mutable fields. StaffID and Role are never rewritten.
func (r *userRepository) UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error {
	query := `UPDATE users
	          SET email = $2, password_hash = $3, name = $4, department = $5, position = $6,
	              gender = $7, phone_number = $8, updated_at = $9
	          WHERE id = $1`

	now := time.Now()
	res, err := executor.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Department, user.Position,
		user.Gender, user.PhoneNumber, now,
	)
	if err != nil {
		return wrapWriteError(err, "updating user")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating user: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

// ListUsers pages through the roster ordered by staff id, optionally filtered by a search term.
func (r *userRepository) ListUsers(ctx context.Context, page, pageSize int, search *string) ([]models.User, int, error) {
	page, pageSize = normalizePage(page, pageSize)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count FROM users`)

	var args []interface{}
	argCount := 1
	if search != nil && strings.TrimSpace(*search) != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*search)) + "%"
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(staff_id) LIKE $%d OR LOWER(COALESCE(department, '')) LIKE $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, pattern)
		argCount++
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY staff_id ASC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	totalCount := 0
	for rows.Next() {
		u, err := scanUser(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		u.PasswordHash = ""
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

// DeleteUser removes a roster entry; attendance rows and comments cascade.
func (r *userRepository) DeleteUser(ctx context.Context, executor SQLExecutor, userID int64) error {
	res, err := executor.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: deleting user %d: %v", ErrDatabaseError, userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting user %d: %v", ErrDatabaseError, userID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
