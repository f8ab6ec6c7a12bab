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

// AttendanceRepository defines the interface for attendance row operations.
// Every write targets the single row of a (user, date) pair.
type AttendanceRepository interface {
	UpsertCheckIn(ctx context.Context, userID int64, date string, at time.Time, status string, accumulate bool) (*models.AttendanceRecord, error)
	CompleteCheckOut(ctx context.Context, userID int64, date string, at time.Time, cycleHours float64, accumulate bool) (*models.AttendanceRecord, error)
	FindByUserAndDate(ctx context.Context, userID int64, date string) (*models.AttendanceRecord, error)
	FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	UpdateRecord(ctx context.Context, id int64, status, note *string) (*models.AttendanceRecord, error)
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, user_id, to_char(work_date, 'YYYY-MM-DD'), check_in, check_out, status,
	hours_worked, note, created_at, updated_at`

func scanAttendanceRow(row scanner, extra ...interface{}) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	dest := []interface{}{
		&rec.ID, &rec.UserID, &rec.Date, &rec.CheckIn, &rec.CheckOut, &rec.Status,
		&rec.HoursWorked, &rec.Note, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning attendance record: %v", ErrDatabaseError, err)
	}
	return &rec, nil
}

// UpsertCheckIn creates the day's row or reopens it.
// Overwrite mode replaces check_in and clears the previous result; accumulate mode keeps
// the first check_in and the hours worked so far.
func (r *attendanceRepository) UpsertCheckIn(ctx context.Context, userID int64, date string, at time.Time, status string, accumulate bool) (*models.AttendanceRecord, error) {
	onConflict := `check_in = EXCLUDED.check_in,
	               check_out = NULL,
	               hours_worked = NULL,
	               status = EXCLUDED.status,
	               updated_at = EXCLUDED.updated_at`
	if accumulate {
		onConflict = `check_in = COALESCE(attendance_records.check_in, EXCLUDED.check_in),
	               check_out = NULL,
	               status = CASE WHEN attendance_records.status IN ('present', 'late')
	                             THEN attendance_records.status ELSE EXCLUDED.status END,
	               updated_at = EXCLUDED.updated_at`
	}

	query := `INSERT INTO attendance_records (user_id, work_date, check_in, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (user_id, work_date) DO UPDATE SET ` + onConflict + `
	          RETURNING ` + attendanceColumns

	rec, err := scanAttendanceRow(r.db.QueryRowContext(ctx, query, userID, date, at, status, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("upserting check-in for user %d on %s: %w", userID, date, err)
	}
	return rec, nil
}

// CompleteCheckOut closes the day's row. cycleHours is the duration of the cycle being closed;
// in accumulate mode it is added to the hours already recorded.
func (r *attendanceRepository) CompleteCheckOut(ctx context.Context, userID int64, date string, at time.Time, cycleHours float64, accumulate bool) (*models.AttendanceRecord, error) {
	hoursExpr := `$4`
	if accumulate {
		hoursExpr = `ROUND(COALESCE(hours_worked, 0) + $4, 2)`
	}
	query := `UPDATE attendance_records
	          SET check_out = $3, status = 'completed', hours_worked = ` + hoursExpr + `, updated_at = $5
	          WHERE user_id = $1 AND work_date = $2
	          RETURNING ` + attendanceColumns

	return scanAttendanceRow(r.db.QueryRowContext(ctx, query, userID, date, at, cycleHours, time.Now()))
}

// FindByUserAndDate returns the row of a (user, date) pair.
func (r *attendanceRepository) FindByUserAndDate(ctx context.Context, userID int64, date string) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE user_id = $1 AND work_date = $2`
	return scanAttendanceRow(r.db.QueryRowContext(ctx, query, userID, date))
}

// FindByID returns a row by primary key.
func (r *attendanceRepository) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	return scanAttendanceRow(r.db.QueryRowContext(ctx, query, id))
}

// List returns rows joined with the owner's name and staff id, newest date first.
func (r *attendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ar.id, ar.user_id, to_char(ar.work_date, 'YYYY-MM-DD'), ar.check_in, ar.check_out,
	    ar.status, ar.hours_worked, ar.note, ar.created_at, ar.updated_at,
	    u.name, u.staff_id, COUNT(*) OVER() AS total_count
	  FROM attendance_records ar
	  JOIN users u ON u.id = ar.user_id`)

	conditions, args := attendanceConditions(filter)
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	argCount := len(args) + 1
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY ar.work_date DESC, u.staff_id ASC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying attendance records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	totalCount := 0
	for rows.Next() {
		var name, staffID string
		rec, err := scanAttendanceRow(rows, &name, &staffID, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		rec.UserName = &name
		rec.UserStaffID = &staffID
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating attendance records: %v", ErrDatabaseError, err)
	}
	return records, totalCount, nil
}

func attendanceConditions(filter models.AttendanceFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("ar.user_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("ar.work_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("ar.work_date <= $%d", len(args)))
	}
	return conditions, args
}

// UpdateRecord applies an administrative correction. Nil fields are left unchanged.
func (r *attendanceRepository) UpdateRecord(ctx context.Context, id int64, status, note *string) (*models.AttendanceRecord, error) {
	query := `UPDATE attendance_records
	          SET status = COALESCE($2, status), note = COALESCE($3, note), updated_at = $4
	          WHERE id = $1
	          RETURNING ` + attendanceColumns
	return scanAttendanceRow(r.db.QueryRowContext(ctx, query, id, status, note, time.Now()))
}
