package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"staff_sync_backend/internal/models"
)

// ReportRepository runs the read-only aggregate queries behind the dashboard and analytics pages.
type ReportRepository interface {
	CountStaff(ctx context.Context) (int, error)
	StatusCountsForDate(ctx context.Context, date string) (models.StatusCounts, error)
	StatusCountsPerDay(ctx context.Context, from, to string) ([]models.AnalyticsDay, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// CountStaff counts roster entries with the staff role.
func (r *reportRepository) CountStaff(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, models.RoleStaff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting staff: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// StatusCountsForDate groups one day's rows of staff-role users by status, matching CountStaff.
func (r *reportRepository) StatusCountsForDate(ctx context.Context, date string) (models.StatusCounts, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.status, COUNT(*)
		   FROM attendance_records a
		   JOIN users u ON u.id = a.user_id
		  WHERE a.work_date = $1 AND u.role = $2
		  GROUP BY a.status`, date, models.RoleStaff)
	if err != nil {
		return nil, fmt.Errorf("%w: counting statuses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	counts := models.StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%w: scanning status count: %v", ErrDatabaseError, err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating status counts: %v", ErrDatabaseError, err)
	}
	return counts, nil
}

// StatusCountsPerDay returns one entry per date that has rows, ascending.
func (r *reportRepository) StatusCountsPerDay(ctx context.Context, from, to string) ([]models.AnalyticsDay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(work_date, 'YYYY-MM-DD') AS day, status, COUNT(*)
		   FROM attendance_records
		  WHERE work_date BETWEEN $1 AND $2
		  GROUP BY work_date, status
		  ORDER BY work_date ASC, status ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying analytics: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	days := []models.AnalyticsDay{}
	for rows.Next() {
		var day, status string
		var n int
		if err := rows.Scan(&day, &status, &n); err != nil {
			return nil, fmt.Errorf("%w: scanning analytics row: %v", ErrDatabaseError, err)
		}
		if len(days) == 0 || days[len(days)-1].Date != day {
			days = append(days, models.AnalyticsDay{Date: day, Counts: models.StatusCounts{}})
		}
		days[len(days)-1].Counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating analytics rows: %v", ErrDatabaseError, err)
	}
	return days, nil
}
