package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"staff_sync_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var attendanceColumnNames = []string{
	"id", "user_id", "work_date", "check_in", "check_out", "status", "hours_worked", "note", "created_at", "updated_at",
}

func TestUpsertCheckIn_Overwrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 4, 12, 8, 5, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, work_date) DO UPDATE SET check_in = EXCLUDED.check_in")).
		WithArgs(int64(4), "2025-04-12", at, "present", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(attendanceColumnNames).
			AddRow(int64(1), int64(4), "2025-04-12", at, nil, "present", nil, nil, at, at))

	repo := NewAttendanceRepository(db)
	rec, err := repo.UpsertCheckIn(context.Background(), 4, "2025-04-12", at, "present", false)
	if err != nil {
		t.Fatalf("UpsertCheckIn() failed: %v", err)
	}
	if rec.Status != "present" || rec.CheckIn == nil || !rec.CheckIn.Equal(at) {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec.CheckOut != nil || rec.HoursWorked != nil {
		t.Error("Expected open record")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertCheckIn_AccumulateKeepsFirstCheckIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("check_in = COALESCE(attendance_records.check_in, EXCLUDED.check_in)")).
		WillReturnRows(sqlmock.NewRows(attendanceColumnNames).
			AddRow(int64(1), int64(4), "2025-04-12", time.Now(), nil, "present", 3.5, nil, time.Now(), time.Now()))

	repo := NewAttendanceRepository(db)
	rec, err := repo.UpsertCheckIn(context.Background(), 4, "2025-04-12", time.Now(), "present", true)
	if err != nil {
		t.Fatalf("UpsertCheckIn() failed: %v", err)
	}
	if rec.HoursWorked == nil || *rec.HoursWorked != 3.5 {
		t.Errorf("Expected accumulated hours kept, got %v", rec.HoursWorked)
	}
}

func TestCompleteCheckOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	in := time.Date(2025, 4, 12, 8, 5, 0, 0, time.UTC)
	out := time.Date(2025, 4, 12, 16, 20, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SET check_out = $3, status = 'completed', hours_worked = $4")).
		WithArgs(int64(4), "2025-04-12", out, 8.25, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(attendanceColumnNames).
			AddRow(int64(1), int64(4), "2025-04-12", in, out, "completed", 8.25, nil, in, out))

	repo := NewAttendanceRepository(db)
	rec, err := repo.CompleteCheckOut(context.Background(), 4, "2025-04-12", out, 8.25, false)
	if err != nil {
		t.Fatalf("CompleteCheckOut() failed: %v", err)
	}
	if rec.Status != "completed" || rec.HoursWorked == nil || *rec.HoursWorked != 8.25 {
		t.Errorf("Unexpected record %+v", rec)
	}
}

func TestCompleteCheckOut_AccumulateAddsHours(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("hours_worked = ROUND(COALESCE(hours_worked, 0) + $4, 2)")).
		WillReturnRows(sqlmock.NewRows(attendanceColumnNames))

	repo := NewAttendanceRepository(db)
	_, err = repo.CompleteCheckOut(context.Background(), 4, "2025-04-12", time.Now(), 1.5, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing row, got %v", err)
	}
}

func TestAttendanceList_Filters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	cols := append(append([]string{}, attendanceColumnNames...), "name", "staff_id", "total_count")
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ar.user_id = $1 AND ar.work_date >= $2 AND ar.work_date <= $3")).
		WithArgs(int64(4), "2025-04-01", "2025-04-30", 20, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), int64(4), "2025-04-12", now, now, "completed", 8.0, nil, now, now, "Ada", "SCI001", 1))

	userID := int64(4)
	from, to := "2025-04-01", "2025-04-30"
	repo := NewAttendanceRepository(db)
	records, total, err := repo.List(context.Background(), models.AttendanceFilter{UserID: &userID, From: &from, To: &to})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if total != 1 || len(records) != 1 {
		t.Fatalf("Expected one record, got %d (total %d)", len(records), total)
	}
	if records[0].UserName == nil || *records[0].UserName != "Ada" {
		t.Errorf("Expected joined user name, got %v", records[0].UserName)
	}
}
