package repositories

import (
	"context"
	"regexp"
	"testing"

	"staff_sync_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusCountsPerDay_GroupsByDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY work_date, status")).
		WithArgs("2025-04-11", "2025-04-12").
		WillReturnRows(sqlmock.NewRows([]string{"day", "status", "count"}).
			AddRow("2025-04-11", "completed", 3).
			AddRow("2025-04-11", "late", 1).
			AddRow("2025-04-12", "present", 2))

	repo := NewReportRepository(db)
	days, err := repo.StatusCountsPerDay(context.Background(), "2025-04-11", "2025-04-12")
	if err != nil {
		t.Fatalf("StatusCountsPerDay() failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(days))
	}
	if days[0].Counts["completed"] != 3 || days[0].Counts["late"] != 1 {
		t.Errorf("Unexpected first day %+v", days[0])
	}
	if days[1].Date != "2025-04-12" || days[1].Counts["present"] != 2 {
		t.Errorf("Unexpected second day %+v", days[1])
	}
}

func TestStatusCountsForDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	defer db.Close()

	// Only staff rows count.
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = a.user_id")).
		WithArgs("2025-04-12", models.RoleStaff).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("present", 2).AddRow("absent", 1))

	repo := NewReportRepository(db)
	counts, err := repo.StatusCountsForDate(context.Background(), "2025-04-12")
	if err != nil {
		t.Fatalf("StatusCountsForDate() failed: %v", err)
	}
	if counts["present"] != 2 || counts["absent"] != 1 {
		t.Errorf("Unexpected counts %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
