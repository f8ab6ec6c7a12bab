package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"staff_sync_backend/internal/models"
	"staff_sync_backend/internal/repositories"
)

var ErrInvalidDateRange = errors.New("'from' date must not be after 'to' date")

const (
	defaultReportDays = 30
	reportPageSize    = 200
	unmarkedKey       = "unmarked"
)

// ReportService builds the dashboard, report and analytics read models.
type ReportService interface {
	DashboardSummary(ctx context.Context, date string) (*models.DashboardSummary, error)
	AttendanceReport(ctx context.Context, params models.ReportRequestParams) (*models.AttendanceReport, error)
	Analytics(ctx context.Context, params models.ReportRequestParams) ([]models.AnalyticsDay, error)
}

type reportService struct {
	reportRepo     repositories.ReportRepository
	attendanceRepo repositories.AttendanceRepository
	loc            *time.Location
	now            func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(reportRepo repositories.ReportRepository, attendanceRepo repositories.AttendanceRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{reportRepo: reportRepo, attendanceRepo: attendanceRepo, loc: loc, now: time.Now}
}

func (s *reportService) today() string {
	return s.now().In(s.loc).Format(dateLayout)
}

// dateRange validates from/to, defaulting to the last 30 days.
func (s *reportService) dateRange(params models.ReportRequestParams) (string, string, error) {
	to := strings.TrimSpace(params.EndDate)
	if to == "" {
		to = s.today()
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return "", "", ErrInvalidDateFormat
	}
	from := strings.TrimSpace(params.StartDate)
	if from == "" {
		from = toDate.AddDate(0, 0, -(defaultReportDays - 1)).Format(dateLayout)
	}
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return "", "", ErrInvalidDateFormat
	}
	if fromDate.After(toDate) {
		return "", "", ErrInvalidDateRange
	}
	return from, to, nil
}

func (s *reportService) DashboardSummary(ctx context.Context, date string) (*models.DashboardSummary, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.today()
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDateFormat
	}

	total, err := s.reportRepo.CountStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	counts, err := s.reportRepo.StatusCountsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	marked := 0
	for _, status := range models.AttendanceStatuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
		marked += counts[status]
	}
	unmarked := total - marked
	if unmarked < 0 {
		unmarked = 0
	}
	counts[unmarkedKey] = unmarked

	return &models.DashboardSummary{Date: date, TotalStaff: total, Counts: counts, Unmarked: unmarked}, nil
}

func (s *reportService) AttendanceReport(ctx context.Context, params models.ReportRequestParams) (*models.AttendanceReport, error) {
	from, to, err := s.dateRange(params)
	if err != nil {
		return nil, err
	}

	report := &models.AttendanceReport{From: from, To: to, Records: []models.AttendanceRecord{}, Counts: models.StatusCounts{}}
	filter := models.AttendanceFilter{UserID: params.UserID, From: &from, To: &to, PageSize: reportPageSize}
	for filter.Page = 1; ; filter.Page++ {
		records, total, err := s.attendanceRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to build attendance report: %w", err)
		}
		report.Records = append(report.Records, records...)
		if len(records) == 0 || len(report.Records) >= total {
			break
		}
	}

	hours := 0.0
	for _, rec := range report.Records {
		report.Counts[rec.Status]++
		if rec.HoursWorked != nil {
			hours += *rec.HoursWorked
		}
	}
	report.TotalHours = math.Round(hours*100) / 100
	return report, nil
}

func (s *reportService) Analytics(ctx context.Context, params models.ReportRequestParams) ([]models.AnalyticsDay, error) {
	from, to, err := s.dateRange(params)
	if err != nil {
		return nil, err
	}
	days, err := s.reportRepo.StatusCountsPerDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics: %w", err)
	}
	return days, nil
}
