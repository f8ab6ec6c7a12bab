package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"staff_sync_backend/internal/config"
	"staff_sync_backend/internal/models"
	"staff_sync_backend/internal/repositories"
	"staff_sync_backend/pkg/utils"
)

// --- Custom Service Errors for Attendance ---
var (
	ErrAlreadyCheckedIn   = errors.New("already checked in")
	ErrNotCheckedIn       = errors.New("not checked in")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidDateFormat  = errors.New("invalid date format, please use YYYY-MM-DD")
)

const dateLayout = "2006-01-02"

// CheckInResult is the live status together with the row it wrote.
type CheckInResult struct {
	Status models.CheckInStatus     `json:"status"`
	Record *models.AttendanceRecord `json:"record"`
}

// UpdateAttendanceRequest DTO. Nil fields are left unchanged.
type UpdateAttendanceRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=present absent late leave completed"`
	Note   *string `json:"note"`
}

// ListAttendanceParams DTO
type ListAttendanceParams struct {
	UserID   *int64  `form:"user_id"`
	From     *string `form:"from"`
	To       *string `form:"to"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// --- AttendanceService Interface ---
type AttendanceService interface {
	CheckIn(ctx context.Context, userID int64) (*CheckInResult, error)
	CheckOut(ctx context.Context, userID int64) (*CheckInResult, error)
	Status(ctx context.Context, userID int64) (models.CheckInStatus, error)
	ListRecords(ctx context.Context, actor *models.User, params ListAttendanceParams) ([]models.AttendanceRecord, int, error)
	UpdateRecord(ctx context.Context, id int64, req UpdateAttendanceRequest) (*models.AttendanceRecord, error)
}

// --- attendanceService Implementation ---
type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	checkins       CheckInStore
	cfg            config.AttendanceConfig
	now            func() time.Time
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(attendanceRepo repositories.AttendanceRepository, checkins CheckInStore, cfg config.AttendanceConfig) AttendanceService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CheckInMode == "" {
		cfg.CheckInMode = config.CheckInModeOverwrite
	}
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		checkins:       checkins,
		cfg:            cfg,
		now:            time.Now,
	}
}

func (s *attendanceService) accumulate() bool {
	return s.cfg.CheckInMode == config.CheckInModeAccumulate
}

func (s *attendanceService) workDate(t time.Time) string {
	return t.In(s.cfg.Location).Format(dateLayout)
}

// arrivalStatus is late when late marking is configured and the local clock is past it.
func (s *attendanceService) arrivalStatus(t time.Time) string {
	if s.cfg.LateAfter == nil {
		return models.StatusPresent
	}
	local := t.In(s.cfg.Location)
	if local.Hour()*60+local.Minute() > *s.cfg.LateAfter {
		return models.StatusLate
	}
	return models.StatusPresent
}

// HoursBetween is the worked duration in hours, rounded to two decimals.
func HoursBetween(from, to time.Time) float64 {
	h := to.Sub(from).Hours()
	if h < 0 {
		h = 0
	}
	return math.Round(h*100) / 100
}

// FormatElapsed renders a duration as HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// CheckIn starts the clock and opens (or reopens) today's row.
func (s *attendanceService) CheckIn(ctx context.Context, userID int64) (*CheckInResult, error) {
	now := s.now()
	previous, claimed, err := s.checkins.ClaimIn(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAlreadyCheckedIn
	}

	date := s.workDate(now)
	record, err := s.attendanceRepo.UpsertCheckIn(ctx, userID, date, now, s.arrivalStatus(now), s.accumulate())
	if err != nil {
		if relErr := s.checkins.ReleaseIn(ctx, userID, now, previous); relErr != nil {
			utils.LogError(relErr, "Failed to release check-in claim")
		}
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	utils.LogInfo("User checked in", map[string]interface{}{"user_id": userID, "date": date, "status": record.Status})

	return &CheckInResult{
		Status: models.CheckInStatus{IsCheckedIn: true, CheckInTime: &now, LastCheckOut: previous.LastCheckOut, Elapsed: FormatElapsed(0)},
		Record: record,
	}, nil
}

// CheckOut stops the clock and completes the row of the day the shift started on.
func (s *attendanceService) CheckOut(ctx context.Context, userID int64) (*CheckInResult, error) {
	current, err := s.checkins.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !current.IsCheckedIn || current.CheckInTime == nil {
		return nil, ErrNotCheckedIn
	}

	now := s.now()
	checkIn := *current.CheckInTime
	date := s.workDate(checkIn)
	hours := HoursBetween(checkIn, now)

	record, err := s.attendanceRepo.CompleteCheckOut(ctx, userID, date, now, hours, s.accumulate())
	if errors.Is(err, repositories.ErrNotFound) {
		// Marker without a row: rebuild the row from the marker, then close it.
		utils.LogWarn("Check-out without attendance row, recreating it", map[string]interface{}{"user_id": userID, "date": date})
		if _, err = s.attendanceRepo.UpsertCheckIn(ctx, userID, date, checkIn, s.arrivalStatus(checkIn), s.accumulate()); err == nil {
			record, err = s.attendanceRepo.CompleteCheckOut(ctx, userID, date, now, hours, s.accumulate())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record check-out: %w", err)
	}
	if err := s.checkins.MarkOut(ctx, userID, now); err != nil {
		return nil, err
	}

	utils.LogInfo("User checked out", map[string]interface{}{"user_id": userID, "date": date, "hours_worked": hours})

	return &CheckInResult{
		Status: models.CheckInStatus{IsCheckedIn: false, LastCheckOut: &now},
		Record: record,
	}, nil
}

// Status returns the live marker with the elapsed time of a running shift.
func (s *attendanceService) Status(ctx context.Context, userID int64) (models.CheckInStatus, error) {
	status, err := s.checkins.Load(ctx, userID)
	if err != nil {
		return models.CheckInStatus{}, err
	}
	if status.IsCheckedIn && status.CheckInTime != nil {
		status.Elapsed = FormatElapsed(s.now().Sub(*status.CheckInTime))
	}
	return status, nil
}

func parseDateParam(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if _, err := time.Parse(dateLayout, v); err != nil {
		return nil, ErrInvalidDateFormat
	}
	return &v, nil
}

// ListRecords lists attendance rows. Staff only ever see their own.
func (s *attendanceService) ListRecords(ctx context.Context, actor *models.User, params ListAttendanceParams) ([]models.AttendanceRecord, int, error) {
	from, err := parseDateParam(params.From)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseDateParam(params.To)
	if err != nil {
		return nil, 0, err
	}

	filter := models.AttendanceFilter{UserID: params.UserID, From: from, To: to, Page: params.Page, PageSize: params.PageSize}
	if !actor.IsAdmin() {
		filter.UserID = &actor.ID
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, total, nil
}

// UpdateRecord applies an administrative correction to a row.
func (s *attendanceService) UpdateRecord(ctx context.Context, id int64, req UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	if req.Status != nil && !models.IsValidAttendanceStatus(*req.Status) {
		return nil, validationError("unknown attendance status %q", *req.Status)
	}
	record, err := s.attendanceRepo.UpdateRecord(ctx, id, req.Status, req.Note)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return record, nil
}
