package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"staff_sync_backend/internal/models"
	"staff_sync_backend/internal/repositories"

	"github.com/lib/pq"
)

func duplicateErr(constraint string) error {
	return fmt.Errorf("%w: test: %w", repositories.ErrDuplicateKey, &pq.Error{Code: "23505", Constraint: constraint})
}

// fakeUserRepo is an in-memory roster.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	// failStaffIDOnce makes the next CreateUser report a staff_id collision.
	failStaffIDOnce bool
	creates         int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]models.User{}}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, executor repositories.SQLExecutor, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.failStaffIDOnce {
		r.failStaffIDOnce = false
		return 0, duplicateErr(repositories.ConstraintUserStaffID)
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return 0, duplicateErr(repositories.ConstraintUserEmail)
		}
		if u.StaffID == user.StaffID {
			return 0, duplicateErr(repositories.ConstraintUserStaffID)
		}
	}
	r.nextID++
	u := *user
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *fakeUserRepo) FindUserByStaffIDAndEmail(ctx context.Context, staffID, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.StaffID == staffID && u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ID != exceptUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) StaffIDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, u := range r.users {
		if strings.HasPrefix(u.StaffID, prefix) {
			ids = append(ids, u.StaffID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, executor repositories.SQLExecutor, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) ListUsers(ctx context.Context, page, pageSize int, search *string) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out, len(out), nil
}

func (r *fakeUserRepo) DeleteUser(ctx context.Context, executor repositories.SQLExecutor, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

// fakeSessions mirrors cache.SessionStore without expiry.
type fakeSessions struct {
	slots map[int64]string
}

func newFakeSessions() *fakeSessions { return &fakeSessions{slots: map[int64]string{}} }

func (f *fakeSessions) Open(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	f.slots[userID] = tokenID
	return nil
}

func (f *fakeSessions) IsActive(ctx context.Context, userID int64, tokenID string) (bool, error) {
	current, ok := f.slots[userID]
	return ok && current == tokenID, nil
}

func (f *fakeSessions) Close(ctx context.Context, userID int64) error {
	delete(f.slots, userID)
	return nil
}

// fakeCheckins mirrors cache.CheckInStore.
type fakeCheckins struct {
	mu     sync.Mutex
	status map[int64]models.CheckInStatus
}

func newFakeCheckins() *fakeCheckins { return &fakeCheckins{status: map[int64]models.CheckInStatus{}} }

func (f *fakeCheckins) Load(ctx context.Context, userID int64) (models.CheckInStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[userID], nil
}

// MarkIn seeds a running shift.
func (f *fakeCheckins) MarkIn(ctx context.Context, userID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[userID] = models.CheckInStatus{IsCheckedIn: true, CheckInTime: &at}
	return nil
}

func (f *fakeCheckins) ClaimIn(ctx context.Context, userID int64, at time.Time) (models.CheckInStatus, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	previous := f.status[userID]
	if previous.IsCheckedIn {
		return previous, false, nil
	}
	f.status[userID] = models.CheckInStatus{IsCheckedIn: true, CheckInTime: &at}
	return previous, true, nil
}

func (f *fakeCheckins) ReleaseIn(ctx context.Context, userID int64, at time.Time, previous models.CheckInStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.status[userID]
	if !current.IsCheckedIn || current.CheckInTime == nil || !current.CheckInTime.Equal(at) {
		return nil
	}
	if previous.LastCheckOut == nil {
		delete(f.status, userID)
		return nil
	}
	f.status[userID] = models.CheckInStatus{LastCheckOut: previous.LastCheckOut}
	return nil
}

func (f *fakeCheckins) MarkOut(ctx context.Context, userID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[userID] = models.CheckInStatus{LastCheckOut: &at}
	return nil
}

func (f *fakeCheckins) Clear(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.status, userID)
	return nil
}

// fakeAttendanceRepo keeps one row per (user, date) like the unique constraint does.
type fakeAttendanceRepo struct {
	mu     sync.Mutex
	nextID int64
	// upsertErr, when set, fails every UpsertCheckIn.
	upsertErr error
	rows   map[string]*models.AttendanceRecord
	// listFilters records every filter passed to List.
	listFilters []models.AttendanceFilter
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: map[string]*models.AttendanceRecord{}}
}

func rowKey(userID int64, date string) string { return fmt.Sprintf("%d/%s", userID, date) }

func (r *fakeAttendanceRepo) UpsertCheckIn(ctx context.Context, userID int64, date string, at time.Time, status string, accumulate bool) (*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	rec, ok := r.rows[rowKey(userID, date)]
	if !ok {
		r.nextID++
		rec = &models.AttendanceRecord{ID: r.nextID, UserID: userID, Date: date, CheckIn: &at, Status: status}
		r.rows[rowKey(userID, date)] = rec
		cp := *rec
		return &cp, nil
	}
	if accumulate {
		if rec.CheckIn == nil {
			rec.CheckIn = &at
		}
		if rec.Status != models.StatusPresent && rec.Status != models.StatusLate {
			rec.Status = status
		}
	} else {
		rec.CheckIn = &at
		rec.HoursWorked = nil
		rec.Status = status
	}
	rec.CheckOut = nil
	cp := *rec
	return &cp, nil
}

func (r *fakeAttendanceRepo) CompleteCheckOut(ctx context.Context, userID int64, date string, at time.Time, cycleHours float64, accumulate bool) (*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[rowKey(userID, date)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	hours := cycleHours
	if accumulate && rec.HoursWorked != nil {
		hours = math.Round((*rec.HoursWorked+cycleHours)*100) / 100
	}
	rec.CheckOut = &at
	rec.Status = models.StatusCompleted
	rec.HoursWorked = &hours
	cp := *rec
	return &cp, nil
}

func (r *fakeAttendanceRepo) FindByUserAndDate(ctx context.Context, userID int64, date string) (*models.AttendanceRecord, error) {
	rec, ok := r.rows[rowKey(userID, date)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeAttendanceRepo) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	for _, rec := range r.rows {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	r.listFilters = append(r.listFilters, filter)
	out := []models.AttendanceRecord{}
	for _, rec := range r.rows {
		if filter.UserID != nil && rec.UserID != *filter.UserID {
			continue
		}
		if filter.From != nil && rec.Date < *filter.From {
			continue
		}
		if filter.To != nil && rec.Date > *filter.To {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeAttendanceRepo) UpdateRecord(ctx context.Context, id int64, status, note *string) (*models.AttendanceRecord, error) {
	for _, rec := range r.rows {
		if rec.ID == id {
			if status != nil {
				rec.Status = *status
			}
			if note != nil {
				rec.Note = note
			}
			cp := *rec
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// fakeCommentRepo stores comments in insertion order.
type fakeCommentRepo struct {
	comments []models.StaffComment
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.StaffComment) (*models.StaffComment, error) {
	c := *comment
	c.ID = int64(len(r.comments) + 1)
	c.Status = models.CommentPending
	r.comments = append(r.comments, c)
	return &c, nil
}

func (r *fakeCommentRepo) FindByID(ctx context.Context, id int64) (*models.StaffComment, error) {
	for _, c := range r.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCommentRepo) ListComments(ctx context.Context, userID *int64, status *string, page, pageSize int) ([]models.StaffComment, int, error) {
	out := []models.StaffComment{}
	for _, c := range r.comments {
		if userID != nil && c.UserID != *userID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *fakeCommentRepo) UpdateStatus(ctx context.Context, id int64, status string) (*models.StaffComment, error) {
	for i := range r.comments {
		if r.comments[i].ID == id {
			r.comments[i].Status = status
			c := r.comments[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// fakeReportRepo returns canned aggregates.
type fakeReportRepo struct {
	staff  int
	counts models.StatusCounts
	days   []models.AnalyticsDay
	from   string
	to     string
}

func (r *fakeReportRepo) CountStaff(ctx context.Context) (int, error) { return r.staff, nil }

func (r *fakeReportRepo) StatusCountsForDate(ctx context.Context, date string) (models.StatusCounts, error) {
	out := models.StatusCounts{}
	for k, v := range r.counts {
		out[k] = v
	}
	return out, nil
}

func (r *fakeReportRepo) StatusCountsPerDay(ctx context.Context, from, to string) ([]models.AnalyticsDay, error) {
	r.from, r.to = from, to
	return r.days, nil
}
