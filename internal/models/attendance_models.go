package models

import "time"

// Attendance statuses.
const (
	StatusPresent   = "present"
	StatusAbsent    = "absent"
	StatusLate      = "late"
	StatusLeave     = "leave"
	StatusCompleted = "completed"
)

// AttendanceStatuses lists every valid status in display order.
var AttendanceStatuses = []string{StatusPresent, StatusLate, StatusAbsent, StatusLeave, StatusCompleted}

// IsValidAttendanceStatus reports whether s is a known status.
func IsValidAttendanceStatus(s string) bool {
	for _, known := range AttendanceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AttendanceRecord is the single row per (user, calendar date).
type AttendanceRecord struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Date        string     `json:"date" db:"work_date"` // YYYY-MM-DD
	CheckIn     *time.Time `json:"check_in,omitempty" db:"check_in"`
	CheckOut    *time.Time `json:"check_out,omitempty" db:"check_out"`
	Status      string     `json:"status" db:"status"`
	HoursWorked *float64   `json:"hours_worked,omitempty" db:"hours_worked"`
	Note        *string    `json:"note,omitempty" db:"note"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Filled by joined reads.
	UserName    *string `json:"user_name,omitempty"`
	UserStaffID *string `json:"user_staff_id,omitempty"`
}

// AttendanceFilter narrows attendance listings. Dates are YYYY-MM-DD, inclusive.
type AttendanceFilter struct {
	UserID   *int64
	From     *string
	To       *string
	Page     int
	PageSize int
}
