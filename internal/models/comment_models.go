package models

import "time"

// Comment types a staff member can file.
const (
	CommentAbsence        = "absence"
	CommentLate           = "late"
	CommentEarlyDeparture = "early-departure"
	CommentOther          = "other"
)

// Comment review states.
const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
)

// StaffComment is a free-form note about a day's attendance, reviewed by an admin.
type StaffComment struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Date        string    `json:"date" db:"comment_date"` // YYYY-MM-DD
	Type        string    `json:"type" db:"type"`
	Comment     string    `json:"comment" db:"comment"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"timestamp" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	UserName    string    `json:"user_name"`
	UserStaffID string    `json:"user_staff_id"`
}
