package models

import "time"

// Roles known to the access guard.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents a roster entry: an administrator or a staff member.
type User struct {
	ID           int64     `json:"id" db:"id"`
	StaffID      string    `json:"staff_id" db:"staff_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	Department   *string   `json:"department,omitempty" db:"department"`
	Position     *string   `json:"position,omitempty" db:"position"`
	DOB          *string   `json:"dob,omitempty" db:"dob"` // YYYY-MM-DD
	Gender       *string   `json:"gender,omitempty" db:"gender"`
	PhoneNumber  *string   `json:"phone_number,omitempty" db:"phone_number"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CheckInStatus is the live clock-in marker of one user.
// CheckInTime is set iff IsCheckedIn.
type CheckInStatus struct {
	IsCheckedIn  bool       `json:"is_checked_in"`
	CheckInTime  *time.Time `json:"check_in_time"`
	LastCheckOut *time.Time `json:"last_check_out,omitempty"`
	Elapsed      string     `json:"elapsed,omitempty"` // HH:MM:SS while checked in
}
