package models

// StatusCounts maps an attendance status (plus "unmarked") to a head count.
type StatusCounts map[string]int

// DashboardSummary is the per-day snapshot shown on the admin dashboard.
type DashboardSummary struct {
	Date       string       `json:"date"`
	TotalStaff int          `json:"total_staff"`
	Counts     StatusCounts `json:"counts"`
	Unmarked   int          `json:"unmarked"`
}

// AttendanceReport is a filtered list of rows with totals.
type AttendanceReport struct {
	From       string             `json:"from"`
	To         string             `json:"to"`
	Records    []AttendanceRecord `json:"records"`
	Counts     StatusCounts       `json:"counts"`
	TotalHours float64            `json:"total_hours"`
}

// AnalyticsDay holds the status distribution of a single date.
type AnalyticsDay struct {
	Date   string       `json:"date"`
	Counts StatusCounts `json:"counts"`
}

// ReportRequestParams holds common parameters for requesting reports.
type ReportRequestParams struct {
	StartDate string `form:"from"` // YYYY-MM-DD
	EndDate   string `form:"to"`   // YYYY-MM-DD
	UserID    *int64 `form:"user_id"`
}
