// Package access maps roles to the application pages they may open.
package access

import (
	"staff_sync_backend/internal/models"
)

// Page names an application page.
type Page string

const (
	PageDashboard  Page = "dashboard"
	PageAttendance Page = "attendance"
	PageStaff      Page = "staff"
	PageCalendar   Page = "calendar"
	PageReports    Page = "reports"
	PageAnalytics  Page = "analytics"
	PageProfile    Page = "profile"
)

// AllPages lists every page in menu order.
var AllPages = []Page{PageDashboard, PageAttendance, PageStaff, PageCalendar, PageReports, PageAnalytics, PageProfile}

// DeniedNotice is shown when a request is redirected away from a page.
const DeniedNotice = "You don't have access to that page"

// Policy is a capability table: role -> permitted pages, plus each role's landing page.
type Policy struct {
	pages   map[string]map[Page]bool
	landing map[string]Page
}

// Decision is the outcome of resolving a page request.
type Decision struct {
	Requested Page   `json:"requested"`
	Page      Page   `json:"page"`
	Allowed   bool   `json:"allowed"`
	Notice    string `json:"notice,omitempty"`
}

// NewPolicy builds a policy from an explicit table.
func NewPolicy(pages map[string][]Page, landing map[string]Page) *Policy {
	p := &Policy{pages: make(map[string]map[Page]bool, len(pages)), landing: landing}
	for role, list := range pages {
		set := make(map[Page]bool, len(list))
		for _, page := range list {
			set[page] = true
		}
		p.pages[role] = set
	}
	return p
}

// DefaultPolicy is the shipped table: admins see everything, staff see their own workspace.
func DefaultPolicy() *Policy {
	return NewPolicy(
		map[string][]Page{
			models.RoleAdmin: AllPages,
			models.RoleStaff: {PageAttendance, PageCalendar, PageProfile},
		},
		map[string]Page{
			models.RoleAdmin: PageDashboard,
			models.RoleStaff: PageAttendance,
		},
	)
}

// HasAccess reports whether role may open page. Unknown roles and pages are denied.
func (p *Policy) HasAccess(role string, page Page) bool {
	return p.pages[role][page]
}

// UserHasAccess is HasAccess for a session user; no session means no access.
func (p *Policy) UserHasAccess(user *models.User, page Page) bool {
	if user == nil {
		return false
	}
	return p.HasAccess(user.Role, page)
}

// DefaultPage is where a role lands after login and after a denied request.
func (p *Policy) DefaultPage(role string) Page {
	if page, ok := p.landing[role]; ok {
		return page
	}
	return PageProfile
}

// Pages lists the pages role may open, in menu order.
func (p *Policy) Pages(role string) []Page {
	out := []Page{}
	for _, page := range AllPages {
		if p.HasAccess(role, page) {
			out = append(out, page)
		}
	}
	return out
}

// Resolve decides where a request for page should end up.
func (p *Policy) Resolve(role string, page Page) Decision {
	if p.HasAccess(role, page) {
		return Decision{Requested: page, Page: page, Allowed: true}
	}
	return Decision{Requested: page, Page: p.DefaultPage(role), Allowed: false, Notice: DeniedNotice}
}
