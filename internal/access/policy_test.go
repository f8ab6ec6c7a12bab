package access

import (
	"testing"

	"staff_sync_backend/internal/models"
)

func TestDefaultPolicy_Admin(t *testing.T) {
	p := DefaultPolicy()
	for _, page := range AllPages {
		if !p.HasAccess(models.RoleAdmin, page) {
			t.Errorf("admin should access %s", page)
		}
	}
	if got := p.DefaultPage(models.RoleAdmin); got != PageDashboard {
		t.Errorf("Expected admin landing dashboard, got %s", got)
	}
}

func TestDefaultPolicy_Staff(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		page Page
		want bool
	}{
		{PageStaff, false},
		{PageAnalytics, false},
		{PageReports, false},
		{PageDashboard, false},
		{PageAttendance, true},
		{PageCalendar, true},
		{PageProfile, true},
		{Page("settings"), false},
	}
	for _, tt := range tests {
		if got := p.HasAccess(models.RoleStaff, tt.page); got != tt.want {
			t.Errorf("staff HasAccess(%s) = %v, want %v", tt.page, got, tt.want)
		}
	}
	if got := p.DefaultPage(models.RoleStaff); got != PageAttendance {
		t.Errorf("Expected staff landing attendance, got %s", got)
	}
}

func TestUserHasAccess_NoSession(t *testing.T) {
	p := DefaultPolicy()
	for _, page := range AllPages {
		if p.UserHasAccess(nil, page) {
			t.Errorf("no session must deny %s", page)
		}
	}
	if p.HasAccess("auditor", PageAttendance) {
		t.Error("unknown roles must be denied")
	}
}

func TestResolve(t *testing.T) {
	p := DefaultPolicy()

	d := p.Resolve(models.RoleStaff, PageReports)
	if d.Allowed || d.Page != PageAttendance || d.Notice != DeniedNotice {
		t.Errorf("Expected redirect to attendance with notice, got %+v", d)
	}

	d = p.Resolve(models.RoleAdmin, PageReports)
	if !d.Allowed || d.Page != PageReports || d.Notice != "" {
		t.Errorf("Expected admin allowed on reports, got %+v", d)
	}
}

func TestPages(t *testing.T) {
	p := DefaultPolicy()
	got := p.Pages(models.RoleStaff)
	want := []Page{PageAttendance, PageCalendar, PageProfile}
	if len(got) != len(want) {
		t.Fatalf("Pages(staff) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pages(staff)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if len(p.Pages(models.RoleAdmin)) != len(AllPages) {
		t.Error("admin should list every page")
	}
}

func TestNewPolicy_AddingPageTouchesOnlyTable(t *testing.T) {
	p := NewPolicy(map[string][]Page{"staff": {PageAttendance, Page("payslips")}}, nil)
	if !p.HasAccess("staff", Page("payslips")) {
		t.Error("pages listed in the table must be granted")
	}
	if got := p.DefaultPage("staff"); got != PageProfile {
		t.Errorf("Expected profile fallback landing, got %s", got)
	}
}
