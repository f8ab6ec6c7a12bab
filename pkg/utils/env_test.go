package utils

import "testing"

func TestGetenv(t *testing.T) {
	t.Setenv("STAFF_SYNC_TEST_VALUE", "  hello ")
	if got := Getenv("STAFF_SYNC_TEST_VALUE", "x"); got != "hello" {
		t.Errorf("Expected trimmed value, got %q", got)
	}
	t.Setenv("STAFF_SYNC_TEST_VALUE", "")
	if got := Getenv("STAFF_SYNC_TEST_VALUE", "x"); got != "x" {
		t.Errorf("Expected fallback, got %q", got)
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("STAFF_SYNC_TEST_INT", "42")
	n, err := GetenvInt("STAFF_SYNC_TEST_INT", 1)
	if err != nil || n != 42 {
		t.Errorf("Expected 42, got %d (%v)", n, err)
	}

	t.Setenv("STAFF_SYNC_TEST_INT", "forty")
	if _, err := GetenvInt("STAFF_SYNC_TEST_INT", 1); err == nil {
		t.Error("Expected error for non-integer value")
	}
}

func TestGetenvBool(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "YES": true, "0": false, "false": false, "no": false}
	for raw, want := range cases {
		t.Setenv("STAFF_SYNC_TEST_BOOL", raw)
		got, err := GetenvBool("STAFF_SYNC_TEST_BOOL", !want)
		if err != nil {
			t.Fatalf("GetenvBool(%q) failed: %v", raw, err)
		}
		if got != want {
			t.Errorf("GetenvBool(%q) = %v, want %v", raw, got, want)
		}
	}

	t.Setenv("STAFF_SYNC_TEST_BOOL", "maybe")
	if _, err := GetenvBool("STAFF_SYNC_TEST_BOOL", false); err == nil {
		t.Error("Expected error for invalid boolean")
	}
}
