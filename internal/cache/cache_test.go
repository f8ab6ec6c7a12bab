package cache

import (
	"context"
	"testing"
	"time"

	"staff_sync_backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionStore_SingleActiveSession(t *testing.T) {
	_, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	if err := store.Open(ctx, 1, "first", time.Hour); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if ok, _ := store.IsActive(ctx, 1, "first"); !ok {
		t.Error("Expected first token to be active")
	}

	if err := store.Open(ctx, 1, "second", time.Hour); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if ok, _ := store.IsActive(ctx, 1, "first"); ok {
		t.Error("A newer login must replace the earlier session")
	}
	if ok, _ := store.IsActive(ctx, 1, "second"); !ok {
		t.Error("Expected second token to be active")
	}

	if err := store.Close(ctx, 1); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if ok, _ := store.IsActive(ctx, 1, "second"); ok {
		t.Error("Expected no active session after Close")
	}
	if err := store.Close(ctx, 1); err != nil {
		t.Errorf("Closing an empty slot should succeed: %v", err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	if err := store.Open(ctx, 2, "tok", time.Minute); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if ok, _ := store.IsActive(ctx, 2, "tok"); ok {
		t.Error("Expected session to expire with its TTL")
	}
}

func TestCheckInStore_RoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	store := NewCheckInStore(client)
	ctx := context.Background()

	status, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if status.IsCheckedIn || status.CheckInTime != nil {
		t.Error("Expected empty status for unknown user")
	}

	in := time.Date(2025, 4, 12, 8, 5, 0, 0, time.UTC)
	if _, claimed, err := store.ClaimIn(ctx, 5, in); err != nil || !claimed {
		t.Fatalf("ClaimIn() = %v, %v, want claimed", claimed, err)
	}
	status, _ = store.Load(ctx, 5)
	if !status.IsCheckedIn || status.CheckInTime == nil || !status.CheckInTime.Equal(in) {
		t.Errorf("Unexpected status after ClaimIn: %+v", status)
	}

	out := in.Add(8*time.Hour + 15*time.Minute)
	if err := store.MarkOut(ctx, 5, out); err != nil {
		t.Fatalf("MarkOut() failed: %v", err)
	}
	status, _ = store.Load(ctx, 5)
	if status.IsCheckedIn || status.CheckInTime != nil {
		t.Errorf("CheckInTime must be nil when not checked in: %+v", status)
	}
	if status.LastCheckOut == nil || !status.LastCheckOut.Equal(out) {
		t.Errorf("Expected last check-out %s, got %v", out, status.LastCheckOut)
	}

	if err := store.Clear(ctx, 5); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	status, _ = store.Load(ctx, 5)
	if status.IsCheckedIn || status.LastCheckOut != nil {
		t.Errorf("Expected empty status after Clear: %+v", status)
	}
}

func TestCheckInStore_MalformedMarker(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCheckInStore(client)

	mr.HSet(checkInKey(9), fieldStatus, markerIn)
	mr.HSet(checkInKey(9), fieldCheckInTime, "yesterday-ish")

	status, err := store.Load(context.Background(), 9)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if status.IsCheckedIn {
		t.Error("A marker without a parsable time must read as not checked in")
	}
}

func TestCheckInStore_ClaimInOnce(t *testing.T) {
	_, client := newTestClient(t)
	store := NewCheckInStore(client)
	ctx := context.Background()

	first := time.Date(2025, 4, 12, 8, 0, 0, 0, time.UTC)
	if _, claimed, err := store.ClaimIn(ctx, 3, first); err != nil || !claimed {
		t.Fatalf("first ClaimIn() = %v, %v, want claimed", claimed, err)
	}

	previous, claimed, err := store.ClaimIn(ctx, 3, first.Add(time.Minute))
	if err != nil {
		t.Fatalf("second ClaimIn() failed: %v", err)
	}
	if claimed {
		t.Error("A running shift must not be claimed twice")
	}
	if previous.CheckInTime == nil || !previous.CheckInTime.Equal(first) {
		t.Errorf("Expected the running shift from %s, got %+v", first, previous)
	}

	status, _ := store.Load(ctx, 3)
	if !status.CheckInTime.Equal(first) {
		t.Errorf("Rejected claim overwrote the check-in time: %s", status.CheckInTime)
	}
}

func TestCheckInStore_ReleaseIn(t *testing.T) {
	_, client := newTestClient(t)
	store := NewCheckInStore(client)
	ctx := context.Background()

	lastOut := time.Date(2025, 4, 11, 17, 0, 0, 0, time.UTC)
	if err := store.MarkOut(ctx, 4, lastOut); err != nil {
		t.Fatalf("MarkOut() failed: %v", err)
	}

	in := time.Date(2025, 4, 12, 8, 0, 0, 0, time.UTC)
	previous, claimed, err := store.ClaimIn(ctx, 4, in)
	if err != nil || !claimed {
		t.Fatalf("ClaimIn() = %v, %v, want claimed", claimed, err)
	}

	// A release for a different claim leaves the marker alone.
	if err := store.ReleaseIn(ctx, 4, in.Add(time.Second), previous); err != nil {
		t.Fatalf("ReleaseIn() failed: %v", err)
	}
	if status, _ := store.Load(ctx, 4); !status.IsCheckedIn {
		t.Error("Release of another claim must not end the running shift")
	}

	if err := store.ReleaseIn(ctx, 4, in, previous); err != nil {
		t.Fatalf("ReleaseIn() failed: %v", err)
	}
	status, _ := store.Load(ctx, 4)
	if status.IsCheckedIn || status.CheckInTime != nil {
		t.Errorf("Expected not checked in after release: %+v", status)
	}
	if status.LastCheckOut == nil || !status.LastCheckOut.Equal(lastOut) {
		t.Errorf("Expected last check-out %s restored, got %v", lastOut, status.LastCheckOut)
	}

	if _, claimed, _ := store.ClaimIn(ctx, 5, in); !claimed {
		t.Fatal("ClaimIn() for a fresh user should succeed")
	}
	if err := store.ReleaseIn(ctx, 5, in, models.CheckInStatus{}); err != nil {
		t.Fatalf("ReleaseIn() failed: %v", err)
	}
	if n, _ := client.Exists(ctx, checkInKey(5)).Result(); n != 0 {
		t.Error("Releasing a first-ever claim should drop the marker")
	}
}
