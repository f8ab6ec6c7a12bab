package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staff_sync_backend/internal/models"
	"staff_sync_backend/pkg/utils"

	"github.com/go-redis/redis/v8"
)

// Hash fields of a check-in marker.
const (
	fieldStatus       = "status"
	fieldCheckInTime  = "check_in_time"
	fieldCheckOutTime = "check_out_time"

	markerIn  = "in"
	markerOut = "out"

	// markerRetries bounds optimistic retries when another writer touches the marker mid-transaction.
	markerRetries = 3
)

// CheckInStore keeps each user's live CheckInStatus so a reloaded client resumes a running shift.
type CheckInStore struct {
	rdb *redis.Client
}

// NewCheckInStore creates a new check-in store
func NewCheckInStore(rdb *redis.Client) *CheckInStore {
	return &CheckInStore{rdb: rdb}
}

func checkInKey(userID int64) string {
	return fmt.Sprintf("%scheckin:%d", KeyPrefix, userID)
}

// Load reads the marker. Missing or malformed markers read as "not checked in".
func (s *CheckInStore) Load(ctx context.Context, userID int64) (models.CheckInStatus, error) {
	fields, err := s.rdb.HGetAll(ctx, checkInKey(userID)).Result()
	if err != nil {
		return models.CheckInStatus{}, fmt.Errorf("failed to read check-in status: %w", err)
	}
	return decodeMarker(userID, fields), nil
}

func decodeMarker(userID int64, fields map[string]string) models.CheckInStatus {
	var status models.CheckInStatus
	if out, ok := parseMarkerTime(userID, fields, fieldCheckOutTime); ok {
		status.LastCheckOut = &out
	}
	if fields[fieldStatus] != markerIn {
		return status
	}
	in, ok := parseMarkerTime(userID, fields, fieldCheckInTime)
	if !ok {
		utils.LogWarn("Ignoring check-in marker without a valid check-in time", map[string]interface{}{"user_id": userID})
		return status
	}
	status.IsCheckedIn = true
	status.CheckInTime = &in
	return status
}

func parseMarkerTime(userID int64, fields map[string]string, field string) (time.Time, bool) {
	raw, ok := fields[field]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		utils.LogWarn("Malformed check-in marker field", map[string]interface{}{"user_id": userID, "field": field, "value": raw})
		return time.Time{}, false
	}
	return t, true
}

// ClaimIn moves the marker to "in" unless a shift is already running.
// It returns the marker it replaced; claimed is false when the user is already checked in.
func (s *CheckInStore) ClaimIn(ctx context.Context, userID int64, at time.Time) (previous models.CheckInStatus, claimed bool, err error) {
	key := checkInKey(userID)
	for i := 0; i < markerRetries; i++ {
		claimed = false
		err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			fields, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			previous = decodeMarker(userID, fields)
			if previous.IsCheckedIn {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fieldStatus, markerIn, fieldCheckInTime, at.Format(time.RFC3339Nano))
				pipe.HDel(ctx, key, fieldCheckOutTime)
				return nil
			})
			if err == nil {
				claimed = true
			}
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return models.CheckInStatus{}, false, fmt.Errorf("failed to store check-in status: %w", err)
	}
	return previous, claimed, nil
}

// ReleaseIn undoes a claim made at the given time, putting back the marker it replaced.
// A marker that no longer holds that claim is left alone.
func (s *CheckInStore) ReleaseIn(ctx context.Context, userID int64, at time.Time, previous models.CheckInStatus) error {
	key := checkInKey(userID)
	claim := at.Format(time.RFC3339Nano)
	var err error
	for i := 0; i < markerRetries; i++ {
		err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			fields, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			if fields[fieldStatus] != markerIn || fields[fieldCheckInTime] != claim {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if previous.LastCheckOut == nil {
					pipe.Del(ctx, key)
					return nil
				}
				pipe.HSet(ctx, key, fieldStatus, markerOut, fieldCheckOutTime, previous.LastCheckOut.Format(time.RFC3339Nano))
				pipe.HDel(ctx, key, fieldCheckInTime)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to release check-in status: %w", err)
	}
	return nil
}

// MarkOut ends the running shift and remembers when.
func (s *CheckInStore) MarkOut(ctx context.Context, userID int64, at time.Time) error {
	err := s.rdb.HSet(ctx, checkInKey(userID), fieldStatus, markerOut, fieldCheckOutTime, at.Format(time.RFC3339Nano)).Err()
	if err != nil {
		return fmt.Errorf("failed to store check-out status: %w", err)
	}
	return nil
}

// Clear drops the marker entirely.
func (s *CheckInStore) Clear(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, checkInKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear check-in status: %w", err)
	}
	return nil
}
