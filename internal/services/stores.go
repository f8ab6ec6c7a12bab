package services

import (
	"context"
	"errors"
	"time"

	"staff_sync_backend/internal/models"
)

// ErrValidation marks input rejected by a service before anything is written.
var ErrValidation = errors.New("validation failed")

// SessionStore holds the single live session slot per user.
// Implemented by cache.SessionStore.
type SessionStore interface {
	Open(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
	IsActive(ctx context.Context, userID int64, tokenID string) (bool, error)
	Close(ctx context.Context, userID int64) error
}

// CheckInStore holds the live check-in marker per user.
// Implemented by cache.CheckInStore.
type CheckInStore interface {
	Load(ctx context.Context, userID int64) (models.CheckInStatus, error)
	// ClaimIn atomically starts a shift unless one is running and returns the marker it replaced.
	ClaimIn(ctx context.Context, userID int64, at time.Time) (previous models.CheckInStatus, claimed bool, err error)
	ReleaseIn(ctx context.Context, userID int64, at time.Time, previous models.CheckInStatus) error
	MarkOut(ctx context.Context, userID int64, at time.Time) error
	Clear(ctx context.Context, userID int64) error
}
