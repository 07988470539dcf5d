package models

import (
	"time"

	"github.com/google/uuid"
)

// generateUUID returns a fresh UUID string for primary keys.
func generateUUID() string {
	return uuid.New().String()
}

// DateOnly strips the time-of-day component, keeping the local calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
