package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a sync run is moved out of a terminal state
// or skips a state.
var ErrInvalidTransition = errors.New("invalid sync run state transition")

type SyncType string

const (
	SyncTypeTypes         SyncType = "types"
	SyncTypeEventsForType SyncType = "events_for_type"
	SyncTypeFull          SyncType = "full"
)

type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusSucceeded || s == SyncStatusFailed
}

type SyncLogEntry struct {
	ID               uuid.UUID  `json:"id"`
	SyncType         SyncType   `json:"sync_type"`
	EventTypeID      *int       `json:"event_type_id,omitempty"`
	Status           SyncStatus `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	RecordsProcessed int        `json:"records_processed"`
	DurationMs       int64      `json:"duration_ms"`
	Success          bool       `json:"success"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
}

// NewSyncLogEntry returns a pending entry with a fresh id.
func NewSyncLogEntry(syncType SyncType) *SyncLogEntry {
	return &SyncLogEntry{
		ID:       uuid.New(),
		SyncType: syncType,
		Status:   SyncStatusPending,
	}
}

// Start moves a pending entry to running.
func (e *SyncLogEntry) Start(now time.Time) error {
	if e.Status != SyncStatusPending {
		return ErrInvalidTransition
	}
	e.Status = SyncStatusRunning
	e.StartedAt = now
	return nil
}

// Complete moves a running entry to succeeded or failed depending on runErr.
func (e *SyncLogEntry) Complete(now time.Time, recordsProcessed int, runErr error) error {
	if e.Status != SyncStatusRunning {
		return ErrInvalidTransition
	}
	if recordsProcessed < 0 {
		recordsProcessed = 0
	}

	completedAt := now
	e.CompletedAt = &completedAt
	e.RecordsProcessed = recordsProcessed
	e.DurationMs = now.Sub(e.StartedAt).Milliseconds()

	if runErr != nil {
		msg := runErr.Error()
		e.ErrorMessage = &msg
		e.Success = false
		e.Status = SyncStatusFailed
		return nil
	}

	e.Success = true
	e.Status = SyncStatusSucceeded
	return nil
}
