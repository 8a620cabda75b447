package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/repositories"
	"go.uber.org/zap"
)

const (
	MinSyncLogLimit = 1
	MaxSyncLogLimit = 100
)

// SyncRun is a sync attempt in progress. persisted is false when the running entry
// could not be written at start; FinishRun then appends the completed entry instead.
type SyncRun struct {
	Entry     *models.SyncLogEntry
	persisted bool
}

// SyncAuditLog is the append-only record of sync attempts.
type SyncAuditLog struct {
	repo   repositories.SyncLogRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewSyncAuditLog(repo repositories.SyncLogRepository, logger *zap.Logger) *SyncAuditLog {
	return &SyncAuditLog{
		repo:   repo,
		logger: logger.Named("sync_audit_log"),
		now:    time.Now,
	}
}

// RecordSyncRun appends a completed entry.
func (a *SyncAuditLog) RecordSyncRun(ctx context.Context, entry *models.SyncLogEntry) error {
	if !entry.Status.IsTerminal() || entry.CompletedAt == nil {
		return fmt.Errorf("sync log entry %s is %s: %w", entry.ID, entry.Status, models.ErrInvalidTransition)
	}
	if err := a.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// StartRun creates a running entry. Failing to persist it does not prevent the sync;
// the failure is logged and the entry is written when the run finishes.
func (a *SyncAuditLog) StartRun(ctx context.Context, syncType models.SyncType, eventTypeID *int) *SyncRun {
	entry := models.NewSyncLogEntry(syncType)
	entry.EventTypeID = eventTypeID
	// A fresh entry is always pending.
	_ = entry.Start(a.now())

	run := &SyncRun{Entry: entry}
	if err := a.repo.Insert(ctx, entry); err != nil {
		a.logger.Warn("Failed to persist running sync log entry",
			zap.String("sync_id", entry.ID.String()),
			zap.String("sync_type", string(syncType)),
			zap.Error(err))
		return run
	}
	run.persisted = true
	return run
}

// FinishRun moves the run to its terminal state and persists it. ctx cancellation is
// ignored so a cancelled sync is still recorded as failed.
func (a *SyncAuditLog) FinishRun(ctx context.Context, run *SyncRun, recordsProcessed int, runErr error) error {
	ctx = context.WithoutCancel(ctx)

	if err := run.Entry.Complete(a.now(), recordsProcessed, runErr); err != nil {
		return fmt.Errorf("failed to complete sync run %s: %w", run.Entry.ID, err)
	}

	if !run.persisted {
		return a.RecordSyncRun(ctx, run.Entry)
	}
	if err := a.repo.Finalize(ctx, run.Entry); err != nil {
		return fmt.Errorf("failed to finalize sync run %s: %w", run.Entry.ID, err)
	}
	return nil
}

// GetRecentSyncLogs returns up to limit entries, newest first. limit must be in [1, 100].
func (a *SyncAuditLog) GetRecentSyncLogs(ctx context.Context, limit int) ([]*models.SyncLogEntry, error) {
	if limit < MinSyncLogLimit || limit > MaxSyncLogLimit {
		return nil, ErrInvalidLimit
	}

	entries, err := a.repo.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sync logs: %w", err)
	}
	return entries, nil
}
