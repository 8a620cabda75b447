package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/electoralapi"
	"github.com/prudhvinik1/electoralsync/internal/metrics"
	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SyncResult is the outcome of one sync operation. Failures are reported here rather
// than as errors so that full syncs can aggregate partial results.
type SyncResult struct {
	Success          bool   `json:"success"`
	RecordsProcessed int    `json:"records_processed"`
	DurationMs       int64  `json:"duration_ms"`
	Error            string `json:"error,omitempty"`
}

// ContextInvalidator is notified after event data changes.
type ContextInvalidator interface {
	Invalidate()
}

type SyncEngine struct {
	client      electoralapi.Client
	repo        repositories.ElectoralEventRepository
	audit       *SyncAuditLog
	invalidator ContextInvalidator
	concurrency int
	logger      *zap.Logger
	metrics     *metrics.Metrics

	fullRunning atomic.Int32
}

// NewSyncEngine creates a sync engine. concurrency bounds how many event types a full
// sync processes at once; values below 2 run them sequentially. invalidator may be nil.
func NewSyncEngine(
	client electoralapi.Client,
	repo repositories.ElectoralEventRepository,
	audit *SyncAuditLog,
	invalidator ContextInvalidator,
	concurrency int,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SyncEngine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SyncEngine{
		client:      client,
		repo:        repo,
		audit:       audit,
		invalidator: invalidator,
		concurrency: concurrency,
		logger:      logger.Named("sync_engine"),
		metrics:     m,
	}
}

// SyncElectoralEventTypes pulls the full type taxonomy and upserts it by commission id.
func (s *SyncEngine) SyncElectoralEventTypes(ctx context.Context) SyncResult {
	return s.run(ctx, models.SyncTypeTypes, nil, s.syncTypes)
}

// SyncElectoralEventsForType pulls and upserts the events of the type with commission
// id eventTypeID. Ids outside [1, math.MaxInt32] are rejected before anything is fetched or logged.
func (s *SyncEngine) SyncElectoralEventsForType(ctx context.Context, eventTypeID int) (SyncResult, error) {
	if !validExternalID(eventTypeID) {
		return SyncResult{}, ErrInvalidEventTypeID
	}
	return s.run(ctx, models.SyncTypeEventsForType, &eventTypeID, func(ctx context.Context) (int, error) {
		return s.syncEvents(ctx, eventTypeID)
	}), nil
}

// SyncFull syncs the type taxonomy, then the events of every municipal type. A failing
// step does not stop the remaining ones; the result fails if any step failed and only
// counts records of successful steps.
func (s *SyncEngine) SyncFull(ctx context.Context) SyncResult {
	s.fullRunning.Add(1)
	defer s.fullRunning.Add(-1)
	return s.run(ctx, models.SyncTypeFull, nil, s.syncAll)
}

// TrySyncFull runs a full sync unless one is already running in this process, in
// which case it returns false without logging a run.
func (s *SyncEngine) TrySyncFull(ctx context.Context) (SyncResult, bool) {
	if !s.fullRunning.CompareAndSwap(0, 1) {
		return SyncResult{}, false
	}
	defer s.fullRunning.Add(-1)
	return s.run(ctx, models.SyncTypeFull, nil, s.syncAll), true
}

func (s *SyncEngine) syncAll(ctx context.Context) (int, error) {
	var errs []error
	records := 0

	types := s.SyncElectoralEventTypes(ctx)
	if types.Success {
		records += types.RecordsProcessed
	} else {
		errs = append(errs, fmt.Errorf("types: %s", types.Error))
	}

	// Types that were synced earlier are still attempted if this types sync failed.
	municipal, err := s.repo.GetMunicipalElectionTypes(ctx)
	if err != nil {
		return records, errors.Join(append(errs, err)...)
	}

	results := make([]SyncResult, len(municipal))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, eventType := range municipal {
		g.Go(func() error {
			// Validated ids only come from the store, so this never returns an error.
			results[i], _ = s.SyncElectoralEventsForType(ctx, eventType.ExternalEventTypeID)
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		if res.Success {
			records += res.RecordsProcessed
			continue
		}
		errs = append(errs, fmt.Errorf("events for type %d: %s", municipal[i].ExternalEventTypeID, res.Error))
	}

	return records, errors.Join(errs...)
}

func (s *SyncEngine) syncTypes(ctx context.Context) (processed int, err error) {
	records, err := s.client.ListElectoralEventTypes(ctx)
	if err != nil {
		return 0, err
	}

	// A type that changed its municipal flag can change the current election.
	written := false
	defer func() {
		if written && s.invalidator != nil {
			s.invalidator.Invalidate()
		}
	}()

	for _, record := range records {
		if !validExternalID(record.ID) {
			s.logger.Warn("Skipping electoral event type with invalid id",
				zap.Int("external_event_type_id", record.ID),
				zap.String("description", record.Description))
			continue
		}

		changed, err := s.repo.UpsertElectoralEventType(ctx, record.ToModel())
		if err != nil {
			return processed, err
		}
		written = written || changed
		processed++
	}
	return processed, nil
}

func (s *SyncEngine) syncEvents(ctx context.Context, eventTypeID int) (processed int, err error) {
	eventType, err := s.repo.GetElectoralEventTypeByExternalID(ctx, eventTypeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, fmt.Errorf("electoral event type %d not synced", eventTypeID)
	}
	if err != nil {
		return 0, err
	}

	records, err := s.client.ListElectoralEvents(ctx, eventTypeID)
	if err != nil {
		return 0, err
	}

	// Committed upserts stay committed even if a later one fails.
	defer func() {
		if processed > 0 && s.invalidator != nil {
			s.invalidator.Invalidate()
		}
	}()

	for _, record := range records {
		event, ok := record.ToModel(eventType.ID, eventTypeID)
		if !ok || !validExternalID(record.ID) {
			s.logger.Warn("Skipping electoral event without valid id or election year",
				zap.Int("external_event_id", record.ID),
				zap.Int("external_event_type_id", eventTypeID),
				zap.String("description", record.Description))
			continue
		}

		if _, err := s.repo.UpsertElectoralEvent(ctx, event); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

func (s *SyncEngine) run(ctx context.Context, syncType models.SyncType, eventTypeID *int, fn func(context.Context) (int, error)) SyncResult {
	run := s.audit.StartRun(ctx, syncType, eventTypeID)
	fields := []zap.Field{
		zap.String("sync_id", run.Entry.ID.String()),
		zap.String("sync_type", string(syncType)),
	}
	if eventTypeID != nil {
		fields = append(fields, zap.Int("external_event_type_id", *eventTypeID))
	}
	s.logger.Info("Starting sync", fields...)

	records, runErr := fn(ctx)

	if err := s.audit.FinishRun(ctx, run, records, runErr); err != nil {
		s.logger.Error("Failed to record sync run", append(fields, zap.Error(err))...)
	}

	entry := run.Entry
	result := SyncResult{
		Success:          entry.Success,
		RecordsProcessed: entry.RecordsProcessed,
		DurationMs:       entry.DurationMs,
	}
	if entry.ErrorMessage != nil {
		result.Error = *entry.ErrorMessage
	}

	s.metrics.RecordSync(string(syncType), time.Duration(entry.DurationMs)*time.Millisecond, entry.RecordsProcessed, entry.Success)

	fields = append(fields,
		zap.Int("records_processed", result.RecordsProcessed),
		zap.Int64("duration_ms", result.DurationMs))
	if runErr != nil {
		s.logger.Error("Sync failed", append(fields, zap.Error(runErr))...)
	} else {
		s.logger.Info("Sync completed", fields...)
	}

	return result
}
