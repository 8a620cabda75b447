package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FullSyncer is the part of SyncEngine the scheduler drives.
type FullSyncer interface {
	TrySyncFull(ctx context.Context) (SyncResult, bool)
}

// Scheduler runs a full sync on a jittered interval until stopped.
type Scheduler struct {
	syncer   FullSyncer
	interval time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

func NewScheduler(syncer FullSyncer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger.Named("scheduler"),
		done:     make(chan struct{}),
	}
}

// nextInterval applies ±10% jitter so replicas do not sync in lockstep.
func (s *Scheduler) nextInterval() time.Duration {
	jitter := int64(s.interval / 10)
	if jitter <= 0 {
		return s.interval
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for scheduling jitter
	return s.interval + time.Duration(rand.Int64N(2*jitter)-jitter)
}

// Start runs an initial full sync, then one per interval. A tick is dropped while
// any full sync, scheduled or requested over HTTP, is running. Blocks until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()
	defer func() {
		close(s.done)
		s.logger.Info("Sync scheduler shut down")
	}()

	interval := s.nextInterval()
	s.logger.Info("Starting sync scheduler",
		zap.Duration("base_interval", s.interval),
		zap.Duration("actual_interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runOnce(runCtx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(runCtx)
			ticker.Reset(s.nextInterval())
		case <-runCtx.Done():
			return nil
		}
	}
}

// Stop cancels the loop and waits for an in-progress sync to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-s.done
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, ran := s.syncer.TrySyncFull(ctx)
	if !ran {
		s.logger.Info("Skipping scheduled full sync, one is already running")
		return
	}
	if !result.Success {
		s.logger.Warn("Scheduled full sync failed",
			zap.Int("records_processed", result.RecordsProcessed),
			zap.String("error", result.Error))
	}
}
