package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/metrics"
	"github.com/prudhvinik1/electoralsync/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultContextTTL = 5 * time.Minute

	currentElectionFetchKey = "current-election-fetch"
)

// CurrentElectionReader is the single repository query the context provider caches.
type CurrentElectionReader interface {
	GetCurrentMunicipalElection(ctx context.Context) (*models.ElectoralEvent, error)
}

// ElectoralContextProvider caches the current municipal election for voter
// verification. Snapshots are immutable and replaced wholesale; concurrent misses
// share one repository query.
type ElectoralContextProvider struct {
	repo    CurrentElectionReader
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	snapshot atomic.Pointer[models.ElectionContext]
	group    singleflight.Group

	// Every load takes a ticket when it starts. A snapshot is only stored if no
	// later load, refresh or invalidation has been applied.
	tickets atomic.Uint64
	mu      sync.Mutex
	applied uint64
}

func NewElectoralContextProvider(repo CurrentElectionReader, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *ElectoralContextProvider {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &ElectoralContextProvider{
		repo:    repo,
		ttl:     ttl,
		logger:  logger.Named("electoral_context"),
		metrics: m,
		now:     time.Now,
	}
}

// GetCurrentElectoralEventContext returns the cached context while it is fresh and
// loads it otherwise. ctx only bounds how long this caller waits.
func (p *ElectoralContextProvider) GetCurrentElectoralEventContext(ctx context.Context) (*models.ElectionContext, error) {
	if snap := p.snapshot.Load(); p.fresh(snap) {
		p.metrics.RecordContextLookup(metrics.LookupHit)
		return snap, nil
	}
	p.metrics.RecordContextLookup(metrics.LookupMiss)

	ch := p.group.DoChan(currentElectionFetchKey, func() (any, error) {
		return p.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.ElectionContext), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CurrentElection is the voter verification entry point. A nil event means there is
// no current municipal election.
func (p *ElectoralContextProvider) CurrentElection(ctx context.Context) (*models.ElectoralEvent, error) {
	snap, err := p.GetCurrentElectoralEventContext(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Event, nil
}

// RefreshElectoralEventContext re-queries the repository regardless of cache state and
// replaces the snapshot. Misses that start afterwards do not join an older load.
func (p *ElectoralContextProvider) RefreshElectoralEventContext(ctx context.Context) (*models.ElectionContext, error) {
	p.metrics.RecordContextLookup(metrics.LookupRefresh)
	p.group.Forget(currentElectionFetchKey)
	return p.load(ctx)
}

// Invalidate drops the snapshot. Loads already in flight are not stored, and later
// misses start a new query instead of waiting on them.
func (p *ElectoralContextProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.applied = p.tickets.Add(1)
	p.snapshot.Store(nil)
	p.group.Forget(currentElectionFetchKey)
	p.logger.Debug("Election context invalidated")
}

func (p *ElectoralContextProvider) load(ctx context.Context) (*models.ElectionContext, error) {
	ticket := p.tickets.Add(1)

	event, err := p.repo.GetCurrentMunicipalElection(ctx)
	if err != nil {
		p.logger.Error("Failed to load current municipal election", zap.Error(err))
		return nil, fmt.Errorf("failed to load election context: %w", err)
	}

	snap := &models.ElectionContext{Event: event, FetchedAt: p.now()}
	return p.store(ticket, snap), nil
}

// store applies snap unless something newer was applied while it loaded, in which
// case the newer snapshot (if any) is returned instead.
func (p *ElectoralContextProvider) store(ticket uint64, snap *models.ElectionContext) *models.ElectionContext {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket < p.applied {
		if current := p.snapshot.Load(); current != nil {
			return current
		}
		return snap
	}

	p.applied = ticket
	p.snapshot.Store(snap)
	return snap
}

func (p *ElectoralContextProvider) fresh(snap *models.ElectionContext) bool {
	return snap != nil && p.now().Sub(snap.FetchedAt) < p.ttl
}
