package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubElectionReader returns results in order; the last one repeats.
type stubElectionReader struct {
	mu      sync.Mutex
	results []*models.ElectoralEvent
	errs    []error
	delay   time.Duration
	calls   atomic.Int32

	// started and release let a test hold the first query open.
	started chan struct{}
	release chan struct{}
}

func (s *stubElectionReader) GetCurrentMunicipalElection(_ context.Context) (*models.ElectoralEvent, error) {
	n := int(s.calls.Add(1)) - 1

	if n == 0 && s.release != nil {
		close(s.started)
		<-s.release
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if n < len(s.errs) {
		err = s.errs[n]
	}
	if err != nil {
		return nil, err
	}
	if len(s.results) == 0 {
		return nil, nil
	}
	if n >= len(s.results) {
		n = len(s.results) - 1
	}
	return s.results[n], nil
}

func newTestProvider(reader CurrentElectionReader, ttl time.Duration) (*ElectoralContextProvider, *testClock) {
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	p := NewElectoralContextProvider(reader, ttl, zap.NewNop(), nil)
	p.now = clock.Now
	return p, clock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	election2021 = &models.ElectoralEvent{ExternalEventID: 1091, ElectionYear: 2021, IsActive: true}
	election2026 = &models.ElectoralEvent{ExternalEventID: 1200, ElectionYear: 2026, IsActive: true}
)

// TestElectoralContextProvider_ColdCacheSingleFlight checks five concurrent cold reads
// share one repository query and see the same snapshot.
func TestElectoralContextProvider_ColdCacheSingleFlight(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{results: []*models.ElectoralEvent{election2021}, delay: 50 * time.Millisecond}
	p, _ := newTestProvider(reader, time.Minute)

	const callers = 5
	var wg sync.WaitGroup
	snapshots := make([]*models.ElectionContext, callers)
	errs := make([]error, callers)

	// ACT
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshots[i], errs[i] = p.GetCurrentElectoralEventContext(context.Background())
		}(i)
	}
	wg.Wait()

	// ASSERT
	assert.Equal(t, int32(1), reader.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, snapshots[0], snapshots[i])
	}
	assert.Equal(t, 1091, snapshots[0].Event.ExternalEventID)
}

func TestElectoralContextProvider_ServesFreshSnapshot(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{results: []*models.ElectoralEvent{election2021}}
	p, clock := newTestProvider(reader, 5*time.Minute)
	ctx := context.Background()

	// ACT
	first, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)
	clock.Advance(4 * time.Minute)
	second, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)

	// ASSERT
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), reader.calls.Load())
}

func TestElectoralContextProvider_ExpiresAfterTTL(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{results: []*models.ElectoralEvent{election2021, election2026}}
	p, clock := newTestProvider(reader, 5*time.Minute)
	ctx := context.Background()

	_, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)

	// ACT
	snap, err := p.GetCurrentElectoralEventContext(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 1200, snap.Event.ExternalEventID)
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestElectoralContextProvider_RefreshReplacesSnapshot(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{results: []*models.ElectoralEvent{election2021, election2026}}
	p, _ := newTestProvider(reader, time.Hour)
	ctx := context.Background()

	before, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)

	// ACT
	refreshed, err := p.RefreshElectoralEventContext(ctx)
	require.NoError(t, err)
	after, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)

	// ASSERT
	assert.Equal(t, 1091, before.Event.ExternalEventID)
	assert.Equal(t, 1200, refreshed.Event.ExternalEventID)
	assert.Same(t, refreshed, after)
	assert.Equal(t, 1091, before.Event.ExternalEventID, "earlier snapshots are never mutated")
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestElectoralContextProvider_CachesMissingElection(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{}
	p, _ := newTestProvider(reader, time.Minute)
	ctx := context.Background()

	// ACT
	first, err := p.CurrentElection(ctx)
	require.NoError(t, err)
	second, err := p.CurrentElection(ctx)
	require.NoError(t, err)

	// ASSERT
	assert.Nil(t, first)
	assert.Nil(t, second)
	assert.Equal(t, int32(1), reader.calls.Load())
}

func TestElectoralContextProvider_ErrorsAreNotCached(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{
		results: []*models.ElectoralEvent{nil, election2021},
		errs:    []error{errors.New("connection refused")},
	}
	p, _ := newTestProvider(reader, time.Minute)
	ctx := context.Background()

	// ACT
	_, firstErr := p.GetCurrentElectoralEventContext(ctx)
	snap, err := p.GetCurrentElectoralEventContext(ctx)

	// ASSERT
	assert.ErrorContains(t, firstErr, "connection refused")
	require.NoError(t, err)
	assert.Equal(t, 1091, snap.Event.ExternalEventID)
}

func TestElectoralContextProvider_Invalidate(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{results: []*models.ElectoralEvent{election2021, election2026}}
	p, _ := newTestProvider(reader, time.Hour)
	ctx := context.Background()

	_, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)

	// ACT
	p.Invalidate()
	snap, err := p.GetCurrentElectoralEventContext(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 1200, snap.Event.ExternalEventID)
	assert.Equal(t, int32(2), reader.calls.Load())
}

// TestElectoralContextProvider_SlowMissDoesNotOverwriteRefresh checks a miss that
// started before a refresh cannot replace the refreshed snapshot with older data.
func TestElectoralContextProvider_SlowMissDoesNotOverwriteRefresh(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{
		results: []*models.ElectoralEvent{election2021, election2026},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	p, _ := newTestProvider(reader, time.Hour)
	ctx := context.Background()

	missDone := make(chan *models.ElectionContext, 1)
	go func() {
		snap, err := p.GetCurrentElectoralEventContext(ctx)
		assert.NoError(t, err)
		missDone <- snap
	}()
	<-reader.started

	// ACT
	refreshed, err := p.RefreshElectoralEventContext(ctx)
	require.NoError(t, err)
	close(reader.release)
	missed := <-missDone

	// ASSERT
	assert.Equal(t, 1200, refreshed.Event.ExternalEventID)
	assert.Same(t, refreshed, missed)
	current, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)
	assert.Same(t, refreshed, current)
}

func TestElectoralContextProvider_CallerCancellation(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{results: []*models.ElectoralEvent{election2021}, delay: 100 * time.Millisecond}
	p, _ := newTestProvider(reader, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// ACT
	_, err := p.GetCurrentElectoralEventContext(ctx)

	// ASSERT
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	snap, err := p.GetCurrentElectoralEventContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1091, snap.Event.ExternalEventID)
	assert.Equal(t, int32(1), reader.calls.Load())
}

// TestElectoralContextProvider_ReadAfterInvalidateSkipsOlderLoad checks a miss that
// starts after Invalidate queries again instead of joining a load issued before it.
func TestElectoralContextProvider_ReadAfterInvalidateSkipsOlderLoad(t *testing.T) {
	// ARRANGE
	reader := &stubElectionReader{
		results: []*models.ElectoralEvent{election2021, election2026},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	p, _ := newTestProvider(reader, time.Hour)
	ctx := context.Background()

	olderDone := make(chan *models.ElectionContext, 1)
	go func() {
		snap, err := p.GetCurrentElectoralEventContext(ctx)
		assert.NoError(t, err)
		olderDone <- snap
	}()
	<-reader.started

	// ACT
	p.Invalidate()
	after, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)
	close(reader.release)
	<-olderDone

	// ASSERT
	assert.Equal(t, 1200, after.Event.ExternalEventID)
	assert.Equal(t, int32(2), reader.calls.Load())
	current, err := p.GetCurrentElectoralEventContext(ctx)
	require.NoError(t, err)
	assert.Same(t, after, current, "the older load must not replace the newer snapshot")
}
