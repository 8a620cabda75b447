package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSyncer struct {
	calls atomic.Int32
	busy  atomic.Bool
}

func (c *countingSyncer) TrySyncFull(_ context.Context) (SyncResult, bool) {
	if c.busy.Load() {
		return SyncResult{}, false
	}
	n := c.calls.Add(1)
	return SyncResult{Success: n%2 == 0}, true
}

func TestScheduler_RunsUntilStopped(t *testing.T) {
	// ARRANGE
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, 10*time.Millisecond, zap.NewNop())
	done := make(chan error, 1)

	// ACT
	go func() { done <- s.Start(context.Background()) }()
	require.Eventually(t, func() bool { return syncer.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	// ASSERT
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	stopped := syncer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, syncer.calls.Load())
}

func TestScheduler_StopsWithContext(t *testing.T) {
	// ARRANGE
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// ACT
	go func() { done <- s.Start(ctx) }()
	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	// ASSERT
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_NextIntervalJitter(t *testing.T) {
	s := NewScheduler(&countingSyncer{}, 10*time.Minute, zap.NewNop())

	for range 100 {
		interval := s.nextInterval()
		assert.GreaterOrEqual(t, interval, 9*time.Minute)
		assert.Less(t, interval, 11*time.Minute)
	}
}

func TestScheduler_SkipsWhileFullSyncRunning(t *testing.T) {
	// ARRANGE
	syncer := &countingSyncer{}
	syncer.busy.Store(true)
	s := NewScheduler(syncer, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// ACT
	go func() { done <- s.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	skipped := syncer.calls.Load()
	syncer.busy.Store(false)
	require.Eventually(t, func() bool { return syncer.calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	// ASSERT
	assert.Equal(t, int32(0), skipped)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
