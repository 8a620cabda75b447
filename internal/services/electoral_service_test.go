package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedRepo(t *testing.T, repo *fakeElectoralRepo) {
	t.Helper()
	ctx := context.Background()
	types := []*models.ElectoralEventType{
		{ExternalEventTypeID: 1, Description: "National Election"},
		{ExternalEventTypeID: 3, Description: "Local Government Election", IsMunicipalElection: true},
	}
	for _, et := range types {
		_, err := repo.UpsertElectoralEventType(ctx, et)
		require.NoError(t, err)
	}
	national, err := repo.GetElectoralEventTypeByExternalID(ctx, 1)
	require.NoError(t, err)
	local, err := repo.GetElectoralEventTypeByExternalID(ctx, 3)
	require.NoError(t, err)

	events := []*models.ElectoralEvent{
		{ExternalEventID: 900, EventTypeID: national.ID, ExternalEventTypeID: 1, Description: "NATIONAL ELECTION 2024", IsActive: true, ElectionYear: 2024},
		{ExternalEventID: 402, EventTypeID: local.ID, ExternalEventTypeID: 3, Description: "LOCAL GOVERNMENT ELECTION 2016", ElectionYear: 2016},
		{ExternalEventID: 1091, EventTypeID: local.ID, ExternalEventTypeID: 3, Description: "LOCAL GOVERNMENT ELECTION 2021", IsActive: true, ElectionYear: 2021},
	}
	for _, e := range events {
		_, err := repo.UpsertElectoralEvent(ctx, e)
		require.NoError(t, err)
	}
}

func newTestElectoralService(t *testing.T) (*ElectoralService, *fakeElectoralRepo) {
	t.Helper()
	repo := newFakeElectoralRepo()
	seedRepo(t, repo)
	provider := NewElectoralContextProvider(repo, time.Minute, zap.NewNop(), nil)
	return NewElectoralService(repo, provider), repo
}

func TestElectoralService_GetElectoralEventsByType_RejectsInvalidID(t *testing.T) {
	svc, _ := newTestElectoralService(t)

	for _, id := range []int{0, -1, math.MaxInt32 + 1} {
		_, err := svc.GetElectoralEventsByType(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidEventTypeID)
		assert.Equal(t, "Invalid event type ID", err.Error())
	}
}

func TestElectoralService_ReadPath(t *testing.T) {
	// ARRANGE
	svc, repo := newTestElectoralService(t)
	ctx := context.Background()

	// ACT
	current, err := svc.GetCurrentMunicipalElection(ctx)
	require.NoError(t, err)
	again, err := svc.GetCurrentMunicipalElection(ctx)
	require.NoError(t, err)
	history, err := svc.GetMunicipalElectionHistory(ctx)
	require.NoError(t, err)
	active, err := svc.GetActiveMunicipalElections(ctx)
	require.NoError(t, err)
	byType, err := svc.GetElectoralEventsByType(ctx, 1)
	require.NoError(t, err)
	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)

	// ASSERT
	require.NotNil(t, current)
	assert.Equal(t, 1091, current.ExternalEventID)
	assert.Same(t, current, again)
	assert.Equal(t, int32(1), repo.currentQueries.Load())

	require.Len(t, history, 2)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i-1].ElectionYear, history[i].ElectionYear)
	}

	require.Len(t, active, 1)
	assert.Equal(t, 1091, active[0].ExternalEventID)

	require.Len(t, byType, 1)
	assert.Equal(t, 900, byType[0].ExternalEventID)

	assert.Equal(t, 2, stats.TotalEventTypes)
	assert.Equal(t, 1, stats.MunicipalEventTypes)
	assert.True(t, stats.HasCurrentMunicipalElection)
}

func TestElectoralService_UnknownTypeIsEmpty(t *testing.T) {
	svc, _ := newTestElectoralService(t)

	events, err := svc.GetElectoralEventsByType(context.Background(), 77)

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
