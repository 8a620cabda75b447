package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/repositories"
)

// fakeElectoralRepo mirrors the upsert and ordering semantics of the Postgres repository.
type fakeElectoralRepo struct {
	mu     sync.Mutex
	nextID int64
	types  map[int]*models.ElectoralEventType
	events map[int]*models.ElectoralEvent

	currentQueries atomic.Int32
}

func newFakeElectoralRepo() *fakeElectoralRepo {
	return &fakeElectoralRepo{
		types:  map[int]*models.ElectoralEventType{},
		events: map[int]*models.ElectoralEvent{},
	}
}

func (r *fakeElectoralRepo) UpsertElectoralEventType(_ context.Context, t *models.ElectoralEventType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[t.ExternalEventTypeID]; ok {
		if existing.Description == t.Description && existing.IsMunicipalElection == t.IsMunicipalElection {
			return false, nil
		}
		existing.Description = t.Description
		existing.IsMunicipalElection = t.IsMunicipalElection
		existing.UpdatedAt = time.Now()
		return true, nil
	}

	r.nextID++
	now := time.Now()
	stored := *t
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.types[t.ExternalEventTypeID] = &stored
	return true, nil
}

func (r *fakeElectoralRepo) UpsertElectoralEvent(_ context.Context, e *models.ElectoralEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.events[e.ExternalEventID]; ok {
		if existing.EventTypeID == e.EventTypeID && existing.Description == e.Description &&
			existing.IsActive == e.IsActive && existing.ElectionYear == e.ElectionYear {
			return false, nil
		}
		existing.EventTypeID = e.EventTypeID
		existing.ExternalEventTypeID = e.ExternalEventTypeID
		existing.Description = e.Description
		existing.IsActive = e.IsActive
		existing.ElectionYear = e.ElectionYear
		existing.UpdatedAt = time.Now()
		return true, nil
	}

	r.nextID++
	now := time.Now()
	stored := *e
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.events[e.ExternalEventID] = &stored
	return true, nil
}

func (r *fakeElectoralRepo) GetElectoralEventTypes(_ context.Context) ([]*models.ElectoralEventType, error) {
	return r.filterTypes(func(*models.ElectoralEventType) bool { return true }), nil
}

func (r *fakeElectoralRepo) GetMunicipalElectionTypes(_ context.Context) ([]*models.ElectoralEventType, error) {
	return r.filterTypes(func(t *models.ElectoralEventType) bool { return t.IsMunicipalElection }), nil
}

func (r *fakeElectoralRepo) GetElectoralEventTypeByExternalID(_ context.Context, id int) (*models.ElectoralEventType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.types[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeElectoralRepo) GetElectoralEventsByType(_ context.Context, id int) ([]*models.ElectoralEvent, error) {
	return r.filterEvents(func(e *models.ElectoralEvent, _ *models.ElectoralEventType) bool {
		return e.ExternalEventTypeID == id
	}), nil
}

func (r *fakeElectoralRepo) GetCurrentMunicipalElection(_ context.Context) (*models.ElectoralEvent, error) {
	r.currentQueries.Add(1)
	active := r.filterEvents(func(e *models.ElectoralEvent, t *models.ElectoralEventType) bool {
		return t.IsMunicipalElection && e.IsActive
	})
	if len(active) == 0 {
		return nil, nil
	}
	return active[0], nil
}

func (r *fakeElectoralRepo) GetActiveMunicipalElections(_ context.Context) ([]*models.ElectoralEvent, error) {
	return r.filterEvents(func(e *models.ElectoralEvent, t *models.ElectoralEventType) bool {
		return t.IsMunicipalElection && e.IsActive
	}), nil
}

func (r *fakeElectoralRepo) GetMunicipalElectionHistory(_ context.Context) ([]*models.ElectoralEvent, error) {
	return r.filterEvents(func(_ *models.ElectoralEvent, t *models.ElectoralEventType) bool {
		return t.IsMunicipalElection
	}), nil
}

func (r *fakeElectoralRepo) GetStatistics(ctx context.Context) (*models.ElectoralStatistics, error) {
	all, _ := r.GetElectoralEventTypes(ctx)
	municipal, _ := r.GetMunicipalElectionTypes(ctx)
	active, _ := r.GetActiveMunicipalElections(ctx)
	return &models.ElectoralStatistics{
		TotalEventTypes:             len(all),
		MunicipalEventTypes:         len(municipal),
		HasCurrentMunicipalElection: len(active) > 0,
	}, nil
}

func (r *fakeElectoralRepo) filterTypes(keep func(*models.ElectoralEventType) bool) []*models.ElectoralEventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*models.ElectoralEventType{}
	for _, t := range r.types {
		if keep(t) {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalEventTypeID < out[j].ExternalEventTypeID })
	return out
}

func (r *fakeElectoralRepo) filterEvents(keep func(*models.ElectoralEvent, *models.ElectoralEventType) bool) []*models.ElectoralEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*models.ElectoralEvent{}
	for _, e := range r.events {
		t := r.types[e.ExternalEventTypeID]
		if t != nil && keep(e, t) {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ElectionYear != out[j].ElectionYear {
			return out[i].ElectionYear > out[j].ElectionYear
		}
		return out[i].ExternalEventID > out[j].ExternalEventID
	})
	return out
}

type fakeSyncLogRepo struct {
	mu        sync.Mutex
	entries   []*models.SyncLogEntry
	insertErr error
}

func (r *fakeSyncLogRepo) Insert(_ context.Context, entry *models.SyncLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertErr != nil {
		err := r.insertErr
		r.insertErr = nil
		return err
	}
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakeSyncLogRepo) Finalize(_ context.Context, entry *models.SyncLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, stored := range r.entries {
		if stored.ID != entry.ID {
			continue
		}
		if stored.CompletedAt != nil {
			return repositories.ErrSyncLogFinalized
		}
		copied := *entry
		r.entries[i] = &copied
		return nil
	}
	return repositories.ErrSyncLogFinalized
}

func (r *fakeSyncLogRepo) GetRecent(_ context.Context, limit int) ([]*models.SyncLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.SyncLogEntry, len(r.entries))
	copy(out, r.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSyncLogRepo) byType(syncType models.SyncType) []*models.SyncLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.SyncLogEntry
	for _, e := range r.entries {
		if e.SyncType == syncType {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeSyncLogRepo) get(id uuid.UUID) *models.SyncLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate() {
	c.calls.Add(1)
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
