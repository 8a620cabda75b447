package repositories

import (
	"context"
	"errors"

	"github.com/prudhvinik1/electoralsync/internal/models"
)

var ErrNotFound = errors.New("not found")

// ElectoralEventRepository is the read/write store for commission reference data.
// Every eventTypeID argument is the commission (external) event type id.
type ElectoralEventRepository interface {
	UpsertElectoralEventType(ctx context.Context, eventType *models.ElectoralEventType) (bool, error)
	UpsertElectoralEvent(ctx context.Context, event *models.ElectoralEvent) (bool, error)
	GetElectoralEventTypes(ctx context.Context) ([]*models.ElectoralEventType, error)
	GetMunicipalElectionTypes(ctx context.Context) ([]*models.ElectoralEventType, error)
	GetElectoralEventTypeByExternalID(ctx context.Context, externalEventTypeID int) (*models.ElectoralEventType, error)
	GetElectoralEventsByType(ctx context.Context, externalEventTypeID int) ([]*models.ElectoralEvent, error)
	GetCurrentMunicipalElection(ctx context.Context) (*models.ElectoralEvent, error)
	GetActiveMunicipalElections(ctx context.Context) ([]*models.ElectoralEvent, error)
	GetMunicipalElectionHistory(ctx context.Context) ([]*models.ElectoralEvent, error)
	GetStatistics(ctx context.Context) (*models.ElectoralStatistics, error)
}

type SyncLogRepository interface {
	Insert(ctx context.Context, entry *models.SyncLogEntry) error
	Finalize(ctx context.Context, entry *models.SyncLogEntry) error
	GetRecent(ctx context.Context, limit int) ([]*models.SyncLogEntry, error)
}

type TokenRepository interface {
	Get(ctx context.Context) (*models.AccessToken, error)
	Save(ctx context.Context, token *models.AccessToken) error
	Delete(ctx context.Context) error
}
