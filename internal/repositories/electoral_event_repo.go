package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/electoralsync/internal/models"
)

const eventColumns = `e.id, e.external_event_id, e.event_type_id, t.external_event_type_id,
	                 e.description, e.is_active, e.election_year, e.created_at, e.updated_at`

const eventOrder = `ORDER BY e.election_year DESC, e.external_event_id DESC`

type PostgresElectoralEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresElectoralEventRepository(pool *pgxpool.Pool) *PostgresElectoralEventRepository {
	return &PostgresElectoralEventRepository{pool: pool}
}

// UpsertElectoralEventType inserts the type or updates it in place, keyed on
// external_event_type_id. The local id is never reassigned. Rows whose values are
// unchanged are left untouched so repeated syncs do not bump updated_at.
// The returned bool reports whether a row was written.
func (r *PostgresElectoralEventRepository) UpsertElectoralEventType(ctx context.Context, eventType *models.ElectoralEventType) (bool, error) {
	query := `INSERT INTO electoral_event_types (external_event_type_id, description, is_municipal_election)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (external_event_type_id) DO UPDATE
	          SET description = EXCLUDED.description,
	              is_municipal_election = EXCLUDED.is_municipal_election,
	              updated_at = NOW()
	          WHERE electoral_event_types.description IS DISTINCT FROM EXCLUDED.description
	             OR electoral_event_types.is_municipal_election IS DISTINCT FROM EXCLUDED.is_municipal_election`

	result, err := r.pool.Exec(ctx, query,
		eventType.ExternalEventTypeID,
		eventType.Description,
		eventType.IsMunicipalElection,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert electoral event type %d: %w", eventType.ExternalEventTypeID, err)
	}
	return result.RowsAffected() > 0, nil
}

// UpsertElectoralEvent inserts the event or updates it in place, keyed on
// external_event_id. EventTypeID must hold the local type id.
func (r *PostgresElectoralEventRepository) UpsertElectoralEvent(ctx context.Context, event *models.ElectoralEvent) (bool, error) {
	query := `INSERT INTO electoral_events (external_event_id, event_type_id, description, is_active, election_year)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (external_event_id) DO UPDATE
	          SET event_type_id = EXCLUDED.event_type_id,
	              description = EXCLUDED.description,
	              is_active = EXCLUDED.is_active,
	              election_year = EXCLUDED.election_year,
	              updated_at = NOW()
	          WHERE electoral_events.event_type_id IS DISTINCT FROM EXCLUDED.event_type_id
	             OR electoral_events.description IS DISTINCT FROM EXCLUDED.description
	             OR electoral_events.is_active IS DISTINCT FROM EXCLUDED.is_active
	             OR electoral_events.election_year IS DISTINCT FROM EXCLUDED.election_year`

	result, err := r.pool.Exec(ctx, query,
		event.ExternalEventID,
		event.EventTypeID,
		event.Description,
		event.IsActive,
		event.ElectionYear,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert electoral event %d: %w", event.ExternalEventID, err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *PostgresElectoralEventRepository) GetElectoralEventTypes(ctx context.Context) ([]*models.ElectoralEventType, error) {
	query := `SELECT id, external_event_type_id, description, is_municipal_election, created_at, updated_at
	          FROM electoral_event_types
	          ORDER BY external_event_type_id ASC`

	return r.queryTypes(ctx, query)
}

func (r *PostgresElectoralEventRepository) GetMunicipalElectionTypes(ctx context.Context) ([]*models.ElectoralEventType, error) {
	query := `SELECT id, external_event_type_id, description, is_municipal_election, created_at, updated_at
	          FROM electoral_event_types
	          WHERE is_municipal_election = TRUE
	          ORDER BY external_event_type_id ASC`

	return r.queryTypes(ctx, query)
}

func (r *PostgresElectoralEventRepository) GetElectoralEventTypeByExternalID(ctx context.Context, externalEventTypeID int) (*models.ElectoralEventType, error) {
	query := `SELECT id, external_event_type_id, description, is_municipal_election, created_at, updated_at
	          FROM electoral_event_types
	          WHERE external_event_type_id = $1`

	var eventType models.ElectoralEventType
	err := r.pool.QueryRow(ctx, query, externalEventTypeID).Scan(
		&eventType.ID,
		&eventType.ExternalEventTypeID,
		&eventType.Description,
		&eventType.IsMunicipalElection,
		&eventType.CreatedAt,
		&eventType.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get electoral event type: %w", err)
	}
	return &eventType, nil
}

// GetElectoralEventsByType returns the events of the type with the given commission id.
// Callers validate externalEventTypeID > 0.
func (r *PostgresElectoralEventRepository) GetElectoralEventsByType(ctx context.Context, externalEventTypeID int) ([]*models.ElectoralEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM electoral_events e
	          JOIN electoral_event_types t ON t.id = e.event_type_id
	          WHERE t.external_event_type_id = $1
	          ` + eventOrder

	return r.queryEvents(ctx, query, externalEventTypeID)
}

// GetCurrentMunicipalElection returns the active municipal event with the highest
// election year, then the highest external id. nil means no match.
func (r *PostgresElectoralEventRepository) GetCurrentMunicipalElection(ctx context.Context) (*models.ElectoralEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM electoral_events e
	          JOIN electoral_event_types t ON t.id = e.event_type_id
	          WHERE t.is_municipal_election = TRUE AND e.is_active = TRUE
	          ` + eventOrder + `
	          LIMIT 1`

	var event models.ElectoralEvent
	err := scanEvent(r.pool.QueryRow(ctx, query), &event)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current municipal election: %w", err)
	}
	return &event, nil
}

func (r *PostgresElectoralEventRepository) GetActiveMunicipalElections(ctx context.Context) ([]*models.ElectoralEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM electoral_events e
	          JOIN electoral_event_types t ON t.id = e.event_type_id
	          WHERE t.is_municipal_election = TRUE AND e.is_active = TRUE
	          ` + eventOrder

	return r.queryEvents(ctx, query)
}

func (r *PostgresElectoralEventRepository) GetMunicipalElectionHistory(ctx context.Context) ([]*models.ElectoralEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM electoral_events e
	          JOIN electoral_event_types t ON t.id = e.event_type_id
	          WHERE t.is_municipal_election = TRUE
	          ` + eventOrder

	return r.queryEvents(ctx, query)
}

// GetStatistics counts types and checks for a current municipal election in one round trip.
func (r *PostgresElectoralEventRepository) GetStatistics(ctx context.Context) (*models.ElectoralStatistics, error) {
	query := `SELECT
	              (SELECT COUNT(*) FROM electoral_event_types),
	              (SELECT COUNT(*) FROM electoral_event_types WHERE is_municipal_election = TRUE),
	              EXISTS (SELECT 1
	                      FROM electoral_events e
	                      JOIN electoral_event_types t ON t.id = e.event_type_id
	                      WHERE t.is_municipal_election = TRUE AND e.is_active = TRUE)`

	var stats models.ElectoralStatistics
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalEventTypes,
		&stats.MunicipalEventTypes,
		&stats.HasCurrentMunicipalElection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get electoral statistics: %w", err)
	}
	return &stats, nil
}

func (r *PostgresElectoralEventRepository) queryTypes(ctx context.Context, query string, args ...any) ([]*models.ElectoralEventType, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query electoral event types: %w", err)
	}
	defer rows.Close()

	types := []*models.ElectoralEventType{}
	for rows.Next() {
		var eventType models.ElectoralEventType
		err := rows.Scan(
			&eventType.ID,
			&eventType.ExternalEventTypeID,
			&eventType.Description,
			&eventType.IsMunicipalElection,
			&eventType.CreatedAt,
			&eventType.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan electoral event type: %w", err)
		}
		types = append(types, &eventType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating electoral event types: %w", err)
	}

	return types, nil
}

func (r *PostgresElectoralEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.ElectoralEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query electoral events: %w", err)
	}
	defer rows.Close()

	events := []*models.ElectoralEvent{}
	for rows.Next() {
		var event models.ElectoralEvent
		if err := scanEvent(rows, &event); err != nil {
			return nil, fmt.Errorf("failed to scan electoral event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating electoral events: %w", err)
	}

	return events, nil
}

func scanEvent(row pgx.Row, event *models.ElectoralEvent) error {
	return row.Scan(
		&event.ID,
		&event.ExternalEventID,
		&event.EventTypeID,
		&event.ExternalEventTypeID,
		&event.Description,
		&event.IsActive,
		&event.ElectionYear,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}
