package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/electoralsync/internal/models"
)

// ErrSyncLogFinalized is returned when finishing a run whose log entry is already terminal
// or was never started.
var ErrSyncLogFinalized = errors.New("sync log entry already finalized")

type PostgresSyncLogRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSyncLogRepository(pool *pgxpool.Pool) *PostgresSyncLogRepository {
	return &PostgresSyncLogRepository{pool: pool}
}

// Insert appends an entry as-is. Used both for running entries and for runs that
// are recorded only once they complete.
func (r *PostgresSyncLogRepository) Insert(ctx context.Context, entry *models.SyncLogEntry) error {
	query := `INSERT INTO sync_logs (id, sync_type, event_type_id, status, started_at, completed_at,
	                                 records_processed, duration_ms, success, error_message)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		string(entry.SyncType),
		entry.EventTypeID,
		string(entry.Status),
		entry.StartedAt,
		entry.CompletedAt,
		entry.RecordsProcessed,
		entry.DurationMs,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync log: %w", err)
	}
	return nil
}

// Finalize writes the terminal state of a running entry. The completed_at guard makes
// finalized rows immutable.
func (r *PostgresSyncLogRepository) Finalize(ctx context.Context, entry *models.SyncLogEntry) error {
	query := `UPDATE sync_logs
	          SET status = $1, completed_at = $2, records_processed = $3,
	              duration_ms = $4, success = $5, error_message = $6
	          WHERE id = $7 AND completed_at IS NULL`

	result, err := r.pool.Exec(ctx, query,
		string(entry.Status),
		entry.CompletedAt,
		entry.RecordsProcessed,
		entry.DurationMs,
		entry.Success,
		entry.ErrorMessage,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize sync log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSyncLogFinalized
	}
	return nil
}

func (r *PostgresSyncLogRepository) GetRecent(ctx context.Context, limit int) ([]*models.SyncLogEntry, error) {
	query := `SELECT id, sync_type, event_type_id, status, started_at, completed_at,
	                 records_processed, duration_ms, success, error_message
	          FROM sync_logs
	          ORDER BY started_at DESC, id DESC
	          LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	entries := []*models.SyncLogEntry{}
	for rows.Next() {
		var entry models.SyncLogEntry
		var syncType, status string
		err := rows.Scan(
			&entry.ID,
			&syncType,
			&entry.EventTypeID,
			&status,
			&entry.StartedAt,
			&entry.CompletedAt,
			&entry.RecordsProcessed,
			&entry.DurationMs,
			&entry.Success,
			&entry.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		entry.SyncType = models.SyncType(syncType)
		entry.Status = models.SyncStatus(status)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync logs: %w", err)
	}

	return entries, nil
}
