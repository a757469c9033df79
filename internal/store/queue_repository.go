package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/internal/utils"
	"github.com/sekolahku/offline-sync/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
	idgen  *utils.UUIDGenerator
}

func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
		idgen:  utils.NewUUIDGenerator(),
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, draft models.QueueItemDraft) (models.QueueItem, error) {
	log := logger.FromContext(ctx)

	item := models.QueueItem{
		ID:         q.idgen.Generate(),
		Table:      draft.Table,
		Operation:  draft.Operation,
		Payload:    draft.Payload,
		EnqueuedAt: time.Now().UTC(),
		Status:     models.StatusPending,
	}

	payload, err := models.MarshalPayload(item.Payload)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("table", item.Table).
			Msg("failed to encode queue item payload")
		return models.QueueItem{}, fmt.Errorf("failed to encode payload for table %s: %w", item.Table, err)
	}

	result, err := q.DB.ExecContext(ctx, insertQueueItem,
		item.ID,
		item.Table,
		string(item.Operation),
		payload,
		item.EnqueuedAt,
		string(item.Status),
		item.RetryCount,
		item.LastError,
		item.Parked,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("table", item.Table).
			Str("id", item.ID).
			Msg("failed to execute insert for queue item")
		return models.QueueItem{}, fmt.Errorf("failed to enqueue item (id=%s): %w", item.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("id", item.ID).
			Msg("failed to get rows affected after enqueue")
		return models.QueueItem{}, fmt.Errorf("failed to get rows affected (id=%s): %w", item.ID, err)
	}
	if rowsAffected == 0 {
		log.Error().
			Str("func", "queueRepository.Enqueue").
			Str("id", item.ID).
			Msg("insert affected no rows: queue item was not persisted")
		return models.QueueItem{}, ErrQueueItemNotSaved
	}

	return item, nil
}

func (q *queueRepository) ListActive(ctx context.Context) ([]models.QueueItem, error) {
	return q.list(ctx, listActiveQueueItems, "queueRepository.ListActive")
}

func (q *queueRepository) ListParked(ctx context.Context) ([]models.QueueItem, error) {
	return q.list(ctx, listParkedQueueItems, "queueRepository.ListParked")
}

func (q *queueRepository) list(ctx context.Context, query, caller string) ([]models.QueueItem, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, query)
	if err != nil {
		log.Err(err).
			Str("func", caller).
			Msg("failed to execute query for listing queue items")
		return nil, fmt.Errorf("failed to query queue items: %w", err)
	}
	defer rows.Close()

	var items []models.QueueItem
	for rows.Next() {
		item, scanErr := scanQueueItem(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Msg("failed to scan queue item row")
			return nil, fmt.Errorf("failed to scan queue item row: %w", scanErr)
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating queue item rows: %w", rowsErr)
	}

	return items, nil
}

func (q *queueRepository) Get(ctx context.Context, id string) (models.QueueItem, error) {
	log := logger.FromContext(ctx)

	row := q.DB.QueryRowContext(ctx, getQueueItem, id)
	item, err := scanQueueItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueItem{}, ErrQueueItemNotFound
		}
		log.Err(err).
			Str("func", "queueRepository.Get").
			Str("id", id).
			Msg("failed to scan queue item row")
		return models.QueueItem{}, fmt.Errorf("failed to get queue item (id=%s): %w", id, err)
	}

	return item, nil
}

func (q *queueRepository) Update(ctx context.Context, id string, patch models.QueueItemPatch) error {
	log := logger.FromContext(ctx)

	if patch.Empty() {
		return ErrEmptyPatch
	}

	builder := sq.Update("queue_items").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if patch.Status != nil {
		builder = builder.Set("status", string(*patch.Status))
	}
	if patch.RetryCount != nil {
		builder = builder.Set("retry_count", *patch.RetryCount)
	}
	if patch.LastError != nil {
		builder = builder.Set("last_error", *patch.LastError)
	}
	if patch.LastAttemptAt != nil {
		builder = builder.Set("last_attempt_at", *patch.LastAttemptAt)
	}
	if patch.Parked != nil {
		builder = builder.Set("parked", *patch.Parked)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Str("id", id).
			Msg("failed to build update query for queue item")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Str("id", id).
			Msg("failed to execute update for queue item")
		return fmt.Errorf("failed to update queue item (id=%s): %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Update").
			Str("id", id).
			Msg("failed to get rows affected after update")
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if rowsAffected == 0 {
		// The item was removed by a concurrent pass between read and write.
		return ErrQueueItemNotFound
	}

	return nil
}

func (q *queueRepository) Remove(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	_, err := q.DB.ExecContext(ctx, removeQueueItem, id)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Str("id", id).
			Msg("failed to execute delete for queue item")
		return fmt.Errorf("failed to remove queue item (id=%s): %w", id, err)
	}

	return nil
}

func (q *queueRepository) Park(ctx context.Context, id string, retryCount int, lastError string, at time.Time) error {
	log := logger.FromContext(ctx)

	result, err := q.DB.ExecContext(ctx, parkQueueItem, retryCount, lastError, at, id)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Park").
			Str("id", id).
			Msg("failed to execute park for queue item")
		return fmt.Errorf("failed to park queue item (id=%s): %w", id, err)
	}

	return checkRowsAffected(result, id)
}

func (q *queueRepository) Reactivate(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	result, err := q.DB.ExecContext(ctx, reactivateQueueItem, id)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Reactivate").
			Str("id", id).
			Msg("failed to execute reactivate for queue item")
		return fmt.Errorf("failed to reactivate queue item (id=%s): %w", id, err)
	}

	return checkRowsAffected(result, id)
}

func (q *queueRepository) CountByStatus(ctx context.Context) (map[models.QueueStatus]int, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, countQueueItemsByStatus)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.CountByStatus").
			Msg("failed to execute count query")
		return nil, fmt.Errorf("failed to count queue items: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.QueueStatus]int)
	for rows.Next() {
		var status string
		var count int
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			log.Err(scanErr).
				Str("func", "queueRepository.CountByStatus").
				Msg("failed to scan count row")
			return nil, fmt.Errorf("failed to scan count row: %w", scanErr)
		}
		counts[models.QueueStatus(status)] = count
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "queueRepository.CountByStatus").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating count rows: %w", rowsErr)
	}

	return counts, nil
}

func scanQueueItem(scan func(dest ...any) error) (models.QueueItem, error) {
	var (
		item          models.QueueItem
		operation     string
		status        string
		payload       string
		lastAttemptAt sql.NullTime
	)

	if err := scan(
		&item.ID,
		&item.Table,
		&operation,
		&payload,
		&item.EnqueuedAt,
		&status,
		&item.RetryCount,
		&item.LastError,
		&lastAttemptAt,
		&item.Parked,
	); err != nil {
		return models.QueueItem{}, err
	}

	records, err := models.UnmarshalPayload(payload)
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("failed to decode payload (id=%s): %w", item.ID, err)
	}

	item.Operation = models.Operation(operation)
	item.Status = models.QueueStatus(status)
	item.Payload = records
	if lastAttemptAt.Valid {
		at := lastAttemptAt.Time
		item.LastAttemptAt = &at
	}

	return item, nil
}

func checkRowsAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrQueueItemNotFound
	}
	return nil
}
