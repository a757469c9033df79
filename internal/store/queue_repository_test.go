package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:     db,
		logger: logger.Nop(),
	}
}

func newTestRepo(t *testing.T, db *sql.DB) QueueRepository {
	t.Helper()
	return NewQueueRepository(newDBFromSQL(db), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

var queueItemColumns = []string{
	"id", "target_table", "operation", "payload", "enqueued_at",
	"status", "retry_count", "last_error", "last_attempt_at", "parked",
}

type queueItemRow struct {
	id            string
	table_        string
	operation     string
	payload       string
	enqueuedAt    time.Time
	status        string
	retryCount    int
	lastError     string
	lastAttemptAt driver.Value // *time.Time or nil
	parked        bool
}

func (r queueItemRow) toArgs() []driver.Value {
	return []driver.Value{
		r.id, r.table_, r.operation, r.payload, r.enqueuedAt,
		r.status, r.retryCount, r.lastError, r.lastAttemptAt, r.parked,
	}
}

func TestEnqueue(t *testing.T) {
	draft := models.QueueItemDraft{
		Table:     "attendance",
		Operation: models.OperationUpsert,
		Payload: []models.Record{
			{"student_id": "s1", "date": "2024-01-10", "status": "Hadir"},
		},
	}
	payloadJSON := `[{"date":"2024-01-10","status":"Hadir","student_id":"s1"}]`

	tests := []struct {
		name    string
		execErr error
		rows    int64
		wantErr string
	}{
		{
			name: "success",
			rows: 1,
		},
		{
			name:    "error: insert fails",
			execErr: errors.New("disk I/O error"),
			wantErr: "failed to enqueue item",
		},
		{
			name:    "error: no rows affected",
			rows:    0,
			wantErr: ErrQueueItemNotSaved.Error(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestRepo(t, db)
			ctx := testContext()

			expectation := mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO queue_items`)).
				WithArgs(
					sqlmock.AnyArg(), // id: uuid assigned by the repo
					draft.Table,
					string(draft.Operation),
					payloadJSON,
					sqlmock.AnyArg(), // enqueued_at: time.Now
					string(models.StatusPending),
					0,
					"",
					false,
				)
			if tc.execErr != nil {
				expectation.WillReturnError(tc.execErr)
			} else {
				expectation.WillReturnResult(sqlmock.NewResult(0, tc.rows))
			}

			item, err := repo.Enqueue(ctx, draft)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, item.ID)
			assert.Equal(t, draft.Table, item.Table)
			assert.Equal(t, draft.Operation, item.Operation)
			assert.Equal(t, draft.Payload, item.Payload)
			assert.Equal(t, models.StatusPending, item.Status)
			assert.False(t, item.EnqueuedAt.IsZero())
			assert.Zero(t, item.RetryCount)
			assert.False(t, item.Parked)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListActive(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	earlier := now.Add(-time.Minute)

	tests := []struct {
		name     string
		rows     []queueItemRow
		queryErr error
		rowErr   error
		wantLen  int
		wantErr  string
	}{
		{
			name: "success: items in enqueue order",
			rows: []queueItemRow{
				{
					id: "q1", table_: "attendance", operation: "upsert",
					payload:    `[{"student_id":"s1","date":"2024-01-10","status":"Hadir"}]`,
					enqueuedAt: earlier, status: "pending",
				},
				{
					id: "q2", table_: "grades", operation: "update",
					payload:    `[{"student_id":"s1","score":85}]`,
					enqueuedAt: now, status: "pending",
					retryCount: 2, lastError: "http 503: unavailable", lastAttemptAt: &now,
				},
			},
			wantLen: 2,
		},
		{
			name:    "success: empty queue",
			rows:    []queueItemRow{},
			wantLen: 0,
		},
		{
			name:     "error: query fails",
			queryErr: errors.New("database is locked"),
			wantErr:  "failed to query queue items",
		},
		{
			name: "error: malformed payload",
			rows: []queueItemRow{
				{
					id: "q1", table_: "attendance", operation: "upsert",
					payload: `not-json`, enqueuedAt: now, status: "pending",
				},
			},
			wantErr: "failed to scan queue item row",
		},
		{
			name: "error: rows iteration fails",
			rows: []queueItemRow{
				{
					id: "q1", table_: "attendance", operation: "upsert",
					payload: `[{"student_id":"s1"}]`, enqueuedAt: now, status: "pending",
				},
			},
			rowErr:  errors.New("connection reset"),
			wantErr: "error iterating queue item rows",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestRepo(t, db)
			ctx := testContext()

			expectation := mock.ExpectQuery(regexp.QuoteMeta(`WHERE parked = FALSE`))
			if tc.queryErr != nil {
				expectation.WillReturnError(tc.queryErr)
			} else {
				mockRows := sqlmock.NewRows(queueItemColumns)
				for i, r := range tc.rows {
					mockRows.AddRow(r.toArgs()...)
					if tc.rowErr != nil {
						mockRows.RowError(i, tc.rowErr)
					}
				}
				expectation.WillReturnRows(mockRows)
			}

			items, err := repo.ListActive(ctx)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Nil(t, items)
				return
			}

			require.NoError(t, err)
			require.Len(t, items, tc.wantLen)

			for i, r := range tc.rows {
				got := items[i]
				assert.Equal(t, r.id, got.ID, "ID[%d]", i)
				assert.Equal(t, r.table_, got.Table, "Table[%d]", i)
				assert.Equal(t, models.Operation(r.operation), got.Operation, "Operation[%d]", i)
				assert.Equal(t, models.QueueStatus(r.status), got.Status, "Status[%d]", i)
				assert.Equal(t, r.retryCount, got.RetryCount, "RetryCount[%d]", i)
				assert.Equal(t, r.lastError, got.LastError, "LastError[%d]", i)
				if r.lastAttemptAt == nil {
					assert.Nil(t, got.LastAttemptAt, "LastAttemptAt[%d]", i)
				} else {
					require.NotNil(t, got.LastAttemptAt, "LastAttemptAt[%d]", i)
				}
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListParked(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	db, mock := newTestDB(t)
	repo := newTestRepo(t, db)
	ctx := testContext()

	mockRows := sqlmock.NewRows(queueItemColumns).
		AddRow(queueItemRow{
			id: "q9", table_: "attendance", operation: "delete",
			payload:    `[{"student_id":"s9","date":"2024-01-09"}]`,
			enqueuedAt: now, status: "error",
			retryCount: 5, lastError: "http 500: boom", lastAttemptAt: &now, parked: true,
		}.toArgs()...)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE parked = TRUE`)).WillReturnRows(mockRows)

	items, err := repo.ListParked(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "q9", items[0].ID)
	assert.True(t, items[0].Parked)
	assert.Equal(t, models.StatusError, items[0].Status)
	assert.Equal(t, 5, items[0].RetryCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	tests := []struct {
		name     string
		id       string
		row      *queueItemRow
		queryErr error
		wantErr  error
	}{
		{
			name: "success",
			id:   "q1",
			row: &queueItemRow{
				id: "q1", table_: "grades", operation: "create",
				payload:    `[{"student_id":"s1","score":90}]`,
				enqueuedAt: now, status: "pending",
			},
		},
		{
			name:    "error: not found",
			id:      "missing",
			wantErr: ErrQueueItemNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestRepo(t, db)
			ctx := testContext()

			expectation := mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
				WithArgs(tc.id)
			if tc.row != nil {
				expectation.WillReturnRows(sqlmock.NewRows(queueItemColumns).AddRow(tc.row.toArgs()...))
			} else {
				expectation.WillReturnError(sql.ErrNoRows)
			}

			item, err := repo.Get(ctx, tc.id)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.row.id, item.ID)
			assert.Equal(t, tc.row.table_, item.Table)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdate(t *testing.T) {
	syncing := models.StatusSyncing
	retries := 3
	lastErr := "http 503: unavailable"
	now := time.Now().UTC()

	tests := []struct {
		name      string
		patch     models.QueueItemPatch
		wantQuery string
		wantArgs  []driver.Value
		rows      int64
		wantErr   error
	}{
		{
			name:      "success: status only",
			patch:     models.QueueItemPatch{Status: &syncing},
			wantQuery: `UPDATE queue_items SET status = $1 WHERE id = $2`,
			wantArgs:  []driver.Value{"syncing", "q1"},
			rows:      1,
		},
		{
			name: "success: failure bookkeeping",
			patch: models.QueueItemPatch{
				Status:        &syncing,
				RetryCount:    &retries,
				LastError:     &lastErr,
				LastAttemptAt: &now,
			},
			wantQuery: `UPDATE queue_items SET status = $1, retry_count = $2, last_error = $3, last_attempt_at = $4 WHERE id = $5`,
			wantArgs:  []driver.Value{"syncing", 3, lastErr, now, "q1"},
			rows:      1,
		},
		{
			name:    "error: empty patch",
			patch:   models.QueueItemPatch{},
			wantErr: ErrEmptyPatch,
		},
		{
			name:      "error: item vanished",
			patch:     models.QueueItemPatch{Status: &syncing},
			wantQuery: `UPDATE queue_items SET status = $1 WHERE id = $2`,
			wantArgs:  []driver.Value{"syncing", "q1"},
			rows:      0,
			wantErr:   ErrQueueItemNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestRepo(t, db)
			ctx := testContext()

			if tc.wantQuery != "" {
				mock.ExpectExec(regexp.QuoteMeta(tc.wantQuery)).
					WithArgs(tc.wantArgs...).
					WillReturnResult(sqlmock.NewResult(0, tc.rows))
			}

			err := repo.Update(ctx, "q1", tc.patch)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRemove(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM queue_items`)).
			WithArgs("q1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Remove(testContext(), "q1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("idempotent: nonexistent id is not an error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM queue_items`)).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.Remove(testContext(), "ghost"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: exec fails", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM queue_items`)).
			WithArgs("q1").
			WillReturnError(errors.New("database is locked"))

		err := repo.Remove(testContext(), "q1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to remove queue item")
	})
}

func TestPark(t *testing.T) {
	at := time.Now().UTC()

	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "success", rows: 1},
		{name: "error: not found", rows: 0, wantErr: ErrQueueItemNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestRepo(t, db)

			mock.ExpectExec(regexp.QuoteMeta(`parked          = TRUE`)).
				WithArgs(5, "http 500: boom", at, "q1").
				WillReturnResult(sqlmock.NewResult(0, tc.rows))

			err := repo.Park(testContext(), "q1", 5, "http 500: boom", at)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReactivate(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "success", rows: 1},
		{name: "error: not found", rows: 0, wantErr: ErrQueueItemNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestRepo(t, db)

			mock.ExpectExec(regexp.QuoteMeta(`parked          = FALSE`)).
				WithArgs("q1").
				WillReturnResult(sqlmock.NewResult(0, tc.rows))

			err := repo.Reactivate(testContext(), "q1")

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCountByStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY status`)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("pending", 3).
				AddRow("error", 1))

		counts, err := repo.CountByStatus(testContext())
		require.NoError(t, err)
		assert.Equal(t, map[models.QueueStatus]int{
			models.StatusPending: 3,
			models.StatusError:   1,
		}, counts)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: query fails", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY status`)).
			WillReturnError(errors.New("database is locked"))

		counts, err := repo.CountByStatus(testContext())
		require.Error(t, err)
		assert.Nil(t, counts)
		assert.Contains(t, err.Error(), "failed to count queue items")
	})
}
