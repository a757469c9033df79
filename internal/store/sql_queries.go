package store

const (
	insertQueueItem = `
		INSERT INTO queue_items (
			id,
			target_table,
			operation,
			payload,
			enqueued_at,
			status,
			retry_count,
			last_error,
			parked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	getQueueItem = `
		SELECT
			id,
			target_table,
			operation,
			payload,
			enqueued_at,
			status,
			retry_count,
			last_error,
			last_attempt_at,
			parked
		FROM queue_items
		WHERE id = $1;`

	listActiveQueueItems = `
		SELECT
			id,
			target_table,
			operation,
			payload,
			enqueued_at,
			status,
			retry_count,
			last_error,
			last_attempt_at,
			parked
		FROM queue_items
		WHERE parked = FALSE
		ORDER BY enqueued_at ASC, id ASC;`

	listParkedQueueItems = `
		SELECT
			id,
			target_table,
			operation,
			payload,
			enqueued_at,
			status,
			retry_count,
			last_error,
			last_attempt_at,
			parked
		FROM queue_items
		WHERE parked = TRUE
		ORDER BY enqueued_at ASC, id ASC;`

	removeQueueItem = `
		DELETE FROM queue_items
		WHERE id = $1;`

	parkQueueItem = `
		UPDATE queue_items SET
			status          = 'error',
			parked          = TRUE,
			retry_count     = $1,
			last_error      = $2,
			last_attempt_at = $3
		WHERE id = $4;`

	reactivateQueueItem = `
		UPDATE queue_items SET
			status          = 'pending',
			parked          = FALSE,
			retry_count     = 0,
			last_error      = '',
			last_attempt_at = NULL
		WHERE id = $1;`

	countQueueItemsByStatus = `
		SELECT status, COUNT(*)
		FROM queue_items
		GROUP BY status;`
)
