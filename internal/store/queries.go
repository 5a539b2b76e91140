package store

// Load queries
const (
	queryGetLoad = `
		SELECT id, path, state, size, checksum, error, created_at
		FROM loads WHERE id = ?`

	queryUpsertLoad = `
		INSERT INTO loads (id, path, state, size, checksum, error, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, now())
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			size = EXCLUDED.size,
			checksum = EXCLUDED.checksum,
			error = EXCLUDED.error,
			finished_at = now()`

	queryDeleteLoad = `DELETE FROM loads WHERE id = ?`
)

// History queries
const (
	queryGetTaskRecord = `
		SELECT id, name, outcome, worker, resumes, scheduled_at, finished_at, error
		FROM task_history WHERE id = ?`
)
