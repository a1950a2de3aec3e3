package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrQueueUnavailable reports that the durable queue could not be opened.
// Offline clock actions are rejected with it rather than silently dropped.
var ErrQueueUnavailable = errors.New("offline queue storage is unavailable")

// Event types of queued entries.
const (
	EventClockIn  = "clock_in"
	EventClockOut = "clock_out"
)

// PendingEntry is one clock event recorded while offline, waiting to be
// replayed. It is deleted from the queue only on server acknowledgment.
type PendingEntry struct {
	ID        string
	Type      string
	Timestamp string // ISO-8601, client clock at the original action
	ProjectID *string
	EntryID   *string // for clock_out: the clock_in entry it closes
	CreatedAt string
}

// PendingStore is the durable queue contract: at-least-once retention,
// idempotent removal, survives restarts.
type PendingStore interface {
	Enqueue(ctx context.Context, entry *PendingEntry) error
	ListAll(ctx context.Context) ([]*PendingEntry, error)
	Remove(ctx context.Context, id string) error
	Available() bool
}

const queueSchemaVersion = 1

// Queue is the SQLite-backed PendingStore.
type Queue struct {
	db *sql.DB
}

// OpenQueue opens (and migrates) the queue database at path.
func OpenQueue(path string) (*Queue, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening queue database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging queue database: %w", err)
	}
	if err := migrateQueue(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Queue{db: db}, nil
}

func migrateQueue(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version: %w", err)
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, queueSchemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	} else if version > queueSchemaVersion {
		return fmt.Errorf("queue schema version %d is newer than supported %d", version, queueSchemaVersion)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_entries (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		project_id TEXT,
		entry_id TEXT,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating pending_entries: %w", err)
	}
	return nil
}

func (q *Queue) Enqueue(ctx context.Context, entry *PendingEntry) error {
	query := `INSERT OR REPLACE INTO pending_entries (id, type, timestamp, project_id, entry_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query,
		entry.ID,
		entry.Type,
		entry.Timestamp,
		entry.ProjectID,
		entry.EntryID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting pending entry: %w", err)
	}
	return nil
}

func (q *Queue) ListAll(ctx context.Context) ([]*PendingEntry, error) {
	query := `SELECT id, type, timestamp, project_id, entry_id, created_at
		FROM pending_entries`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing pending entries: %w", err)
	}
	defer rows.Close()

	var entries []*PendingEntry
	for rows.Next() {
		var e PendingEntry
		var projectID, entryID sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.Timestamp, &projectID, &entryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending entry: %w", err)
		}
		if projectID.Valid {
			e.ProjectID = &projectID.String
		}
		if entryID.Valid {
			e.EntryID = &entryID.String
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending entries: %w", err)
	}
	return entries, nil
}

// Remove deletes one entry by id. Removing a missing id is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pending_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pending entry: %w", err)
	}
	return nil
}

func (q *Queue) Available() bool {
	return true
}

func (q *Queue) Close() error {
	return q.db.Close()
}

// UnavailableQueue is the degraded store used when SQLite cannot be opened:
// reads behave as an empty queue, writes refuse instead of losing events.
type UnavailableQueue struct{}

func (UnavailableQueue) Enqueue(ctx context.Context, entry *PendingEntry) error {
	return ErrQueueUnavailable
}

func (UnavailableQueue) ListAll(ctx context.Context) ([]*PendingEntry, error) {
	return nil, nil
}

func (UnavailableQueue) Remove(ctx context.Context, id string) error {
	return nil
}

func (UnavailableQueue) Available() bool {
	return false
}
