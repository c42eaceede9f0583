package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/model"
)

// DBFileName is the database file inside the database directory.
const DBFileName = "onionmonitor.db"

// ErrSnapshotNotFound is returned when no snapshot has the requested ID.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// HistoryDB records directory snapshots over time.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not available at %s: %w", dbPath, err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		taken_at TEXT NOT NULL,
		source TEXT NOT NULL,
		service_count INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS service_status (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_service_status_name ON service_status(name);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SnapshotMeta describes a recorded snapshot without its records.
type SnapshotMeta struct {
	ID           string            `json:"id"`
	TakenAt      time.Time         `json:"taken_at"`
	Source       string            `json:"source"`
	ServiceCount int               `json:"service_count"`
	Summary      directory.Summary `json:"summary"`
}

// SaveSnapshot records services as one snapshot taken at takenAt. Source
// describes where the records came from, e.g. the snapshot file path.
func (h *HistoryDB) SaveSnapshot(ctx context.Context, source string, services []model.Service, takenAt time.Time) (SnapshotMeta, error) {
	meta := SnapshotMeta{
		ID:           ulid.MustNew(ulid.Timestamp(takenAt), ulid.DefaultEntropy()).String(),
		TakenAt:      takenAt.UTC(),
		Source:       source,
		ServiceCount: len(services),
		Summary:      directory.Summarize(services),
	}
	summaryJSON, err := json.Marshal(meta.Summary)
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, taken_at, source, service_count, summary_json) VALUES (?, ?, ?, ?, ?)`,
		meta.ID, meta.TakenAt.Format(time.RFC3339Nano), source, meta.ServiceCount, string(summaryJSON),
	); err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO service_status (snapshot_id, position, name, status, record_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range services {
		recordJSON, err := json.Marshal(s)
		if err != nil {
			return SnapshotMeta{}, fmt.Errorf("failed to encode %s: %w", s.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, meta.ID, i, s.Name, string(s.Status), string(recordJSON)); err != nil {
			return SnapshotMeta{}, fmt.Errorf("failed to insert %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return meta, nil
}

// ListSnapshots returns every snapshot, newest first.
func (h *HistoryDB) ListSnapshots(ctx context.Context) ([]SnapshotMeta, error) {
	return h.querySnapshots(ctx, -1)
}

// LatestSnapshots returns up to n snapshots, newest first.
func (h *HistoryDB) LatestSnapshots(ctx context.Context, n int) ([]SnapshotMeta, error) {
	if n <= 0 {
		return []SnapshotMeta{}, nil
	}
	return h.querySnapshots(ctx, n)
}

// querySnapshots lists snapshot metadata; limit -1 means no limit.
func (h *HistoryDB) querySnapshots(ctx context.Context, limit int) ([]SnapshotMeta, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, taken_at, source, service_count, summary_json
	FROM snapshots
	ORDER BY id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	metas := make([]SnapshotMeta, 0)
	for rows.Next() {
		var (
			meta        SnapshotMeta
			takenAt     string
			summaryJSON string
		)
		if err := rows.Scan(&meta.ID, &takenAt, &meta.Source, &meta.ServiceCount, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		meta.TakenAt = parseTimestamp(takenAt)
		if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary of %s: %w", meta.ID, err)
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// GetSnapshot returns the records of a snapshot in their recorded order.
func (h *HistoryDB) GetSnapshot(ctx context.Context, id string) ([]model.Service, error) {
	var exists int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up snapshot: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	rows, err := h.db.QueryContext(ctx, `
	SELECT record_json FROM service_status
	WHERE snapshot_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	defer rows.Close()

	services := make([]model.Service, 0)
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var s model.Service
		if err := json.Unmarshal([]byte(recordJSON), &s); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// StatusEntry is the status of one service in one snapshot.
type StatusEntry struct {
	SnapshotID string       `json:"snapshot_id"`
	TakenAt    time.Time    `json:"taken_at"`
	Status     model.Status `json:"status"`
}

// StatusHistory returns the recorded statuses of the named service, newest
// first. A name that was never recorded yields an empty slice.
func (h *HistoryDB) StatusHistory(ctx context.Context, name string) ([]StatusEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT s.id, s.taken_at, ss.status
	FROM service_status ss
	JOIN snapshots s ON s.id = ss.snapshot_id
	WHERE ss.name = ?
	ORDER BY s.id DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer rows.Close()

	entries := make([]StatusEntry, 0)
	for rows.Next() {
		var (
			e       StatusEntry
			takenAt string
			status  string
		)
		if err := rows.Scan(&e.SnapshotID, &takenAt, &status); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		e.TakenAt = parseTimestamp(takenAt)
		e.Status = model.Status(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// timestampFormats are the layouts accepted by parseTimestamp.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp, or returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
