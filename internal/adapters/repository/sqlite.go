package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	payload  TEXT    NOT NULL,
	saved_at INTEGER NOT NULL
)`

// SQLiteGateway keeps the snapshot as a single row in an SQLite database.
type SQLiteGateway struct {
	db   *sql.DB
	opts options
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and prepares
// the snapshot table.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteGateway, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrPersistence)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrPersistence, dir, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)",
		cleanPath, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %v", ErrPersistence, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %v", ErrPersistence, err)
	}
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrPersistence, err)
	}
	return &SQLiteGateway{db: db, opts: o, now: time.Now}, nil
}

// Load reads the snapshot row.
func (g *SQLiteGateway) Load(ctx context.Context) (model.State, error) {
	var payload string
	err := g.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.State{}, ErrNoSnapshot
	}
	if err != nil {
		return model.State{}, fmt.Errorf("%w: select snapshot: %v", ErrPersistence, err)
	}
	return decode([]byte(payload))
}

// Save upserts the snapshot row.
func (g *SQLiteGateway) Save(ctx context.Context, state model.State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	_, err = g.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, payload, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		string(data), g.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert snapshot: %v", ErrPersistence, err)
	}
	g.opts.log.Debug(ctx, "snapshot stored",
		logger.Int("bytes", len(data)),
		logger.Int("results", len(state.Results)),
	)
	return nil
}

// Close closes the database handle.
func (g *SQLiteGateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}
