// Package sqlite opens database sessions on SQLite files for local
// development and tests.
//
// Each configured schema is its own database file attached to the session
// under the schema's name, so "silver.stg_readings" resolves the same way
// it does on PostgreSQL and the repository SQL needs no dialect switch.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// BEGIN IMMEDIATE takes the write lock up front so two writers never
// deadlock upgrading from a read lock.
const dsn = ":memory:?_busy_timeout=5000&_txlock=immediate"

// Dialer returns a database.Dialer whose sessions attach one database file
// per schema under dir.
func Dialer(dir string, schemas config.SchemaConfig) database.Dialer {
	return func(ctx context.Context) (database.Session, error) {
		return open(ctx, dir, schemas)
	}
}

func open(ctx context.Context, dir string, schemas config.SchemaConfig) (*session, error) {
	for _, name := range schemas.All() {
		if !config.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid schema name %q", name)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, classify(err)
	}
	s := &session{db: db, conn: conn}

	if err := s.prepare(ctx, dir, schemas); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	log.Debug().Str("dir", dir).Strs("schemas", schemas.All()).Msg("sqlite session opened")
	return s, nil
}

// prepare attaches every distinct schema and creates the tables if missing
func (s *session) prepare(ctx context.Context, dir string, schemas config.SchemaConfig) error {
	attached := make(map[string]bool)
	for _, name := range schemas.All() {
		if attached[name] {
			continue
		}
		path := filepath.Join(dir, name+".db")
		if _, err := s.conn.ExecContext(ctx, fmt.Sprintf("ATTACH DATABASE ? AS %s", name), path); err != nil {
			return fmt.Errorf("failed to attach %s: %w", name, classify(err))
		}
		attached[name] = true
	}

	ddl := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.raw_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			raw_line TEXT NOT NULL,
			ingested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, schemas.Bronze),
		curatedTable(schemas.Silver, "stg_readings"),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s.idx_stg_readings_date ON stg_readings(reading_date)`, schemas.Silver),
		curatedTable(schemas.Gold, "mart_daily_power"),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s.idx_mart_daily_power_date ON mart_daily_power(reading_date)`, schemas.Gold),
	}
	for _, stmt := range ddl {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", classify(err))
		}
	}
	return nil
}

func curatedTable(schema, table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
		reading_time TIMESTAMP NOT NULL,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		reading_date TEXT NOT NULL
	)`, schema, table)
}

// session pins a single connection so the attachments stay in place
type session struct {
	db     *sql.DB
	conn   *sql.Conn
	closed atomic.Bool
}

func (s *session) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.conn.ExecContext(ctx, query, args...)
	return classify(err)
}

func (s *session) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return &resultRows{rows: rows}, nil
}

func (s *session) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	return &transaction{tx: tx}, nil
}

func (s *session) Ping(ctx context.Context) error {
	return classify(s.conn.PingContext(ctx))
}

// Close releases the pinned connection and its database handle
func (s *session) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	return errors.Join(s.conn.Close(), s.db.Close())
}

func (s *session) IsClosed() bool {
	return s.closed.Load()
}

type transaction struct {
	tx *sql.Tx
}

func (t *transaction) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return classify(err)
}

func (t *transaction) Commit(ctx context.Context) error {
	return classify(t.tx.Commit())
}

// Rollback is a no-op once database/sql has already ended the transaction,
// which happens when the context passed to Begin is cancelled.
func (t *transaction) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return classify(err)
	}
	return nil
}
