// Package postgres opens database sessions on PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

const applicationName = "sensor-data-pipeline"

// Dialer returns a database.Dialer that opens one pgx connection per call.
// The connection string is parsed once, up front, so a malformed config
// fails at startup rather than on first use.
func Dialer(cfg config.DatabaseConfig) (database.Dialer, error) {
	connCfg, err := pgx.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = cfg.ConnectTimeout
	}
	connCfg.RuntimeParams["application_name"] = applicationName

	return func(ctx context.Context) (database.Session, error) {
		conn, err := pgx.ConnectConfig(ctx, connCfg.Copy())
		if err != nil {
			return nil, classify(err)
		}
		return &session{conn: conn}, nil
	}, nil
}

// session adapts *pgx.Conn to database.Session
type session struct {
	conn *pgx.Conn
}

func (s *session) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := s.conn.Exec(ctx, sql, args...)
	return classify(err)
}

func (s *session) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(err)
	}
	return &resultRows{Rows: rows}, nil
}

func (s *session) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return &transaction{tx: tx}, nil
}

func (s *session) Ping(ctx context.Context) error {
	return classify(s.conn.Ping(ctx))
}

func (s *session) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// IsClosed lets the pool discard connections pgx has given up on.
func (s *session) IsClosed() bool {
	return s.conn.IsClosed()
}

type transaction struct {
	tx pgx.Tx
}

func (t *transaction) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return classify(err)
}

func (t *transaction) Commit(ctx context.Context) error {
	return classify(t.tx.Commit(ctx))
}

func (t *transaction) Rollback(ctx context.Context) error {
	return classify(t.tx.Rollback(ctx))
}

// resultRows classifies errors that pgx defers until iteration ends
type resultRows struct {
	pgx.Rows
}

func (r *resultRows) Scan(dest ...any) error {
	return classify(r.Rows.Scan(dest...))
}

func (r *resultRows) Err() error {
	return classify(r.Rows.Err())
}
