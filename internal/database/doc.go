// Package database provides the connection pool and retry executor shared by
// every storage adapter.
//
// Drivers plug in through a Dialer returning Sessions:
//   - internal/adapters/postgres: pgx connections (production)
//   - internal/adapters/sqlite: go-sqlite3 connections (local runs, tests)
//
// The pool is constructed once by the composition root and passed to every
// component that needs it. There is no package-level pool.
package database
