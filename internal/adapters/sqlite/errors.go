package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// classify marks lock contention as transient; SQLite has no network layer
// to drop, so busy and locked databases are the only conditions worth
// retrying.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return database.Transient(err)
		}
	}
	return err
}
