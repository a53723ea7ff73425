package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/mock"
	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

func TestInTx_CommitsOnSuccess(t *testing.T) {
	s := mock.NewSession()

	err := database.InTx(context.Background(), s, func(tx database.Tx) error {
		return tx.Exec(context.Background(), "INSERT 1")
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}
	if s.Committed != 1 || s.RolledBack != 0 {
		t.Errorf("committed=%d rolledBack=%d, want 1/0", s.Committed, s.RolledBack)
	}
	if got := len(s.Snapshot()); got != 1 {
		t.Errorf("visible statements = %d, want 1", got)
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := mock.NewSession()
	s.ExecErr = errors.New("constraint violation")
	s.ExecFailAt = 2

	err := database.InTx(context.Background(), s, func(tx database.Tx) error {
		for _, stmt := range []string{"INSERT 1", "INSERT 2", "INSERT 3"} {
			if err := tx.Exec(context.Background(), stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if !errors.Is(err, s.ExecErr) {
		t.Fatalf("InTx error = %v, want %v", err, s.ExecErr)
	}
	if s.Committed != 0 || s.RolledBack != 1 {
		t.Errorf("committed=%d rolledBack=%d, want 0/1", s.Committed, s.RolledBack)
	}
	if got := len(s.Snapshot()); got != 0 {
		t.Errorf("visible statements = %d, want 0", got)
	}
}

func TestInTx_CommitFailureIsNotRetryable(t *testing.T) {
	s := mock.NewSession()
	s.CommitErr = database.Transient(errors.New("connection reset during commit"))

	err := database.InTx(context.Background(), s, func(tx database.Tx) error {
		return tx.Exec(context.Background(), "INSERT 1")
	})
	if err == nil {
		t.Fatal("expected commit error")
	}
	if database.IsTransient(err) {
		t.Error("commit failure must not be classified as transient")
	}
}

func TestIsTransient(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: base, want: false},
		{name: "transient", err: database.Transient(base), want: true},
		{name: "wrapped transient", err: errors.Join(errors.New("ctx"), database.Transient(base)), want: true},
		{name: "permanent transient", err: database.Permanent(database.Transient(base)), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := database.IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}
