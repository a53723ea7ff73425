package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

func TestQuery_ResolvesRange(t *testing.T) {
	store := &recordingStore{}
	svc := NewQueryService(store, nil)

	rows, err := svc.Query(context.Background(), "2024-04-14", "2024-04-15")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if rows == nil {
		t.Error("rows is nil, want empty slice")
	}
	if len(store.ranges) != 1 {
		t.Fatalf("store called %d times, want 1", len(store.ranges))
	}
	from, to := store.ranges[0].Bounds()
	if from != "2024-04-14" || to != "2024-04-16" {
		t.Errorf("bounds = %s..%s, want 2024-04-14..2024-04-16", from, to)
	}
}

func TestQuery_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantErr  error
	}{
		{name: "missing from", to: "2024-04-14", wantErr: domain.ErrMissingRange},
		{name: "missing to", from: "2024-04-14", wantErr: domain.ErrMissingRange},
		{name: "garbage", from: "yesterday", to: "2024-04-14", wantErr: domain.ErrInvalidRange},
		{name: "bad to", from: "2024-04-14", to: "14/04/2024", wantErr: domain.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{}
			_, err := NewQueryService(store, nil).Query(context.Background(), tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(store.ranges) != 0 {
				t.Error("store queried for a rejected range")
			}
		})
	}
}

func TestQuery_StorageFailure(t *testing.T) {
	_, err := NewQueryService(failingStore{err: errBackend}, nil).Query(context.Background(), "2024-04-14", "2024-04-14")
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("error = %v, want %v", err, domain.ErrStorage)
	}
}

func TestQuery_UsesCache(t *testing.T) {
	row := domain.NewReadingRow(time.Date(2024, 4, 14, 10, 0, 0, 0, time.UTC), "Voltage", 230)
	store := &recordingStore{rows: []domain.ReadingRow{row}}
	cache := newMapCache()
	svc := NewQueryService(store, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rows, err := svc.Query(ctx, "2024-04-14", "2024-04-14")
		if err != nil {
			t.Fatalf("Query %d failed: %v", i, err)
		}
		if len(rows) != 1 || rows[0] != row {
			t.Errorf("Query %d = %+v, want [%+v]", i, rows, row)
		}
	}
	if len(store.ranges) != 1 {
		t.Errorf("store queried %d times, want 1", len(store.ranges))
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestQuery_FailureIsNotCached(t *testing.T) {
	cache := newMapCache()
	_, _ = NewQueryService(failingStore{err: errBackend}, cache).Query(context.Background(), "2024-04-14", "2024-04-14")
	if cache.puts != 0 {
		t.Errorf("cache puts = %d, want 0", cache.puts)
	}
}
