package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

func TestKey(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"2024-04-14", "2024-04-14", "readings:range:2024-04-14:2024-04-15"},
		{"2024-04-14T08:00:00", "2024-04-15T23:00:00", "readings:range:2024-04-14:2024-04-15"},
		{"2024-12-31", "2024-12-31", "readings:range:2024-12-31:2025-01-01"},
	}
	for _, tt := range tests {
		dr, err := domain.ResolveRange(tt.from, tt.to)
		if err != nil {
			t.Fatalf("ResolveRange(%q, %q): %v", tt.from, tt.to, err)
		}
		if got := Key(dr); got != tt.want {
			t.Errorf("Key(%s) = %q, want %q", dr, got, tt.want)
		}
	}
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1", // nothing listens here
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })

	cache := NewResultCache(rdb, time.Minute)
	dr, _ := domain.ResolveRange("2024-04-14", "2024-04-14")
	ctx := context.Background()

	cache.Put(ctx, dr, []domain.ReadingRow{domain.NewReadingRow(time.Now(), "Voltage", 1)})
	if rows, ok := cache.Get(ctx, dr); ok {
		t.Errorf("Get() = %v, true; want a miss", rows)
	}
}

// memRedis serves GET and SET from a map; every other command panics
type memRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	default:
		return redis.NewStatusResult("", fmt.Errorf("unsupported value %T", value))
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestResultCache_PutThenGet(t *testing.T) {
	rdb := newMemRedis()
	cache := NewResultCache(rdb, 90*time.Second)
	ctx := context.Background()

	dr, err := domain.ResolveRange("2022-04-14", "2022-04-14")
	if err != nil {
		t.Fatalf("ResolveRange failed: %v", err)
	}

	if _, ok := cache.Get(ctx, dr); ok {
		t.Fatal("expected a miss before Put")
	}

	at := time.Date(2022, 4, 14, 13, 10, 17, 123456000, time.UTC)
	want := []domain.ReadingRow{
		domain.NewReadingRow(at, "Current", 14.0),
		domain.NewReadingRow(at, "Voltage", 1.34),
	}
	cache.Put(ctx, dr, want)

	if got := rdb.ttls[Key(dr)]; got != 90*time.Second {
		t.Errorf("ttl = %v, want 90s", got)
	}

	got, ok := cache.Get(ctx, dr)
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Time.Equal(want[i].Time) || got[i].Name != want[i].Name || got[i].Value != want[i].Value {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	other, _ := domain.ResolveRange("2022-04-15", "2022-04-15")
	if _, ok := cache.Get(ctx, other); ok {
		t.Error("a different range must miss")
	}
}

func TestResultCache_CorruptEntryIsAMiss(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not json", value: "not json"},
		{name: "wrong shape", value: `{"time":"2022-04-14"}`},
		{name: "bad timestamp", value: `[{"time":"yesterday","name":"Voltage","value":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb := newMemRedis()
			cache := NewResultCache(rdb, time.Minute)
			dr, _ := domain.ResolveRange("2022-04-14", "2022-04-14")
			rdb.data[Key(dr)] = tt.value

			if rows, ok := cache.Get(context.Background(), dr); ok {
				t.Errorf("Get() = %v, true; want a miss", rows)
			}
		})
	}
}
