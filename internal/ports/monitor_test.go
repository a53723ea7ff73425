package ports

import (
	"context"
	"testing"
	"time"

	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/mock"
	"github.com/quentinrf/sensor-data-pipeline/internal/database"
)

// chanSink forwards every published state
type chanSink chan bool

func (c chanSink) SetServing(serving bool) { c <- serving }

func TestHealthMonitor_PublishesImmediately(t *testing.T) {
	pool := mockPool(t, func(s *mock.Session) { s.QueryRows = [][]any{{int64(1)}} })
	sink := make(chanSink, 8)
	m := NewHealthMonitor(NewHealthProbe(pool, time.Second), sink, pool, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	select {
	case serving := <-sink:
		if !serving {
			t.Error("first state = not serving, want serving")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state published")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestHealthMonitor_ReportsOutage(t *testing.T) {
	dialer := mock.NewDialer()
	dialer.FailDials = 1000
	pool := database.NewPool(database.PoolConfig{MaxConns: 1}, dialer.Dial)
	t.Cleanup(pool.Shutdown)

	sink := make(chanSink, 64)
	m := NewHealthMonitor(NewHealthProbe(pool, time.Second), sink, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case serving := <-sink:
			if serving {
				t.Errorf("state %d = serving, want not serving", i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("state %d not published", i)
		}
	}
}
