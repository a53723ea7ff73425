package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/memory"
	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/ports"
)

// fakeMessage implements paho.Message
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// capturingIngester records the payload and whether a deadline was set
type capturingIngester struct {
	payload     ports.Payload
	hasDeadline bool
	err         error
}

func (c *capturingIngester) Ingest(ctx context.Context, p ports.Payload) (int, error) {
	c.payload = p
	_, c.hasDeadline = ctx.Deadline()
	return 1, c.err
}

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker:         "tcp://127.0.0.1:1",
		ClientID:       "test",
		Topic:          "sensors/readings",
		MessageTimeout: time.Second,
	}
}

func TestHandleMessage_IngestsPlainText(t *testing.T) {
	ing := &capturingIngester{}
	s := NewSubscriber(testConfig(), ing)

	s.handleMessage(nil, fakeMessage{topic: "sensors/readings", payload: []byte("1713088800 Voltage 230")})

	if ing.payload.ContentType != "text/plain" {
		t.Errorf("content type = %q, want text/plain", ing.payload.ContentType)
	}
	if string(ing.payload.Body) != "1713088800 Voltage 230" {
		t.Errorf("body = %q", ing.payload.Body)
	}
	if !ing.hasDeadline {
		t.Error("ingestion ran without a per-message deadline")
	}
}

func TestHandleMessage_RejectionDoesNotPanic(t *testing.T) {
	ing := &capturingIngester{err: errors.New("invalid reading line")}
	s := NewSubscriber(testConfig(), ing)
	s.handleMessage(nil, fakeMessage{topic: "sensors/readings", payload: []byte("garbage")})
}

func TestHandleMessage_StoresThroughService(t *testing.T) {
	store := memory.NewReadingStore()
	s := NewSubscriber(testConfig(), ports.NewIngestionService(store))

	s.handleMessage(nil, fakeMessage{topic: "sensors/readings", payload: []byte("1713088800 Voltage 230\n1713088800 Current 2\n")})
	s.handleMessage(nil, fakeMessage{topic: "sensors/readings", payload: []byte("1713088800 Voltage\n")})

	if got := len(store.RawLines()); got != 2 {
		t.Errorf("stored %d lines, want 2 (the invalid batch must be dropped)", got)
	}
}

func TestStart_UnreachableBroker(t *testing.T) {
	s := NewSubscriber(testConfig(), &capturingIngester{})
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected connect error")
	}
}

func TestStop_BeforeStart(t *testing.T) {
	NewSubscriber(testConfig(), &capturingIngester{}).Stop()
}
