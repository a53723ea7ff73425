// Package mqtt ingests reading batches published to an MQTT topic.
package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/ports"
)

const (
	connectTimeout  = 10 * time.Second
	disconnectQuiet = 250 // ms
)

// Ingester accepts a batch of reading lines
type Ingester interface {
	Ingest(ctx context.Context, p ports.Payload) (int, error)
}

// Subscriber feeds every message on the configured topic to the ingestion
// service. Each message body is one text/plain batch.
type Subscriber struct {
	cfg    config.MQTTConfig
	ingest Ingester
	client paho.Client
}

// NewSubscriber creates a subscriber; nothing connects until Start
func NewSubscriber(cfg config.MQTTConfig, ingest Ingester) *Subscriber {
	return &Subscriber{cfg: cfg, ingest: ingest}
}

// Start connects to the broker. The subscription is renewed on every
// reconnect.
func (s *Subscriber) Start() error {
	opts := paho.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(s.subscribe)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Str("broker", s.cfg.Broker).Msg("mqtt connection lost")
	})

	s.client = paho.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.cfg.Broker, token.Error())
	}
	return nil
}

func (s *Subscriber) subscribe(c paho.Client) {
	if token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.handleMessage); token.Wait() && token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", s.cfg.Topic).Msg("mqtt subscribe failed")
		return
	}
	log.Info().
		Str("broker", s.cfg.Broker).
		Str("topic", s.cfg.Topic).
		Msg("listening for readings over mqtt")
}

// handleMessage ingests one message with its own deadline
func (s *Subscriber) handleMessage(_ paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.MessageTimeout)
	defer cancel()

	n, err := s.ingest.Ingest(ctx, ports.Payload{
		ContentType: "text/plain",
		Body:        msg.Payload(),
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("topic", msg.Topic()).
			Uint16("message_id", msg.MessageID()).
			Msg("mqtt batch not ingested")
		return
	}

	log.Debug().
		Str("topic", msg.Topic()).
		Int("lines", n).
		Msg("mqtt batch ingested")
}

// Stop disconnects from the broker
func (s *Subscriber) Stop() {
	if s.client == nil {
		return
	}
	s.client.Disconnect(disconnectQuiet)
	log.Info().Msg("mqtt subscriber stopped")
}
