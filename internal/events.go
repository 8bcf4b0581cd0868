package internal

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// EventPublisher writes party lifecycle events to Kafka for downstream
// analytics. Fire-and-forget: publish failures are logged and never fail
// the operation that produced the event. A nil publisher is a no-op, so
// the registry works without a broker.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(brokers, topic string) *EventPublisher {
	if brokers == "" {
		return nil
	}
	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
			Async:        true,
		},
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event string, payload map[string]any) {
	if p == nil {
		return
	}
	payload["event"] = event
	payload["ts"] = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("marshal party event")
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event), Value: data}); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("publish party event")
	}
}

func (p *EventPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
