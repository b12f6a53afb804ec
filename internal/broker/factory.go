package broker

import (
	"context"
	"fmt"

	"inboxai/internal/config"
	"inboxai/internal/logger"
)

func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "kafka":
		return NewKafkaProducer(cfg.Kafka, log), nil
	case "", "none":
		return NopProducer{}, nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}

// NopProducer discards events. Used when no broker is configured.
type NopProducer struct{}

func (NopProducer) Publish(ctx context.Context, topic string, event DigestEvent) error {
	return nil
}

func (NopProducer) Close() error { return nil }
