package messaging

import (
	"fmt"

	"maintdeck/config"
)

// Handler receives each decoded change notice.
type Handler func(Envelope)

// Consumer is a running subscription to the backend's change topic.
type Consumer interface {
	Start() error
	Connected() bool
	Close() error
}

// New builds the consumer selected by config. An empty backend returns
// (nil, nil): push invalidation is optional, staleness timers still apply.
func New(cfg *config.MessagingConfig, handler Handler) (Consumer, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "mqtt":
		return newMQTTConsumer(cfg, handler), nil
	case "kafka":
		return newKafkaConsumer(cfg, handler), nil
	default:
		return nil, fmt.Errorf("unsupported messaging backend: %s", cfg.Backend)
	}
}
