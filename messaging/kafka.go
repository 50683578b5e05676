package messaging

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"maintdeck/config"
)

type kafkaConsumer struct {
	cfg       *config.MessagingConfig
	handler   Handler
	reader    *kafka.Reader
	cancel    context.CancelFunc
	connected atomic.Bool
	log       *logrus.Entry
}

func newKafkaConsumer(cfg *config.MessagingConfig, handler Handler) *kafkaConsumer {
	return &kafkaConsumer{
		cfg:     cfg,
		handler: handler,
		log:     logrus.WithField("component", "messaging.kafka"),
	}
}

func (c *kafkaConsumer) Start() error {
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.cfg.Brokers,
		GroupID: c.cfg.GroupID,
		Topic:   c.cfg.Topic,
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
	return nil
}

func (c *kafkaConsumer) run(ctx context.Context) {
	// A replayed topic can deliver thousands of change notices at once and
	// stampede the cache with refetches; the configured gap paces them.
	minGap := time.Duration(c.cfg.KafkaMinGap) * time.Millisecond
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			c.connected.Store(false)
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			c.log.WithError(err).Warn("read failed")
			continue
		}
		c.connected.Store(true)

		env, err := DecodeEnvelope(msg.Value)
		if err != nil {
			c.log.WithError(err).Debug("dropping malformed change notice")
			continue
		}
		c.handler(env)

		if minGap > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(minGap):
			}
		}
	}
}

func (c *kafkaConsumer) Connected() bool {
	return c.connected.Load()
}

func (c *kafkaConsumer) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
