package messaging

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"maintdeck/config"
)

type mqttConsumer struct {
	cfg     *config.MessagingConfig
	handler Handler
	client  mqtt.Client
	log     *logrus.Entry
}

func newMQTTConsumer(cfg *config.MessagingConfig, handler Handler) *mqttConsumer {
	return &mqttConsumer{
		cfg:     cfg,
		handler: handler,
		log:     logrus.WithField("component", "messaging.mqtt"),
	}
}

func (c *mqttConsumer) Start() error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		c.log.WithField("topic", c.cfg.Topic).Info("connected, subscribing")
		token := client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.onMessage)
		go func() {
			token.Wait()
			if err := token.Error(); err != nil {
				c.log.WithError(err).Error("subscribe failed")
			}
		}()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.log.WithError(err).Warn("connection lost")
	})

	c.client = mqtt.NewClient(opts)
	token := c.client.Connect()
	// Connect retries in the background; don't block startup on the broker.
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.WithError(err).Warn("initial connect failed, retrying")
		}
	}()
	return nil
}

func (c *mqttConsumer) onMessage(_ mqtt.Client, msg mqtt.Message) {
	env, err := DecodeEnvelope(msg.Payload())
	if err != nil {
		c.log.WithError(err).Debug("dropping malformed change notice")
		return
	}
	c.handler(env)
}

func (c *mqttConsumer) Connected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

func (c *mqttConsumer) Close() error {
	if c.client != nil {
		c.client.Disconnect(250)
	}
	return nil
}
