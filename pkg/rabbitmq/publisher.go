package rabbitmq

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const defaultPublishTimeout = 2 * time.Second

// IPublisher publishes raw payloads on MQTT topics.
type IPublisher interface {
	PublishTo(topic string, qos byte, payload []byte) error
	Close()
}

// Publisher wraps a shared MQTT client
type Publisher struct {
	client  mqtt.Client
	timeout time.Duration
}

var _ IPublisher = (*Publisher)(nil)

func NewPublisher(client mqtt.Client, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Publisher{client: client, timeout: timeout}
}

// PublishTo waits at most p.timeout for the broker ack, so a stuck broker never blocks the caller.
func (p *Publisher) PublishTo(topic string, qos byte, payload []byte) error {
	if p == nil || p.client == nil {
		return errors.New("mqtt publisher not initialized")
	}
	token := p.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s: timeout after %s", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Connected reports whether the underlying client is currently connected.
func (p *Publisher) Connected() bool {
	return p != nil && p.client != nil && p.client.IsConnectionOpen()
}

func (p *Publisher) Close() {
	CloseRabbitMQConn(p.client)
}
