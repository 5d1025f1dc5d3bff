package rabbitmq

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	complete bool
	err      error
}

func (t *fakeToken) Wait() bool                     { return t.complete }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.complete }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.complete {
		close(ch)
	}
	return ch
}

// fakeClient overrides only what Publisher touches.
type fakeClient struct {
	mqtt.Client
	token        *fakeToken
	connected    bool
	topics       []string
	disconnected bool
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, _ interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	return c.token
}

func (c *fakeClient) IsConnected() bool      { return c.connected }
func (c *fakeClient) IsConnectionOpen() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) {
	c.disconnected = true
	c.connected = false
}

func TestPublishToAcked(t *testing.T) {
	c := &fakeClient{token: &fakeToken{complete: true}, connected: true}
	p := NewPublisher(c, 0)
	if err := p.PublishTo("event/pumpDecision/mint", 0, []byte(`{}`)); err != nil {
		t.Fatalf("PublishTo: %v", err)
	}
	if len(c.topics) != 1 || c.topics[0] != "event/pumpDecision/mint" {
		t.Fatalf("unexpected topics %v", c.topics)
	}
	if p.timeout != defaultPublishTimeout {
		t.Fatalf("expected default timeout, got %s", p.timeout)
	}
}

func TestPublishToTimeout(t *testing.T) {
	p := NewPublisher(&fakeClient{token: &fakeToken{}}, 10*time.Millisecond)
	err := p.PublishTo("sensor/data", 0, nil)
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestPublishToBrokerError(t *testing.T) {
	cause := errors.New("not authorized")
	p := NewPublisher(&fakeClient{token: &fakeToken{complete: true, err: cause}}, time.Second)
	if err := p.PublishTo("sensor/data", 1, nil); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestPublishToUninitialized(t *testing.T) {
	var p *Publisher
	if err := p.PublishTo("x", 0, nil); err == nil {
		t.Fatal("nil publisher: expected error")
	}
	if err := NewPublisher(nil, 0).PublishTo("x", 0, nil); err == nil {
		t.Fatal("nil client: expected error")
	}
	if p.Connected() {
		t.Fatal("nil publisher must not report connected")
	}
}

func TestConnectedAndClose(t *testing.T) {
	c := &fakeClient{token: &fakeToken{complete: true}, connected: true}
	p := NewPublisher(c, time.Second)
	if !p.Connected() {
		t.Fatal("expected connected")
	}
	p.Close()
	if !c.disconnected || p.Connected() {
		t.Fatal("Close must disconnect the client")
	}
}

func TestNewRabbitMQConnGivesUp(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := NewRabbitMQConn(ctx, &RabbitMQConfig{
		Host:           "127.0.0.1",
		Port:           1,
		ClientID:       "test",
		MaxRetries:     1,
		MaxElapsedTime: time.Second,
	})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
