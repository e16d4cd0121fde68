package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// pendingCap bounds how many messages are held for replay while the broker
// is unreachable.
const pendingCap = 64

// RealPublisher publishes to an actual MQTT broker, buffering messages while
// disconnected and replaying them on reconnect.
type RealPublisher struct {
	client paho.Client

	mu      sync.Mutex
	pending *pendingQueue
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{
		pending: newPendingQueue(pendingCap),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("rotary-dial").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.replayPending() })

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a dial event to the MQTT broker.
// QoS 0 (at-most-once), not retained.
func (p *RealPublisher) Publish(event dial.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publishOrBuffer(TopicEvents, payload, 0, false)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
// QoS 1 (at-least-once) - startup/shutdown events should not get lost.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publishOrBuffer(TopicSystem, payload, 1, event.Retained)
}

// publishOrBuffer publishes immediately when connected; otherwise the
// message is queued for replay on reconnect.
func (p *RealPublisher) publishOrBuffer(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.pending.push(pendingMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.pending.len()
		p.mu.Unlock()
		log.Printf("mqtt: disconnected, buffered message for %s (%d pending)", topic, n)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// replayPending runs on the paho connect callback and flushes messages
// buffered while disconnected.
func (p *RealPublisher) replayPending() {
	p.mu.Lock()
	msgs := p.pending.drain()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("mqtt: reconnected, replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay on %s: %v", m.topic, err)
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
