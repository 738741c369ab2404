// Package mqttsink publishes accepted scan events to an MQTT broker as
// JSON, one message per event.
package mqttsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/l3lasx/poc-barcodescanner/sink"
)

// Config shapes the broker connection.
type Config struct {
	// Broker is the host:port of the MQTT broker
	Broker string
	// ClientID identifies this scanner instance to the broker
	ClientID string
	// Topic is where scan events are published
	Topic string
	// QoS for event publishes (default 1: at-least-once)
	QoS byte
}

// EmitterStats is a snapshot of publish counters.
type EmitterStats struct {
	Connected bool
	Published uint64
	Errors    uint64
}

// Emitter is a sink.Sink that publishes events over MQTT.
type Emitter struct {
	cfg    Config
	client mqtt.Client

	mu        sync.Mutex
	connected bool
	published uint64
	errors    uint64
}

// New creates an emitter; call Connect before use.
func New(cfg Config) *Emitter {
	if cfg.QoS == 0 {
		cfg.QoS = 1
	}
	return &Emitter{cfg: cfg}
}

// Connect establishes the broker connection with auto-reconnect enabled.
func (e *Emitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("mqttsink: connection established",
			"broker", e.cfg.Broker,
			"client_id", e.cfg.ClientID,
		)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("mqttsink: connection lost, will auto-reconnect",
			"error", err,
			"broker", e.cfg.Broker,
		)
	}

	e.client = mqtt.NewClient(opts)

	token := e.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqttsink: connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqttsink: connection failed: %w", err)
	}

	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()
	return nil
}

// OnScan publishes one event as JSON to the configured topic.
func (e *Emitter) OnScan(_ context.Context, ev sink.Event) error {
	e.mu.Lock()
	connected := e.connected
	e.mu.Unlock()
	if !connected {
		e.fail()
		return fmt.Errorf("mqttsink: not connected")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		e.fail()
		return fmt.Errorf("mqttsink: marshal event: %w", err)
	}

	token := e.client.Publish(e.cfg.Topic, e.cfg.QoS, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		e.fail()
		return fmt.Errorf("mqttsink: publish timeout")
	}
	if err := token.Error(); err != nil {
		e.fail()
		return fmt.Errorf("mqttsink: publish failed: %w", err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()

	slog.Debug("mqttsink: event published",
		"topic", e.cfg.Topic,
		"event_id", ev.ID,
		"size", len(payload),
	)
	return nil
}

// Disconnect closes the broker connection gracefully.
func (e *Emitter) Disconnect() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250)
	}
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
}

// Stats returns a snapshot of publish counters. Thread-safe.
func (e *Emitter) Stats() EmitterStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EmitterStats{
		Connected: e.connected,
		Published: e.published,
		Errors:    e.errors,
	}
}

func (e *Emitter) fail() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
