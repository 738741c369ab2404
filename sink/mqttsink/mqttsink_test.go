package mqttsink

import (
	"context"
	"testing"
	"time"

	"github.com/l3lasx/poc-barcodescanner/sink"
)

func TestEmitter_DefaultQoS(t *testing.T) {
	e := New(Config{Broker: "localhost:1883", ClientID: "test"})
	if e.cfg.QoS != 1 {
		t.Errorf("Expected default QoS 1, got %d", e.cfg.QoS)
	}
}

func TestEmitter_OnScanWithoutConnection(t *testing.T) {
	e := New(Config{Broker: "localhost:1883", ClientID: "test", Topic: "scanner/events"})

	ev := sink.Event{ID: "ev-1", Text: "4006381333931", Format: "EAN-13", At: time.Now()}
	if err := e.OnScan(context.Background(), ev); err == nil {
		t.Fatal("Expected error publishing without a connection")
	}

	stats := e.Stats()
	if stats.Connected {
		t.Error("Expected not connected")
	}
	if stats.Published != 0 {
		t.Errorf("Expected 0 published, got %d", stats.Published)
	}
	if stats.Errors != 1 {
		t.Errorf("Expected 1 error counted, got %d", stats.Errors)
	}
}

func TestEmitter_DisconnectWithoutConnect(t *testing.T) {
	e := New(Config{Broker: "localhost:1883", ClientID: "test"})
	// Safe teardown on a never-connected emitter.
	e.Disconnect()
	if e.Stats().Connected {
		t.Error("Expected not connected after Disconnect")
	}
}
