// Package sink defines the scan-event contract consumed by the application
// layer and a non-blocking fan-out bus for delivering events to several
// consumers at once.
//
// The sink owns whatever it does with an event (display, rewards, its own
// history window); this package only guarantees each accepted decode is
// delivered at most once per sink.
package sink

import (
	"context"
	"log/slog"
	"time"
)

// Event is one accepted scan, post-debounce.
type Event struct {
	// ID uniquely identifies the event
	ID string `json:"id"`
	// SessionID ties the event to the camera session that produced it
	SessionID string `json:"session_id"`
	// Text is the decoded payload
	Text string `json:"text"`
	// Format is the symbology tag ("EAN-13", "QR", "unknown", ...)
	Format string `json:"format"`
	// At is when the decode was accepted
	At time.Time `json:"at"`
}

// Sink receives accepted scan events. OnScan is invoked at most once per
// accepted decode; implementations timestamp, deduplicate against their own
// history and render as they see fit.
type Sink interface {
	OnScan(ctx context.Context, ev Event) error
}

// Func adapts a plain function to the Sink interface.
type Func func(ctx context.Context, ev Event) error

func (f Func) OnScan(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Log is a Sink that writes events to the structured log. Useful as a
// default subscriber and in development.
type Log struct{}

func (Log) OnScan(_ context.Context, ev Event) error {
	slog.Info("scan event",
		"id", ev.ID,
		"session_id", ev.SessionID,
		"text", ev.Text,
		"format", ev.Format,
	)
	return nil
}
