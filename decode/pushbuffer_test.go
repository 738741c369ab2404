package decode

import (
	"errors"
	"testing"
	"time"
)

func TestPushBuffer_EmptyIsMiss(t *testing.T) {
	b := NewPushBuffer()
	if _, err := b.Decode(nil); !errors.Is(err, ErrNoCode) {
		t.Fatalf("Expected ErrNoCode on empty buffer, got %v", err)
	}
}

func TestPushBuffer_SurfacesResultOnce(t *testing.T) {
	b := NewPushBuffer()
	b.Push(Result{Text: "123", Format: FormatQR, Timestamp: time.Now()})

	r, err := b.Decode(nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if r.Text != "123" {
		t.Errorf("Expected text 123, got %q", r.Text)
	}

	// Consumed: the next pull is a miss until the engine pushes again.
	if _, err := b.Decode(nil); !errors.Is(err, ErrNoCode) {
		t.Fatalf("Expected ErrNoCode after consumption, got %v", err)
	}
}

func TestPushBuffer_LatestWins(t *testing.T) {
	b := NewPushBuffer()
	b.Push(Result{Text: "old"})
	b.Push(Result{Text: "new"})

	r, err := b.Decode(nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if r.Text != "new" {
		t.Errorf("Expected latest result, got %q", r.Text)
	}
	if b.Overwrites() != 1 {
		t.Errorf("Expected 1 overwrite, got %d", b.Overwrites())
	}
}
