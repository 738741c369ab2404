package decode

import (
	"image"
	"sync"
)

// PushBuffer adapts a push-based engine (one callback per frame) to the
// pull-based Decoder interface.
//
// It is a single-slot mailbox: Push overwrites any unconsumed result, and
// Decode surfaces the buffered result once, then reports ErrNoCode until the
// engine pushes again. Latest wins; nothing queues.
type PushBuffer struct {
	mu      sync.Mutex
	result  Result
	pending bool
	// Overwrites counts results that were replaced before being pulled
	overwrites uint64
}

// NewPushBuffer creates an empty mailbox.
func NewPushBuffer() *PushBuffer {
	return &PushBuffer{}
}

// Push stores a result from the underlying engine's callback, replacing any
// result not yet pulled. Safe for concurrent use with Decode.
func (b *PushBuffer) Push(r Result) {
	b.mu.Lock()
	if b.pending {
		b.overwrites++
	}
	b.result = r
	b.pending = true
	b.mu.Unlock()
}

// Decode returns the most recent pushed result, consuming it. The frame
// argument is ignored: the engine already saw the frames through its own
// callback path.
func (b *PushBuffer) Decode(_ image.Image) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return Result{}, ErrNoCode
	}
	b.pending = false
	return b.result, nil
}

// Overwrites reports how many pushed results were replaced unconsumed.
func (b *PushBuffer) Overwrites() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overwrites
}
