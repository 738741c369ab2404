package scan

import "time"

// DefaultDebounceWindow is the minimum time before an identical decode
// result is accepted again.
const DefaultDebounceWindow = 2500 * time.Millisecond

// Debounce suppresses duplicate decode results.
//
// A result is accepted iff its text differs from the last accepted text, or
// the window has elapsed since that text was last accepted. State is owned
// by one Loop, constructed fresh per session - holding a barcode steadily in
// frame yields one event per window, not dozens per second.
//
// Not safe for concurrent use; the loop is the only caller.
type Debounce struct {
	window   time.Duration
	lastText string
	lastAt   time.Time
}

// NewDebounce creates debounce state with the given window.
// A non-positive window falls back to DefaultDebounceWindow.
func NewDebounce(window time.Duration) *Debounce {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debounce{window: window}
}

// Accept decides whether a result with the given text is forwarded, and
// records it when it is. Rejections leave the state untouched, so the clock
// for a repeated text runs from its last acceptance.
func (d *Debounce) Accept(text string, now time.Time) bool {
	if text == d.lastText && !d.lastAt.IsZero() && now.Sub(d.lastAt) < d.window {
		return false
	}
	d.lastText = text
	d.lastAt = now
	return true
}
