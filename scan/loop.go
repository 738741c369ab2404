package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/l3lasx/poc-barcodescanner/camera"
	"github.com/l3lasx/poc-barcodescanner/decode"
)

// DefaultInterval is the polling cadence between decode attempts.
const DefaultInterval = 100 * time.Millisecond

// Source is the view of a live session the loop needs: frames to decode and
// liveness to observe. *camera.Session satisfies it.
type Source interface {
	Frames() <-chan camera.Frame
	Active() bool
}

// Config shapes one loop instance.
type Config struct {
	// Interval between decode attempts (default 100ms)
	Interval time.Duration
	// DebounceWindow for duplicate suppression (default 2.5s)
	DebounceWindow time.Duration
}

// Stats is a point-in-time snapshot of loop counters.
type Stats struct {
	// Attempts is the number of decode attempts made
	Attempts uint64
	// Hits is the number of decodes accepted and forwarded
	Hits uint64
	// Misses is the number of attempts with no code in frame
	Misses uint64
	// Faults is the number of unexpected decoder errors
	Faults uint64
	// Debounced is the number of duplicate results suppressed
	Debounced uint64
}

// Loop repeatedly presents frames to a decoder and dispatches accepted
// results.
//
// Lifecycle: New() → Start() → Stop(). One Start per Loop; a stopped loop
// is done, a new session gets a new Loop (and with it fresh debounce state).
type Loop struct {
	cfg Config

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	attempts  atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	faults    atomic.Uint64
	debounced atomic.Uint64
}

// New creates a loop with the given config, applying defaults.
func New(cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	return &Loop{cfg: cfg}
}

// Start begins the decode cycle against src. Non-blocking: the loop runs in
// its own goroutine until Stop, the source leaving its active state, or the
// frame channel closing.
//
// onResult receives accepted (post-debounce) results; onError receives
// decoder faults. Both run on the loop goroutine, so neither is ever invoked
// after Stop returns.
func (l *Loop) Start(src Source, dec decode.Decoder, onResult func(decode.Result), onError func(error)) error {
	if src == nil || dec == nil {
		return errors.New("scan: source and decoder are required")
	}
	if onResult == nil {
		return errors.New("scan: onResult callback is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return fmt.Errorf("scan: loop already started")
	}
	l.started = true

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	l.wg.Add(1)
	go l.run(ctx, src, dec, onResult, onError)

	slog.Info("scan: loop started",
		"interval", l.cfg.Interval,
		"debounce_window", l.cfg.DebounceWindow,
	)
	return nil
}

// Stop halts the loop. Idempotent, callable from any state. It releases no
// camera resources (that is the session owner's job) but guarantees no
// further callbacks occur after it returns.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	l.wg.Wait()
	slog.Info("scan: loop stopped",
		"attempts", l.attempts.Load(),
		"hits", l.hits.Load(),
		"misses", l.misses.Load(),
		"faults", l.faults.Load(),
		"debounced", l.debounced.Load(),
	)
}

func (l *Loop) run(ctx context.Context, src Source, dec decode.Decoder, onResult func(decode.Result), onError func(error)) {
	defer l.wg.Done()

	debounce := NewDebounce(l.cfg.DebounceWindow)
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	// latest is the newest frame seen so far; attempts reuse it until a
	// fresher one arrives. Stale frames in between are skipped, not queued.
	var latest image.Image
	var latestSeq uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !src.Active() {
			slog.Debug("scan: session no longer active, loop exiting")
			return
		}

		if closed := l.drainLatest(src, &latest, &latestSeq); closed {
			slog.Debug("scan: frame channel closed, loop exiting")
			return
		}
		if latest == nil {
			// No frame yet; nothing to attempt.
			continue
		}

		l.attempts.Add(1)
		result, err := dec.Decode(latest)
		switch {
		case err == nil:
			if debounce.Accept(result.Text, result.Timestamp) {
				l.hits.Add(1)
				onResult(result)
			} else {
				l.debounced.Add(1)
			}
		case errors.Is(err, decode.ErrNoCode):
			// Expected: no symbol in this frame. Silent, and the
			// debounce state is left alone.
			l.misses.Add(1)
		default:
			// A single bad frame, not a broken session.
			l.faults.Add(1)
			slog.Warn("scan: decoder fault", "seq", latestSeq, "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}
}

// drainLatest pulls every ready frame off the channel and keeps the newest.
// Returns true when the channel is closed.
func (l *Loop) drainLatest(src Source, latest *image.Image, latestSeq *uint64) bool {
	for {
		select {
		case frame, ok := <-src.Frames():
			if !ok {
				return true
			}
			img, err := decode.FrameImage(frame)
			if err != nil {
				slog.Warn("scan: unusable frame", "seq", frame.Seq, "error", err)
				continue
			}
			*latest = img
			*latestSeq = frame.Seq
		default:
			return false
		}
	}
}

// Stats returns a snapshot of loop counters. Thread-safe.
func (l *Loop) Stats() Stats {
	return Stats{
		Attempts:  l.attempts.Load(),
		Hits:      l.hits.Load(),
		Misses:    l.misses.Load(),
		Faults:    l.faults.Load(),
		Debounced: l.debounced.Load(),
	}
}
