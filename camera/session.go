package camera

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// sessionBuffer is the public frame channel depth. Small on purpose: stale
// frames are dropped, never queued.
const sessionBuffer = 10

// Session is one camera-stream lifetime, owned exclusively by a Manager.
//
// The zero value is a never-opened session: Close is a no-op and State
// reports Idle. Failed and Stopped are terminal; reopening means a new
// Session.
type Session struct {
	// ID uniquely identifies this session instance
	ID string

	deviceID string
	state    atomic.Int32

	stream Stream
	frames chan Frame

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Statistics (atomic for thread-safety)
	frameCount    atomic.Uint64
	framesDropped atomic.Uint64
	openRetries   atomic.Uint32

	mu          sync.Mutex
	lastFrameAt time.Time

	closed atomic.Bool
	// Shutdown protection (frames may be closed by the pump on backend
	// death or by Close, whichever comes first)
	framesClosed atomic.Bool
}

func newSession(deviceID string) *Session {
	return &Session{
		ID:       uuid.New().String(),
		deviceID: deviceID,
		frames:   make(chan Frame, sessionBuffer),
	}
}

// State returns the current lifecycle state. Thread-safe.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Active reports whether the session is currently producing frames.
func (s *Session) Active() bool { return s.State() == StateActive }

// DeviceID returns the identifier of the device backing this session.
func (s *Session) DeviceID() string { return s.deviceID }

// Frames returns the session frame channel. The channel is closed when the
// session stops. Consumers that lag see frames dropped, not queued.
func (s *Session) Frames() <-chan Frame { return s.frames }

func (s *Session) setState(st SessionState) {
	s.state.Store(int32(st))
}

// activate attaches the backend stream and starts the pump goroutine that
// forwards backend frames to the public channel with drop accounting.
func (s *Session) activate(stream Stream) {
	s.stream = stream
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.setState(StateActive)

	s.wg.Add(1)
	go s.pump()
}

func (s *Session) pump() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case frame, ok := <-s.stream.Frames():
			if !ok {
				// Close cancels the context and releases the stream
				// together, so both select cases may be ready at once.
				// Only an unasked-for channel close is a backend death.
				if s.closed.Load() {
					return
				}
				if s.state.CompareAndSwap(int32(StateActive), int32(StateFailed)) {
					slog.Warn("camera: backend stream closed unexpectedly",
						"session_id", s.ID,
						"device_id", s.deviceID,
					)
				}
				s.closeFrames()
				return
			}

			s.frameCount.Add(1)
			s.mu.Lock()
			s.lastFrameAt = time.Now()
			s.mu.Unlock()

			select {
			case s.frames <- frame:
			case <-s.ctx.Done():
				return
			default:
				// Channel full - drop frame and track metric
				s.framesDropped.Add(1)
				slog.Debug("camera: dropping frame, channel full",
					"seq", frame.Seq,
					"trace_id", frame.TraceID,
				)
			}
		}
	}
}

// Close stops all capture, releases the device and transitions the session
// to Stopped. Safe to call multiple times and on a never-opened session.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	if s.stream == nil {
		// Never opened: nothing was acquired, nothing to release.
		if s.State() != StateFailed {
			s.setState(StateStopped)
		}
		return nil
	}

	slog.Info("camera: closing session",
		"session_id", s.ID,
		"device_id", s.deviceID,
		"frames", s.frameCount.Load(),
		"dropped", s.framesDropped.Load(),
	)

	s.cancel()
	err := s.stream.Close()
	s.wg.Wait()
	s.closeFrames()
	// Failed stays terminal; everything else lands in Stopped.
	if s.State() != StateFailed {
		s.setState(StateStopped)
	}
	return err
}

// closeFrames closes the public channel exactly once.
func (s *Session) closeFrames() {
	if s.framesClosed.CompareAndSwap(false, true) {
		close(s.frames)
	}
}

// Stats returns a point-in-time snapshot of session counters. Thread-safe.
func (s *Session) Stats() SessionStats {
	var latencyMS int64
	s.mu.Lock()
	if !s.lastFrameAt.IsZero() {
		latencyMS = time.Since(s.lastFrameAt).Milliseconds()
	}
	s.mu.Unlock()

	return SessionStats{
		FrameCount:    s.frameCount.Load(),
		FramesDropped: s.framesDropped.Load(),
		OpenRetries:   s.openRetries.Load(),
		LatencyMS:     latencyMS,
		State:         s.State(),
		DeviceID:      s.deviceID,
	}
}
