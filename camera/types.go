package camera

import "time"

// Facing identifies which way a camera points.
type Facing int

const (
	// FacingUnknown means the device label gave no orientation hint.
	FacingUnknown Facing = iota
	// FacingFront is a user-facing camera.
	FacingFront
	// FacingBack is an environment-facing camera.
	FacingBack
)

// String returns a human-readable string representation of the facing
func (f Facing) String() string {
	switch f {
	case FacingFront:
		return "front"
	case FacingBack:
		return "back"
	default:
		return "unknown"
	}
}

// Device describes one enumerated camera.
//
// Devices are an immutable snapshot taken once per permission grant. Label
// may be empty before permission is granted on some platforms; callers must
// tolerate missing labels and fall back to positional selection.
type Device struct {
	// ID is the platform device identifier (e.g. "/dev/video0")
	ID string
	// Label is the human-readable device name; may be empty
	Label string
	// Facing is best-effort, derived from the label
	Facing Facing
}

// SessionState tracks where a Session is in its lifecycle.
type SessionState int32

const (
	// StateIdle is a session that has not been opened yet
	StateIdle SessionState = iota
	// StateRequesting means an open (or permission probe) is in flight
	StateRequesting
	// StateActive means the stream is live and producing frames
	StateActive
	// StateFailed is terminal: the open attempt failed
	StateFailed
	// StateStopped is terminal: the session was closed
	StateStopped
)

// String returns a human-readable string representation of the state
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Frame represents a single video frame with metadata
type Frame struct {
	// Seq is the monotonic sequence number
	Seq uint64
	// Timestamp is when the frame was captured/decoded
	Timestamp time.Time
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Data contains the frame data (RGB format, 3 bytes per pixel)
	Data []byte
	// TraceID is a unique identifier for tracing a frame through the loop
	TraceID string
}

// OpenOptions selects a device and shapes the stream.
//
// DeviceID and Facing are the two addressing modes: explicit identifier
// where the platform supports it, symbolic facing hint where identifiers
// are rejected. Leaving DeviceID empty opens by facing hint alone.
type OpenOptions struct {
	DeviceID string
	Facing   Facing
	// Resolution hints; zero values let the backend pick
	Width  int
	Height int
	// TargetFPS caps the frame rate (0 = backend default)
	TargetFPS float64
}

// OpenRequest is one concrete constraint attempt handed to a Backend.
//
// A request with DeviceID set addresses the device explicitly; a request
// with only Facing set asks the backend to resolve the hint itself.
type OpenRequest struct {
	DeviceID  string
	Facing    Facing
	Width     int
	Height    int
	TargetFPS float64
}

// SessionStats is a point-in-time snapshot of session counters.
type SessionStats struct {
	// FrameCount is the total number of frames delivered
	FrameCount uint64
	// FramesDropped is the total number of frames dropped (channel full)
	FramesDropped uint64
	// OpenRetries is how many constraint fallbacks occurred during Open
	OpenRetries uint32
	// LatencyMS is the time since the last frame in milliseconds
	LatencyMS int64
	// State is the current session state
	State SessionState
	// DeviceID identifies the device backing this session
	DeviceID string
}

// WarmupStats contains statistics collected during the stream warm-up phase
type WarmupStats struct {
	// FramesReceived is the number of frames received during warm-up
	FramesReceived int
	// Duration is the actual warm-up duration
	Duration time.Duration
	// FPSMean is the mean FPS across all frames
	FPSMean float64
	// FPSStdDev is the standard deviation of instantaneous FPS
	FPSStdDev float64
	// IsStable is true if FPS is stable (stddev < 15% of mean)
	IsStable bool
}
