package camera

import "context"

// Backend is the platform binding for camera access
//
// Implementations must guarantee:
//   - Probe() acquires the most permissive stream it can and releases it
//     before returning (its only purpose is the permission side effect)
//   - Enumerate() is only meaningful after a successful Probe()
//   - Open() returns ErrOverconstrained when a device identifier and a
//     facing hint cannot be satisfied together (the manager then retries
//     once with the hint alone)
//   - the Stream returned by Open() keeps its frame channel open until
//     Close(), and Close() is idempotent
type Backend interface {
	// Probe transiently acquires a throwaway stream with a generic
	// environment-facing constraint solely to trigger the platform
	// permission prompt, then releases it immediately.
	//
	// Returns ErrPermissionDenied (possibly wrapped) when the user denies
	// access, ErrNoDevice when no camera exists.
	Probe(ctx context.Context) error

	// Enumerate lists the available camera devices. Labels may be empty
	// on platforms that withhold them; order is platform order (back
	// cameras tend to enumerate last on mobile hardware).
	Enumerate(ctx context.Context) ([]Device, error)

	// Open starts a live stream for one concrete constraint attempt.
	// Blocks until the stream is ready or the attempt fails.
	Open(ctx context.Context, req OpenRequest) (Stream, error)
}

// Stream is a live camera stream handle owned by a Session.
type Stream interface {
	// Frames returns the frame channel. It stays open until Close.
	// Frames are delivered with a drop-not-queue policy: when the consumer
	// lags, old frames are discarded to keep latency bounded.
	Frames() <-chan Frame

	// Close stops all capture and releases the device. Idempotent.
	Close() error
}
