package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Manager negotiates camera permission, enumerates devices and opens and
// closes streams against a platform Backend.
//
// Permission and open are blocking-async: they suspend the caller until the
// platform resolves, and must not be invoked concurrently - a second call
// while one is pending returns ErrBusy rather than queueing.
type Manager struct {
	backend Backend
	profile Profile

	inFlight atomic.Bool

	mu      sync.Mutex
	devices []Device // snapshot from the last successful RequestPermission
	current *Session
}

// NewManager creates a manager over the given platform backend.
func NewManager(backend Backend, profile Profile) *Manager {
	return &Manager{backend: backend, profile: profile}
}

// RequestPermission triggers the platform permission prompt by transiently
// acquiring and releasing a throwaway stream, then enumerates devices.
//
// On denial, or when no camera exists, it returns a *PermissionError and an
// empty device list, and holds no residual stream handles - a later
// user-initiated RequestPermission starts from a clean slate.
func (m *Manager) RequestPermission(ctx context.Context) ([]Device, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer m.inFlight.Store(false)

	slog.Info("camera: requesting permission")

	if err := m.backend.Probe(ctx); err != nil {
		perr := classifyProbeError(err)
		slog.Warn("camera: permission request failed", "error", perr)
		m.mu.Lock()
		m.devices = nil
		m.mu.Unlock()
		return nil, perr
	}

	devices, err := m.backend.Enumerate(ctx)
	if err != nil {
		return nil, &PermissionError{Reason: ErrNoDevice, Cause: err}
	}
	if len(devices) == 0 {
		return nil, &PermissionError{Reason: ErrNoDevice}
	}

	snapshot := make([]Device, len(devices))
	copy(snapshot, devices)
	m.mu.Lock()
	m.devices = snapshot
	m.mu.Unlock()

	slog.Info("camera: permission granted", "devices", len(snapshot))
	return snapshot, nil
}

// Devices returns the device snapshot from the last successful permission
// grant. Empty until RequestPermission succeeds.
func (m *Manager) Devices() []Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Device, len(m.devices))
	copy(out, m.devices)
	return out
}

// Open opens a live stream for the given options.
//
// The options are resolved into an ordered list of constraint attempts (see
// ResolveAttempts). When an attempt fails with ErrOverconstrained the next
// attempt runs - at most one fallback, never a retry loop. Any other
// failure, or exhaustion of the list, surfaces as *CameraError and the
// returned session is in StateFailed.
//
// The camera is an exclusive resource: a session already Active on this
// manager must be closed first, otherwise Open fails.
func (m *Manager) Open(ctx context.Context, opts OpenOptions) (*Session, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer m.inFlight.Store(false)

	m.mu.Lock()
	if m.current != nil && m.current.Active() {
		m.mu.Unlock()
		return nil, fmt.Errorf("camera: session %s still active, close it first", m.current.ID)
	}
	m.mu.Unlock()

	session := newSession(opts.DeviceID)
	session.setState(StateRequesting)

	attempts := ResolveAttempts(opts, m.profile)

	var lastErr error
	for i, req := range attempts {
		slog.Info("camera: opening stream",
			"session_id", session.ID,
			"attempt", i+1,
			"device_id", req.DeviceID,
			"facing", req.Facing.String(),
		)

		stream, err := m.backend.Open(ctx, req)
		if err == nil {
			session.activate(stream)
			m.mu.Lock()
			m.current = session
			m.mu.Unlock()
			slog.Info("camera: session active",
				"session_id", session.ID,
				"device_id", req.DeviceID,
				"retries", session.openRetries.Load(),
			)
			return session, nil
		}

		lastErr = err
		if !errors.Is(err, ErrOverconstrained) || i == len(attempts)-1 {
			break
		}

		// Overconstrained: drop the device identifier and walk to the
		// minimal facing-hint-only attempt.
		session.openRetries.Add(1)
		slog.Warn("camera: constraints unsatisfiable, retrying with facing hint only",
			"session_id", session.ID,
			"device_id", req.DeviceID,
			"facing", req.Facing.String(),
		)
	}

	session.setState(StateFailed)
	return session, &CameraError{
		DeviceID: opts.DeviceID,
		Attempts: int(session.openRetries.Load()) + 1,
		Cause:    lastErr,
	}
}

// Close closes the manager's current session, if any. Idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	session := m.current
	m.mu.Unlock()
	return session.Close()
}

// classifyProbeError maps backend probe failures onto the permission error
// taxonomy, preserving sentinels the backend already used.
func classifyProbeError(err error) *PermissionError {
	switch {
	case errors.Is(err, ErrNoDevice):
		return &PermissionError{Reason: ErrNoDevice, Cause: err}
	case errors.Is(err, ErrPermissionDenied):
		return &PermissionError{Reason: ErrPermissionDenied, Cause: err}
	default:
		return &PermissionError{Reason: ErrPermissionDenied, Cause: err}
	}
}
