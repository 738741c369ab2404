package camera

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the user denied camera access.
	// Recovery requires an explicit, user-initiated RequestPermission -
	// never an automatic retry.
	ErrPermissionDenied = errors.New("camera: permission denied")

	// ErrNoDevice means no camera device exists on this platform.
	ErrNoDevice = errors.New("camera: no camera device found")

	// ErrOverconstrained means the requested constraints (device identifier
	// plus facing hint together) are jointly unsatisfiable. Backends return
	// it to request the one-shot facing-hint-only fallback.
	ErrOverconstrained = errors.New("camera: constraints unsatisfiable")

	// ErrBusy means a permission request or open is already in flight on
	// this manager. Callers must serialize; a concurrent open is a caller
	// error, not something the manager queues.
	ErrBusy = errors.New("camera: operation already in flight")
)

// PermissionError reports a failed permission negotiation.
//
// It wraps ErrPermissionDenied or ErrNoDevice so callers can branch with
// errors.Is while still seeing the platform detail.
type PermissionError struct {
	Reason error // ErrPermissionDenied or ErrNoDevice
	Cause  error // underlying platform error, may be nil
}

func (e *PermissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Reason, e.Cause)
	}
	return e.Reason.Error()
}

func (e *PermissionError) Unwrap() error { return e.Reason }

// CameraError reports an open/start failure that was not recovered by the
// overconstrained fallback. It is terminal for the session being opened.
type CameraError struct {
	DeviceID string
	Attempts int // constraint attempts made before giving up
	Cause    error
}

func (e *CameraError) Error() string {
	return fmt.Sprintf("camera: open failed after %d attempt(s) (device %q): %v",
		e.Attempts, e.DeviceID, e.Cause)
}

func (e *CameraError) Unwrap() error { return e.Cause }
