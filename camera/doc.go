// Package camera owns camera permission negotiation, device enumeration and
// stream lifecycle for a scanner instance.
//
// # Quick Start
//
//	mgr := camera.NewManager(backend, camera.DefaultProfile())
//
//	devices, err := mgr.RequestPermission(ctx)
//	if err != nil {
//	    // Permission denied or no camera. Recovery is an explicit,
//	    // user-initiated RequestPermission call - never automatic.
//	    log.Fatal(err)
//	}
//
//	session, err := mgr.Open(ctx, camera.OpenOptions{
//	    DeviceID: camera.SelectDefaultDevice(devices),
//	    Facing:   camera.FacingBack,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	for frame := range session.Frames() {
//	    // frame.Data contains raw RGB bytes, frame.Width x frame.Height
//	}
//
// # Lifecycle
//
// A Session moves Idle → Requesting → Active | Failed → Stopped. Failed and
// Stopped are terminal for that session instance; a new Open constructs a new
// Session. At most one Session is Active per Manager at a time - switching
// devices is close-then-open, never concurrent open.
//
// # Constraint fallback
//
// Open walks an ordered list of constraint attempts produced from the
// platform Profile. When the backend rejects a device-identifier constraint
// combined with a facing hint as overconstrained, Open retries exactly once
// with the facing hint alone before surfacing the failure.
package camera
