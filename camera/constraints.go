package camera

import "strings"

// Profile captures platform quirks that shape how open constraints are
// built. Rather than branching inline in the open path, the profile is
// resolved once into an ordered list of attempts.
type Profile struct {
	// DropDeviceIDWithFacing marks platforms that reject a device
	// identifier while a facing hint is simultaneously requested. On such
	// platforms the fallback attempt carries the hint alone.
	DropDeviceIDWithFacing bool
}

// DefaultProfile returns the profile for well-behaved platforms: explicit
// device addressing first, facing-hint fallback kept for overconstrained
// recovery.
func DefaultProfile() Profile {
	return Profile{}
}

// ResolveAttempts expands OpenOptions into the ordered constraint attempts
// Open will walk: a primary attempt, plus at most one minimal fallback.
//
// Rules:
//   - DeviceID set, profile tolerant: [device+facing, facing-only]
//   - DeviceID set, DropDeviceIDWithFacing and a facing hint present:
//     the identifier is dropped up front, [facing-only]
//   - DeviceID empty: [facing-only]
//
// The list never exceeds two entries, so overconstrained recovery is a
// single retry, not a retry loop.
func ResolveAttempts(opts OpenOptions, profile Profile) []OpenRequest {
	base := OpenRequest{
		Facing:    opts.Facing,
		Width:     opts.Width,
		Height:    opts.Height,
		TargetFPS: opts.TargetFPS,
	}

	if opts.DeviceID == "" {
		return []OpenRequest{base}
	}

	if profile.DropDeviceIDWithFacing && opts.Facing != FacingUnknown {
		return []OpenRequest{base}
	}

	primary := base
	primary.DeviceID = opts.DeviceID
	return []OpenRequest{primary, base}
}

// backLabelHints are the case-insensitive substrings that mark an
// environment-facing camera label.
var backLabelHints = []string{"back", "rear", "environment"}

// SelectDefaultDevice picks the device to open when the caller has no
// preference: the first device whose label looks back-facing, else the last
// enumerated device.
//
// Labels are unreliable or absent until permission is granted, and back
// cameras are typically enumerated last on mobile platforms, so the label
// match is best-effort with a positional fallback. Returns "" for an empty
// list.
func SelectDefaultDevice(devices []Device) string {
	if len(devices) == 0 {
		return ""
	}
	for _, d := range devices {
		label := strings.ToLower(d.Label)
		for _, hint := range backLabelHints {
			if strings.Contains(label, hint) {
				return d.ID
			}
		}
	}
	return devices[len(devices)-1].ID
}

// FacingFromLabel derives a best-effort facing from a device label.
func FacingFromLabel(label string) Facing {
	l := strings.ToLower(label)
	for _, hint := range backLabelHints {
		if strings.Contains(l, hint) {
			return FacingBack
		}
	}
	if strings.Contains(l, "front") || strings.Contains(l, "user") || strings.Contains(l, "face") {
		return FacingFront
	}
	return FacingUnknown
}
