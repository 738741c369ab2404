package camera

import "testing"

// TestSelectDefaultDevice_PrefersBackLabel verifies label-based selection.
func TestSelectDefaultDevice_PrefersBackLabel(t *testing.T) {
	devices := []Device{
		{ID: "a", Label: "Front Camera"},
		{ID: "b", Label: "Back Camera"},
	}
	if got := SelectDefaultDevice(devices); got != "b" {
		t.Errorf("Expected device b, got %q", got)
	}
}

// TestSelectDefaultDevice_LabelVariants covers the rear/environment hints.
func TestSelectDefaultDevice_LabelVariants(t *testing.T) {
	cases := []struct {
		name  string
		label string
	}{
		{"rear", "Rear camera 0"},
		{"environment", "environment-facing"},
		{"uppercase", "BACK CAM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			devices := []Device{
				{ID: "x", Label: tc.label},
				{ID: "y", Label: "Selfie"},
			}
			if got := SelectDefaultDevice(devices); got != "x" {
				t.Errorf("Expected device x for label %q, got %q", tc.label, got)
			}
		})
	}
}

// TestSelectDefaultDevice_PositionalFallback verifies that without usable
// labels the last enumerated device wins.
func TestSelectDefaultDevice_PositionalFallback(t *testing.T) {
	devices := []Device{
		{ID: "x", Label: ""},
		{ID: "y", Label: ""},
	}
	if got := SelectDefaultDevice(devices); got != "y" {
		t.Errorf("Expected last device y, got %q", got)
	}
}

// TestSelectDefaultDevice_Empty verifies the empty-list edge case.
func TestSelectDefaultDevice_Empty(t *testing.T) {
	if got := SelectDefaultDevice(nil); got != "" {
		t.Errorf("Expected empty id for no devices, got %q", got)
	}
}

// TestResolveAttempts verifies the constraint plans per profile.
func TestResolveAttempts(t *testing.T) {
	opts := OpenOptions{DeviceID: "dev0", Facing: FacingBack, Width: 640, Height: 480}

	t.Run("default profile: primary plus fallback", func(t *testing.T) {
		attempts := ResolveAttempts(opts, DefaultProfile())
		if len(attempts) != 2 {
			t.Fatalf("Expected 2 attempts, got %d", len(attempts))
		}
		if attempts[0].DeviceID != "dev0" || attempts[0].Facing != FacingBack {
			t.Errorf("Primary attempt should carry device and facing, got %+v", attempts[0])
		}
		if attempts[1].DeviceID != "" || attempts[1].Facing != FacingBack {
			t.Errorf("Fallback attempt should carry facing hint only, got %+v", attempts[1])
		}
		if attempts[1].Width != 640 || attempts[1].Height != 480 {
			t.Errorf("Fallback should keep resolution hints, got %+v", attempts[1])
		}
	})

	t.Run("drop-device-id profile: identifier removed up front", func(t *testing.T) {
		profile := Profile{DropDeviceIDWithFacing: true}
		attempts := ResolveAttempts(opts, profile)
		if len(attempts) != 1 {
			t.Fatalf("Expected 1 attempt, got %d", len(attempts))
		}
		if attempts[0].DeviceID != "" {
			t.Errorf("Expected no device identifier, got %q", attempts[0].DeviceID)
		}
	})

	t.Run("no device id: single hint attempt", func(t *testing.T) {
		attempts := ResolveAttempts(OpenOptions{Facing: FacingBack}, DefaultProfile())
		if len(attempts) != 1 {
			t.Fatalf("Expected 1 attempt, got %d", len(attempts))
		}
	})

	t.Run("drop-device-id profile without facing keeps identifier", func(t *testing.T) {
		profile := Profile{DropDeviceIDWithFacing: true}
		attempts := ResolveAttempts(OpenOptions{DeviceID: "dev0"}, profile)
		if len(attempts) != 2 || attempts[0].DeviceID != "dev0" {
			t.Fatalf("Expected device-addressed primary, got %+v", attempts)
		}
	})
}

// TestFacingFromLabel covers the best-effort label parsing.
func TestFacingFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  Facing
	}{
		{"Back Camera", FacingBack},
		{"rear wide", FacingBack},
		{"Environment", FacingBack},
		{"Front Camera", FacingFront},
		{"FaceTime HD", FacingFront},
		{"", FacingUnknown},
		{"USB Video Device", FacingUnknown},
	}
	for _, tc := range cases {
		if got := FacingFromLabel(tc.label); got != tc.want {
			t.Errorf("FacingFromLabel(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}
