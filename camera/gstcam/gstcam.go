// Package gstcam binds package camera to GStreamer via go-gst.
//
// Devices are enumerated with a GStreamer device monitor filtered to video
// sources; streams are captured with a v4l2src pipeline that converts to raw
// RGB and hands frames to an appsink. Requires the gstreamer1.0 runtime.
package gstcam

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/l3lasx/poc-barcodescanner/camera"
)

// Backend implements camera.Backend on top of GStreamer.
type Backend struct{}

// New creates the GStreamer backend with fail-fast validation that the
// GStreamer runtime is actually present.
func New() (*Backend, error) {
	if err := checkGStreamerAvailable(); err != nil {
		return nil, fmt.Errorf("gstcam: GStreamer not available: %w", err)
	}
	return &Backend{}, nil
}

// Probe transiently opens the default video source and tears it down again.
// Its only purpose is the access-check side effect: on platforms where the
// device is gated (permissions, another process holding it), this is where
// the failure surfaces.
func (b *Backend) Probe(ctx context.Context) error {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("gstcam: probe pipeline: %w", err)
	}
	defer pipeline.SetState(gst.StateNull)

	src, err := gst.NewElement("autovideosrc")
	if err != nil {
		return fmt.Errorf("%w: autovideosrc unavailable: %v", camera.ErrNoDevice, err)
	}
	sink, err := gst.NewElement("fakesink")
	if err != nil {
		return fmt.Errorf("gstcam: probe fakesink: %w", err)
	}
	pipeline.AddMany(src, sink)
	if err := gst.ElementLinkMany(src, sink); err != nil {
		return fmt.Errorf("gstcam: probe link: %w", err)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return classifyOpenError(err.Error(), "")
	}

	// Give the source a moment to actually touch the device; access
	// failures arrive as bus errors, not as SetState errors.
	if err := waitForPlaying(ctx, pipeline, ""); err != nil {
		return err
	}

	slog.Debug("gstcam: probe succeeded, releasing throwaway stream")
	return nil
}

// Enumerate lists video source devices via a GStreamer device monitor.
func (b *Backend) Enumerate(ctx context.Context) ([]camera.Device, error) {
	monitor := gst.NewDeviceMonitor()
	monitor.AddFilter("Video/Source", nil)
	if ok := monitor.Start(); !ok {
		return nil, fmt.Errorf("gstcam: device monitor failed to start")
	}
	defer monitor.Stop()

	var devices []camera.Device
	for _, dev := range monitor.GetDevices() {
		label := dev.GetDisplayName()
		id := devicePath(dev)
		if id == "" {
			id = label
		}
		devices = append(devices, camera.Device{
			ID:     id,
			Label:  label,
			Facing: camera.FacingFromLabel(label),
		})
	}

	slog.Info("gstcam: enumerated video sources", "count", len(devices))
	return devices, nil
}

// Open builds and starts a capture pipeline for one constraint attempt.
//
// Caps the attempt asks for (resolution, framerate) that the device cannot
// negotiate surface as camera.ErrOverconstrained when the attempt addressed
// an explicit device, so the manager can fall back to the hint-only attempt.
func (b *Backend) Open(ctx context.Context, req camera.OpenRequest) (camera.Stream, error) {
	slog.Info("gstcam: opening capture pipeline",
		"device_id", req.DeviceID,
		"facing", req.Facing.String(),
		"resolution", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"target_fps", req.TargetFPS,
	)
	return openPipeline(ctx, req)
}

// devicePath extracts the platform path (e.g. /dev/video0) from device
// properties, when present.
func devicePath(dev *gst.Device) string {
	props := dev.GetProperties()
	if props == nil {
		return ""
	}
	if v, err := props.GetValue("device.path"); err == nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if v, err := props.GetValue("api.v4l2.path"); err == nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// checkGStreamerAvailable verifies the GStreamer runtime at construction
// time (fail-fast).
func checkGStreamerAvailable() error {
	gst.Init(nil)
	elem, err := gst.NewElement("fakesrc")
	if err != nil {
		return fmt.Errorf("GStreamer not available or not properly installed: %w", err)
	}
	elem.SetState(gst.StateNull)
	return nil
}
