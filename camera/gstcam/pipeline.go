package gstcam

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/l3lasx/poc-barcodescanner/camera"
)

const (
	streamBuffer  = 10
	playingWait   = 5 * time.Second
	busPollPeriod = 50 * time.Millisecond
)

// gstStream implements camera.Stream over a running capture pipeline.
type gstStream struct {
	pipeline *gst.Pipeline
	frames   chan camera.Frame

	cancel context.CancelFunc

	frameCount    uint64
	framesDropped uint64
	closed        atomic.Bool
}

func (s *gstStream) Frames() <-chan camera.Frame { return s.frames }

// Close stops the pipeline and closes the frame channel. Idempotent.
func (s *gstStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()
	if err := s.pipeline.SetState(gst.StateNull); err != nil {
		slog.Error("gstcam: failed to set pipeline to NULL", "error", err)
	}
	close(s.frames)
	slog.Info("gstcam: capture pipeline stopped",
		"frames", atomic.LoadUint64(&s.frameCount),
		"dropped", atomic.LoadUint64(&s.framesDropped),
	)
	return nil
}

// openPipeline creates, links and starts the capture pipeline:
//
//	v4l2src (or autovideosrc) → videoconvert → videoscale →
//	videorate → capsfilter → appsink
func openPipeline(ctx context.Context, req camera.OpenRequest) (camera.Stream, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("gstcam: failed to create pipeline: %w", err)
	}

	var src *gst.Element
	if req.DeviceID != "" {
		src, err = gst.NewElement("v4l2src")
		if err != nil {
			return nil, fmt.Errorf("gstcam: failed to create v4l2src: %w", err)
		}
		src.SetProperty("device", req.DeviceID)
	} else {
		// Facing-hint-only attempt: let the platform pick the source.
		src, err = gst.NewElement("autovideosrc")
		if err != nil {
			return nil, fmt.Errorf("gstcam: failed to create autovideosrc: %w", err)
		}
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("gstcam: failed to create videoconvert: %w", err)
	}
	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("gstcam: failed to create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("gstcam: failed to create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)
	videorate.SetProperty("skip-to-first", true)

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("gstcam: failed to create capsfilter: %w", err)
	}
	width, height := req.Width, req.Height
	if width == 0 || height == 0 {
		width, height = 1280, 720
	}
	fps := req.TargetFPS
	if fps == 0 {
		fps = 10
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(buildCaps(width, height, fps)))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("gstcam: failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1) // keep only latest frame
	appsink.SetProperty("drop", true)

	pipeline.AddMany(src, converter, scaler, videorate, capsfilter, appsink.Element)
	if err := gst.ElementLinkMany(src, converter, scaler, videorate, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("gstcam: failed to link pipeline elements: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	stream := &gstStream{
		pipeline: pipeline,
		frames:   make(chan camera.Frame, streamBuffer),
		cancel:   cancel,
	}

	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return stream.onNewSample(sink, streamCtx, width, height)
		},
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		cancel()
		pipeline.SetState(gst.StateNull)
		return nil, classifyOpenError(err.Error(), req.DeviceID)
	}

	if err := waitForPlaying(ctx, pipeline, req.DeviceID); err != nil {
		cancel()
		pipeline.SetState(gst.StateNull)
		return nil, err
	}

	slog.Info("gstcam: capture pipeline playing", "device_id", req.DeviceID)
	return stream, nil
}

// onNewSample pulls a sample from the appsink, copies the pixel data and
// forwards a frame with a drop-not-queue policy.
func (s *gstStream) onNewSample(sink *app.Sink, ctx context.Context, width, height int) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		// A single corrupted frame should not kill the pipeline.
		slog.Warn("gstcam: failed to pull sample from appsink, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("gstcam: failed to get buffer from sample, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("gstcam: empty buffer received")
		return gst.FlowOK
	}

	// Copy frame data (GStreamer will reuse the buffer)
	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	frame := camera.Frame{
		Seq:       atomic.AddUint64(&s.frameCount, 1),
		Timestamp: time.Now(),
		Width:     width,
		Height:    height,
		Data:      frameData,
		TraceID:   uuid.New().String(),
	}

	select {
	case s.frames <- frame:
	case <-ctx.Done():
	default:
		atomic.AddUint64(&s.framesDropped, 1)
		slog.Debug("gstcam: dropping frame, channel full",
			"seq", frame.Seq,
			"trace_id", frame.TraceID,
		)
	}

	return gst.FlowOK
}

// waitForPlaying polls the pipeline bus until PLAYING is reached, an error
// message arrives, or the wait times out.
func waitForPlaying(ctx context.Context, pipeline *gst.Pipeline, deviceID string) error {
	bus := pipeline.GetPipelineBus()
	deadline := time.Now().Add(playingWait)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg := bus.TimedPop(busPollPeriod)
		if msg == nil {
			continue
		}

		switch msg.Type() {
		case gst.MessageError:
			gerr := msg.ParseError()
			return classifyOpenError(gerr.Error()+" "+gerr.DebugString(), deviceID)
		case gst.MessageStateChanged:
			if msg.Source() == pipeline.GetName() {
				_, newState := msg.ParseStateChanged()
				if newState == gst.StatePlaying {
					return nil
				}
			}
		}
	}
	return fmt.Errorf("gstcam: pipeline did not reach PLAYING within %s", playingWait)
}

// classifyOpenError maps GStreamer failure text onto the camera error
// taxonomy. go-gst's GError does not expose Domain(), so this relies on
// message keywords the same way the capture bus monitor does.
func classifyOpenError(msg, deviceID string) error {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "permission denied"), strings.Contains(lower, "not authorized"):
		return fmt.Errorf("%w: %s", camera.ErrPermissionDenied, msg)
	case strings.Contains(lower, "no such file"),
		strings.Contains(lower, "no device"),
		strings.Contains(lower, "cannot identify device"),
		strings.Contains(lower, "device not found"):
		return fmt.Errorf("%w: %s", camera.ErrNoDevice, msg)
	case deviceID != "" &&
		(strings.Contains(lower, "not-negotiated") ||
			strings.Contains(lower, "not negotiated") ||
			strings.Contains(lower, "caps")):
		// The explicit device cannot satisfy the requested caps; signal
		// the manager to retry with the hint-only attempt.
		return fmt.Errorf("%w: %s", camera.ErrOverconstrained, msg)
	default:
		return fmt.Errorf("gstcam: pipeline error: %s", msg)
	}
}

// buildCaps builds the RGB caps string with a framerate constraint.
// Sub-1fps targets map to a 1/N fraction.
func buildCaps(width, height int, fps float64) string {
	numerator, denominator := 1, 1
	if fps < 1.0 {
		denominator = int(1.0 / fps)
	} else {
		numerator = int(fps)
	}
	return fmt.Sprintf(
		"video/x-raw,format=RGB,width=%d,height=%d,framerate=%d/%d",
		width, height, numerator, denominator,
	)
}
