// Package scanner wires the camera manager, decode loop, decoder engine and
// event sinks into one service instance.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/l3lasx/poc-barcodescanner/camera"
	"github.com/l3lasx/poc-barcodescanner/config"
	"github.com/l3lasx/poc-barcodescanner/decode"
	"github.com/l3lasx/poc-barcodescanner/decode/qr"
	"github.com/l3lasx/poc-barcodescanner/decode/zxing"
	"github.com/l3lasx/poc-barcodescanner/metrics"
	"github.com/l3lasx/poc-barcodescanner/scan"
	"github.com/l3lasx/poc-barcodescanner/sink"
)

// Options carries the pluggable collaborators.
type Options struct {
	// Backend is the platform camera binding (required)
	Backend camera.Backend
	// Decoder overrides the config-selected engine (optional)
	Decoder decode.Decoder
	// Sinks are subscribed to the event bus by id (optional)
	Sinks map[string]sink.Sink
}

// Stats aggregates the service counters.
type Stats struct {
	Session camera.SessionStats `json:"session"`
	Loop    scan.Stats          `json:"loop"`
	Bus     sink.BusStats       `json:"bus"`
	Uptime  time.Duration       `json:"uptime"`
}

// Scanner is the service orchestrator: permission → device selection →
// open (with constraint fallback) → optional warmup → decode loop → event
// fan-out.
type Scanner struct {
	cfg     *config.Config
	manager *camera.Manager
	decoder decode.Decoder
	bus     *sink.Bus

	mu      sync.Mutex
	session *camera.Session
	loop    *scan.Loop
	started time.Time
	running bool
}

// New creates a scanner service from config and collaborators.
func New(cfg *config.Config, opts Options) (*Scanner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("scanner: config is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("scanner: camera backend is required")
	}

	decoder := opts.Decoder
	if decoder == nil {
		var err error
		decoder, err = BuildDecoder(cfg.Decoder)
		if err != nil {
			return nil, err
		}
	}

	profile := camera.Profile{DropDeviceIDWithFacing: cfg.Camera.DropDeviceIDWithFacing}

	s := &Scanner{
		cfg:     cfg,
		manager: camera.NewManager(opts.Backend, profile),
		decoder: decoder,
		bus:     sink.NewBus(),
	}

	for id, sk := range opts.Sinks {
		if err := s.bus.Subscribe(id, sk); err != nil {
			return nil, fmt.Errorf("scanner: subscribe %s: %w", id, err)
		}
	}
	return s, nil
}

// Start acquires permission, opens the camera and starts scanning.
//
// Permission and open failures are returned synchronously and leave the
// scanner stopped; a retry is an explicit new Start call (user-initiated,
// never automatic). A successful Start runs until Stop.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scanner: already running")
	}
	s.mu.Unlock()

	devices, err := s.manager.RequestPermission(ctx)
	if err != nil {
		return err
	}

	deviceID := s.cfg.Camera.DeviceID
	if deviceID == "" {
		deviceID = camera.SelectDefaultDevice(devices)
	}

	session, err := s.manager.Open(ctx, camera.OpenOptions{
		DeviceID:  deviceID,
		Facing:    parseFacing(s.cfg.Camera.Facing),
		Width:     s.cfg.Camera.Width,
		Height:    s.cfg.Camera.Height,
		TargetFPS: s.cfg.Camera.FPS,
	})
	if err != nil {
		metrics.SessionState.Set(float64(camera.StateFailed))
		return err
	}
	metrics.SessionState.Set(float64(camera.StateActive))
	if retries := session.Stats().OpenRetries; retries > 0 {
		metrics.OpenRetries.Add(float64(retries))
	}

	if s.cfg.Camera.WarmupSeconds > 0 {
		warmup := time.Duration(s.cfg.Camera.WarmupSeconds) * time.Second
		stats, err := session.Warmup(ctx, warmup)
		if err != nil {
			slog.Warn("scanner: warmup inconclusive, continuing", "error", err)
		} else if !stats.IsStable {
			slog.Warn("scanner: camera frame rate unstable",
				"fps_mean", stats.FPSMean,
				"fps_stddev", stats.FPSStdDev,
			)
		}
	}

	loop := scan.New(scan.Config{
		Interval:       s.cfg.ScanInterval(),
		DebounceWindow: s.cfg.DebounceWindow(),
	})
	if err := loop.Start(session, s.decoder, s.onResult(session.ID), s.onFault); err != nil {
		session.Close()
		return err
	}

	s.mu.Lock()
	s.session = session
	s.loop = loop
	s.started = time.Now()
	s.running = true
	s.mu.Unlock()

	slog.Info("scanner: started",
		"instance_id", s.cfg.InstanceID,
		"session_id", session.ID,
		"device_id", session.DeviceID(),
	)
	return nil
}

// onResult forwards an accepted decode to the event bus.
func (s *Scanner) onResult(sessionID string) func(decode.Result) {
	return func(r decode.Result) {
		metrics.DecodeAttempts.WithLabelValues("hit").Inc()
		metrics.ScanEvents.WithLabelValues(string(r.Format)).Inc()
		s.bus.Publish(sink.Event{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Text:      r.Text,
			Format:    string(r.Format),
			At:        r.Timestamp,
		})
	}
}

// onFault records a decoder fault. Non-fatal: the loop already continued.
func (s *Scanner) onFault(err error) {
	metrics.DecodeAttempts.WithLabelValues("fault").Inc()
	slog.Warn("scanner: decoder fault", "error", err)
}

// Stop halts the loop first, then releases the camera, unconditionally -
// including when open never succeeded. Idempotent.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	loop := s.loop
	session := s.session
	s.loop = nil
	s.session = nil
	s.running = false
	s.mu.Unlock()

	if loop != nil {
		loop.Stop()
		stats := loop.Stats()
		metrics.DecodeAttempts.WithLabelValues("miss").Add(float64(stats.Misses))
		metrics.DecodeAttempts.WithLabelValues("debounced").Add(float64(stats.Debounced))
	}
	var err error
	if session != nil {
		metrics.FramesDropped.Add(float64(session.Stats().FramesDropped))
		err = session.Close()
		metrics.SessionState.Set(float64(camera.StateStopped))
	}
	return err
}

// Close stops scanning and shuts the event bus down.
func (s *Scanner) Close() error {
	err := s.Stop()
	s.bus.Close()
	return err
}

// Running reports whether a scan session is live.
func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.session != nil && s.session.Active()
}

// Devices returns the enumeration snapshot from the last permission grant.
func (s *Scanner) Devices() []camera.Device { return s.manager.Devices() }

// Stats returns a snapshot of all service counters.
func (s *Scanner) Stats() Stats {
	s.mu.Lock()
	session := s.session
	loop := s.loop
	started := s.started
	s.mu.Unlock()

	out := Stats{Bus: s.bus.Stats()}
	if session != nil {
		out.Session = session.Stats()
	}
	if loop != nil {
		out.Loop = loop.Stats()
	}
	if !started.IsZero() {
		out.Uptime = time.Since(started)
	}
	return out
}

// BuildDecoder constructs the configured decode engine.
func BuildDecoder(cfg config.DecoderConfig) (decode.Decoder, error) {
	switch cfg.Engine {
	case "goqr":
		return qr.New(), nil
	case "zxing", "":
		switch cfg.Mode {
		case "qr":
			return zxing.New(zxing.ModeQR), nil
		case "1d":
			return zxing.New(zxing.ModeOneD), nil
		case "all", "":
			return zxing.New(zxing.ModeAll), nil
		default:
			return nil, fmt.Errorf("scanner: unknown decoder mode %q", cfg.Mode)
		}
	default:
		return nil, fmt.Errorf("scanner: unknown decoder engine %q", cfg.Engine)
	}
}

func parseFacing(s string) camera.Facing {
	switch s {
	case "front":
		return camera.FacingFront
	case "back":
		return camera.FacingBack
	default:
		return camera.FacingUnknown
	}
}
