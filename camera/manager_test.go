package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeStream is a controllable backend stream for tests.
type fakeStream struct {
	ch     chan Frame
	once   sync.Once
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan Frame, 4)}
}

func (s *fakeStream) Frames() <-chan Frame { return s.ch }

func (s *fakeStream) Close() error {
	s.once.Do(func() {
		s.closed = true
		close(s.ch)
	})
	return nil
}

// fakeBackend scripts probe/enumerate/open outcomes.
type fakeBackend struct {
	probeErr     error
	devices      []Device
	openErrs     []error // consumed per Open call; nil means success
	openCalls    []OpenRequest
	streams      []*fakeStream
	probeCalls   int
	enumerateErr error
}

func (b *fakeBackend) Probe(ctx context.Context) error {
	b.probeCalls++
	return b.probeErr
}

func (b *fakeBackend) Enumerate(ctx context.Context) ([]Device, error) {
	return b.devices, b.enumerateErr
}

func (b *fakeBackend) Open(ctx context.Context, req OpenRequest) (Stream, error) {
	b.openCalls = append(b.openCalls, req)
	var err error
	if len(b.openErrs) > 0 {
		err = b.openErrs[0]
		b.openErrs = b.openErrs[1:]
	}
	if err != nil {
		return nil, err
	}
	s := newFakeStream()
	b.streams = append(b.streams, s)
	return s, nil
}

func TestRequestPermission_Denied(t *testing.T) {
	backend := &fakeBackend{probeErr: fmt.Errorf("%w: user dismissed prompt", ErrPermissionDenied)}
	mgr := NewManager(backend, DefaultProfile())

	devices, err := mgr.RequestPermission(context.Background())
	if err == nil {
		t.Fatal("Expected error on denied permission")
	}
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Expected *PermissionError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied in chain, got %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("Expected empty device list, got %d", len(devices))
	}
	if len(mgr.Devices()) != 0 {
		t.Errorf("Expected no residual device snapshot after denial")
	}

	// User-initiated retry after the grant succeeds cleanly.
	backend.probeErr = nil
	backend.devices = []Device{{ID: "cam0", Label: "Back Camera"}}
	devices, err = mgr.RequestPermission(context.Background())
	if err != nil {
		t.Fatalf("Retry after grant failed: %v", err)
	}
	if len(devices) != 1 || devices[0].ID != "cam0" {
		t.Errorf("Expected cam0 after retry, got %+v", devices)
	}
	if backend.probeCalls != 2 {
		t.Errorf("Expected 2 probe calls, got %d", backend.probeCalls)
	}
}

func TestRequestPermission_NoDevices(t *testing.T) {
	backend := &fakeBackend{devices: nil}
	mgr := NewManager(backend, DefaultProfile())

	_, err := mgr.RequestPermission(context.Background())
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("Expected ErrNoDevice, got %v", err)
	}
}

func TestOpen_OverconstrainedRecoversExactlyOnce(t *testing.T) {
	backend := &fakeBackend{
		openErrs: []error{ErrOverconstrained, nil},
	}
	mgr := NewManager(backend, DefaultProfile())

	session, err := mgr.Open(context.Background(), OpenOptions{DeviceID: "cam0", Facing: FacingBack})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	if session.State() != StateActive {
		t.Errorf("Expected Active, got %v", session.State())
	}
	if got := session.Stats().OpenRetries; got != 1 {
		t.Errorf("Expected exactly 1 retry, got %d", got)
	}
	if len(backend.openCalls) != 2 {
		t.Fatalf("Expected 2 open calls, got %d", len(backend.openCalls))
	}
	if backend.openCalls[0].DeviceID != "cam0" {
		t.Errorf("First attempt should address the device, got %+v", backend.openCalls[0])
	}
	if backend.openCalls[1].DeviceID != "" || backend.openCalls[1].Facing != FacingBack {
		t.Errorf("Retry should be facing-hint only, got %+v", backend.openCalls[1])
	}
}

func TestOpen_OverconstrainedTwiceIsTerminal(t *testing.T) {
	backend := &fakeBackend{
		openErrs: []error{ErrOverconstrained, ErrOverconstrained},
	}
	mgr := NewManager(backend, DefaultProfile())

	session, err := mgr.Open(context.Background(), OpenOptions{DeviceID: "cam0", Facing: FacingBack})
	if err == nil {
		t.Fatal("Expected error when fallback also fails")
	}
	var camErr *CameraError
	if !errors.As(err, &camErr) {
		t.Fatalf("Expected *CameraError, got %T: %v", err, err)
	}
	if session.State() != StateFailed {
		t.Errorf("Expected Failed, got %v", session.State())
	}
	// Exactly one retry occurred, not a retry loop.
	if len(backend.openCalls) != 2 {
		t.Errorf("Expected 2 open calls, got %d", len(backend.openCalls))
	}
}

func TestOpen_GenericFailureIsNotRetried(t *testing.T) {
	backend := &fakeBackend{
		openErrs: []error{errors.New("device wedged")},
	}
	mgr := NewManager(backend, DefaultProfile())

	session, err := mgr.Open(context.Background(), OpenOptions{DeviceID: "cam0", Facing: FacingBack})
	if err == nil {
		t.Fatal("Expected error")
	}
	if len(backend.openCalls) != 1 {
		t.Errorf("Generic failure must not be retried, got %d open calls", len(backend.openCalls))
	}
	if session.State() != StateFailed {
		t.Errorf("Expected Failed, got %v", session.State())
	}
	// Closing a failed (never-activated) session is a safe no-op.
	if err := session.Close(); err != nil {
		t.Errorf("Close on failed session: %v", err)
	}
}

func TestOpen_SecondOpenWhileActiveFails(t *testing.T) {
	backend := &fakeBackend{}
	mgr := NewManager(backend, DefaultProfile())

	session, err := mgr.Open(context.Background(), OpenOptions{DeviceID: "cam0"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	if _, err := mgr.Open(context.Background(), OpenOptions{DeviceID: "cam1"}); err == nil {
		t.Fatal("Expected second open to fail while a session is active")
	}

	// Close-then-open is the supported device switch.
	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	next, err := mgr.Open(context.Background(), OpenOptions{DeviceID: "cam1"})
	if err != nil {
		t.Fatalf("Open after close failed: %v", err)
	}
	next.Close()
}

func TestRequestPermission_SerializedInFlight(t *testing.T) {
	block := make(chan struct{})
	backend := &blockingBackend{release: block, entered: make(chan struct{}, 1)}
	mgr := NewManager(backend, DefaultProfile())

	done := make(chan error, 1)
	go func() {
		_, err := mgr.RequestPermission(context.Background())
		done <- err
	}()

	// Wait until the first call is inside Probe, then race a second one.
	<-backend.entered
	if _, err := mgr.RequestPermission(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for concurrent request, got %v", err)
	}

	close(block)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for first request to finish")
	}
}

// blockingBackend parks Probe until released, to exercise the in-flight guard.
type blockingBackend struct {
	release <-chan struct{}
	entered chan struct{}
}

func (b *blockingBackend) Probe(ctx context.Context) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return nil
}

func (b *blockingBackend) Enumerate(ctx context.Context) ([]Device, error) {
	return []Device{{ID: "cam0"}}, nil
}

func (b *blockingBackend) Open(ctx context.Context, req OpenRequest) (Stream, error) {
	return newFakeStream(), nil
}
