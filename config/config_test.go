package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "instance_id: kiosk-7\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InstanceID != "kiosk-7" {
		t.Errorf("Expected kiosk-7, got %q", cfg.InstanceID)
	}
	if cfg.Decoder.Engine != "zxing" {
		t.Errorf("Expected default engine zxing, got %q", cfg.Decoder.Engine)
	}
	if cfg.ScanInterval() != 100*time.Millisecond {
		t.Errorf("Expected default interval 100ms, got %v", cfg.ScanInterval())
	}
	if cfg.DebounceWindow() != 2500*time.Millisecond {
		t.Errorf("Expected default debounce 2.5s, got %v", cfg.DebounceWindow())
	}
	if cfg.Camera.Facing != "back" {
		t.Errorf("Expected default facing back, got %q", cfg.Camera.Facing)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
instance_id: kiosk-1
camera:
  device_id: /dev/video2
  facing: back
  width: 640
  height: 480
  fps: 15
  drop_device_id_with_facing: true
scan:
  interval_ms: 50
  debounce_window_ms: 3000
decoder:
  engine: goqr
mqtt:
  broker: localhost:1883
  topic: store/scans
server:
  host: 0.0.0.0
  port: 9000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Camera.DeviceID != "/dev/video2" {
		t.Errorf("Expected /dev/video2, got %q", cfg.Camera.DeviceID)
	}
	if !cfg.Camera.DropDeviceIDWithFacing {
		t.Error("Expected drop_device_id_with_facing true")
	}
	if cfg.Scan.DebounceWindowMS != 3000 {
		t.Errorf("Expected debounce 3000ms, got %d", cfg.Scan.DebounceWindowMS)
	}
	if cfg.MQTT.Broker != "localhost:1883" {
		t.Errorf("Expected broker, got %q", cfg.MQTT.Broker)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad facing", "camera:\n  facing: sideways\n"},
		{"bad fps", "camera:\n  fps: 99\n"},
		{"bad engine", "decoder:\n  engine: cuneiform\n"},
		{"bad mode", "decoder:\n  mode: 3d\n"},
		{"negative interval", "scan:\n  interval_ms: -5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
