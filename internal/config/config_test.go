package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/pose"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posecue.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
	if cfg.Cue != cue.DefaultThresholds() {
		t.Errorf("Cue = %+v, want defaults", cfg.Cue)
	}
	if cfg.Pose.Options != pose.DefaultConfig() {
		t.Errorf("Pose.Options = %+v, want defaults", cfg.Pose.Options)
	}
}

func TestLoad_Partial(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
cue:
  near: 60
  far: 150
audio:
  near: sounds/hi.wav
pose:
  options:
    max_pose_detections: 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Cue.Near != 60 || cfg.Cue.Far != 150 {
		t.Errorf("Cue = %+v", cfg.Cue)
	}
	if cfg.Pose.Options.MaxPoseDetections != 1 {
		t.Errorf("MaxPoseDetections = %d, want 1", cfg.Pose.Options.MaxPoseDetections)
	}
	// Untouched options keep their defaults
	if cfg.Pose.Options.Architecture != "MobileNetV1" || cfg.Pose.Options.InputResolution != 257 {
		t.Errorf("Pose.Options = %+v", cfg.Pose.Options)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("Camera = %+v", cfg.Camera)
	}

	wantNear := filepath.Join(filepath.Dir(path), "sounds/hi.wav")
	if cfg.Audio.Near != wantNear {
		t.Errorf("Audio.Near = %q, want %q", cfg.Audio.Near, wantNear)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad yaml", "cue: [", "failed to parse config"},
		{"inverted thresholds", "cue:\n  near: 130\n  far: 120\n", "cue"},
		{"negative near", "cue:\n  near: -1\n  far: 120\n", "cue"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"unknown keypoint", "pose:\n  extractor:\n    from: chin\n", "unknown keypoint"},
		{"same keypoints", "pose:\n  extractor:\n    from: nose\n    to: nose\n", "must differ"},
		{"bad size", "camera:\n  width: 0\n", "camera.width"},
		{"negative retention", "store:\n  retention_days: -1\n", "retention_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidThresholdsWrapsSentinel(t *testing.T) {
	_, err := Load(writeConfig(t, "cue:\n  near: 120\n  far: 120\n"))
	if !errors.Is(err, cue.ErrInvalidThresholds) {
		t.Errorf("error = %v, want ErrInvalidThresholds", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := Default()
	cfg.TickHz = 0
	cfg.Effect.HalftoneStride = 0
	cfg.Server.Addr = ""
	cfg.Pose.Extractor = pose.Extractor{}
	cfg.Hooks.TimeoutMs = 0

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.TickHz != 30 || cfg.Effect.HalftoneStride != 5 || cfg.Server.Addr == "" {
		t.Errorf("defaults not filled: %+v", cfg)
	}
	if cfg.Pose.Extractor != pose.DefaultExtractor() {
		t.Errorf("Extractor = %+v", cfg.Pose.Extractor)
	}
	if cfg.Hooks.TimeoutMs != 2000 {
		t.Errorf("Hooks.TimeoutMs = %d, want 2000", cfg.Hooks.TimeoutMs)
	}
}

func TestStorePath(t *testing.T) {
	cfg := Default()
	cfg.Store.Path = "/tmp/x.db"
	if p, _ := cfg.StorePath(); p != "/tmp/x.db" {
		t.Errorf("StorePath() = %q", p)
	}

	cfg.Store.Path = ""
	p, err := cfg.StorePath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(p, filepath.Join(".posecue", "posecue.db")) {
		t.Errorf("StorePath() = %q", p)
	}
}

func TestHooksDir(t *testing.T) {
	cfg := Default()
	cfg.Hooks.Dir = "/opt/hooks"
	if d, _ := cfg.HooksDir(); d != "/opt/hooks" {
		t.Errorf("HooksDir() = %q", d)
	}

	cfg.Hooks.Dir = ""
	d, err := cfg.HooksDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(d, filepath.Join(".posecue", "hooks")) {
		t.Errorf("HooksDir() = %q", d)
	}
}

func TestValidate_TrayDisablesWindow(t *testing.T) {
	cfg := Default()
	cfg.Display.Tray = true
	cfg.Display.Window = true

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Display.Window {
		t.Error("window must be disabled when the tray is enabled")
	}
}
