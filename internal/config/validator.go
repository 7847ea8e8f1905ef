package config

import (
	"fmt"

	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/pose"
)

// Validate checks if the configuration is valid, filling defaults for
// optional fields left empty.
func Validate(cfg *Config) error {
	def := Default()

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", cfg.LogLevel)
	}

	if cfg.TickHz <= 0 {
		cfg.TickHz = def.TickHz
	}

	if cfg.Camera.Device < 0 {
		return fmt.Errorf("camera.device must be >= 0")
	}
	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		return fmt.Errorf("camera.width and camera.height must be > 0")
	}
	if cfg.Camera.FPS <= 0 {
		cfg.Camera.FPS = def.Camera.FPS
	}

	if cfg.Pose.Extractor.From == "" {
		cfg.Pose.Extractor.From = def.Pose.Extractor.From
	}
	if cfg.Pose.Extractor.To == "" {
		cfg.Pose.Extractor.To = def.Pose.Extractor.To
	}
	for _, part := range []string{cfg.Pose.Extractor.From, cfg.Pose.Extractor.To} {
		if !knownPart(part) {
			return fmt.Errorf("pose.extractor: unknown keypoint %q", part)
		}
	}
	if cfg.Pose.Extractor.From == cfg.Pose.Extractor.To {
		return fmt.Errorf("pose.extractor: from and to must differ")
	}

	if err := cfg.Cue.Validate(); err != nil {
		return fmt.Errorf("cue: %w", err)
	}

	if cfg.Effect.HalftoneStride <= 0 {
		cfg.Effect.HalftoneStride = def.Effect.HalftoneStride
	}

	if cfg.Audio.Enabled && cfg.Audio.Near == "" && cfg.Audio.Far == "" {
		log.Warn("audio enabled but no sounds configured")
	}

	if cfg.Server.Enabled && cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}

	if cfg.Store.RetentionDays < 0 {
		return fmt.Errorf("store.retention_days must be >= 0")
	}

	if cfg.Hooks.TimeoutMs <= 0 {
		cfg.Hooks.TimeoutMs = def.Hooks.TimeoutMs
	}

	// The tray owns the main thread, and HighGUI windows must be pumped
	// from it, so the two cannot run together.
	if cfg.Display.Tray && cfg.Display.Window {
		log.Warn("display.tray set, disabling display.window")
		cfg.Display.Window = false
	}

	if cfg.Display.Title == "" {
		cfg.Display.Title = def.Display.Title
	}

	return nil
}

func knownPart(part string) bool {
	for _, p := range pose.Parts {
		if p == part {
			return true
		}
	}
	return false
}
