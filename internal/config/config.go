// Package config loads the posecue YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/posecue/internal/capture"
	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/pose"
	"github.com/ayusman/posecue/internal/transform"
)

type Config struct {
	LogLevel string         `yaml:"log_level"` // debug, info, warn, error
	TickHz   int            `yaml:"tick_hz"`   // render loop rate
	Camera   capture.Config `yaml:"camera"`
	Pose     PoseConfig     `yaml:"pose"`
	Cue      cue.Thresholds `yaml:"cue"`
	Effect   EffectConfig   `yaml:"effect"`
	Audio    AudioConfig    `yaml:"audio"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Display  DisplayConfig  `yaml:"display"`
	Hooks    HooksConfig    `yaml:"hooks"`
}

type PoseConfig struct {
	Extractor pose.Extractor `yaml:"extractor"`
	Options   pose.Config    `yaml:"options"`
}

type EffectConfig struct {
	HalftoneStride int `yaml:"halftone_stride"`
}

type AudioConfig struct {
	Enabled bool   `yaml:"enabled"`
	Near    string `yaml:"near"` // played on entering the near band
	Far     string `yaml:"far"`  // played on entering the far band
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type StoreConfig struct {
	Path          string `yaml:"path"`           // empty means ~/.posecue/posecue.db
	RetentionDays int    `yaml:"retention_days"` // 0 keeps cue history forever
}

type DisplayConfig struct {
	Window bool   `yaml:"window"`
	Title  string `yaml:"title"`
	Tray   bool   `yaml:"tray"`
}

// HooksConfig points at external executables run on every cue.
type HooksConfig struct {
	Dir       string `yaml:"dir"` // empty means ~/.posecue/hooks
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		TickHz:   30,
		Camera:   capture.DefaultConfig(),
		Pose: PoseConfig{
			Extractor: pose.DefaultExtractor(),
			Options:   pose.DefaultConfig(),
		},
		Cue:    cue.DefaultThresholds(),
		Effect: EffectConfig{HalftoneStride: transform.DefaultStride},
		Audio: AudioConfig{
			Enabled: true,
			Near:    "sounds/wow.mp3",
			Far:     "sounds/scary.mp3",
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
		Display: DisplayConfig{
			Window: true,
			Title:  "posecue",
		},
		Store: StoreConfig{RetentionDays: 30},
		Hooks: HooksConfig{TimeoutMs: 2000},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Relative sound paths are resolved against the config file
	dir := filepath.Dir(path)
	cfg.Audio.Near = resolve(dir, cfg.Audio.Near)
	cfg.Audio.Far = resolve(dir, cfg.Audio.Far)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// StorePath returns the database path, defaulting under the user's home.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".posecue", "posecue.db"), nil
}

// HooksDir returns the hooks directory, defaulting under the user's home.
func (c *Config) HooksDir() (string, error) {
	if c.Hooks.Dir != "" {
		return c.Hooks.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".posecue", "hooks"), nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
