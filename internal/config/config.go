// Package config loads fingercount settings from a JSON file and the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/detector"
)

// Environment variables that override file settings.
const (
	EnvListen    = "FINGERCOUNT_LISTEN"
	EnvCameraID  = "FINGERCOUNT_CAMERA_ID"
	EnvModelPath = "FINGERCOUNT_MODEL_PATH"
	EnvDataDir   = "FINGERCOUNT_DATA_DIR"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// DBFile is the database file name inside DataDir.
const DBFile = "fingercount.db"

// Config is the application configuration.
type Config struct {
	// Camera
	CameraID int  `json:"camera_id"`
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	FPS      int  `json:"fps"`
	Mirror   bool `json:"mirror"`

	// Detector
	ModelPath              string  `json:"model_path"`
	MaxHands               int     `json:"max_hands"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinPresenceConfidence  float64 `json:"min_presence_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`

	// Storage
	DataDir        string `json:"data_dir"`
	RecordSessions bool   `json:"record_sessions"`

	// Server
	Listen string `json:"listen"`

	// Hooks
	HookDir     string `json:"hook_dir"`
	HookTimeout string `json:"hook_timeout"` // duration string like "5s"
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".fingercount")

	cam := capture.DefaultOptions()
	det := detector.DefaultConfig()

	return &Config{
		CameraID: cam.DeviceID,
		Width:    cam.Width,
		Height:   cam.Height,
		FPS:      cam.FPS,
		Mirror:   cam.Mirror,

		ModelPath:              det.ModelPath,
		MaxHands:               det.MaxHands,
		MinDetectionConfidence: det.MinConfidence,
		MinPresenceConfidence:  det.MinPresenceConf,
		MinTrackingConfidence:  det.MinTrackingConf,

		DataDir:        dataDir,
		RecordSessions: true,

		Listen: "127.0.0.1:8080",

		HookDir:     hookDirFor(dataDir),
		HookTimeout: "5s",
	}
}

// Load reads a JSON config file over the defaults. The file must have a
// .json extension and be at most 1MB. Omitted fields keep their defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	defaultDataDir, defaultHookDir := cfg.DataDir, cfg.HookDir
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.HookDir == defaultHookDir && cfg.DataDir != defaultDataDir {
		cfg.HookDir = hookDirFor(cfg.DataDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from FINGERCOUNT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvCameraID); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCameraID, v, err)
		}
		c.CameraID = id
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		// A hook dir still at its place under the old data dir moves along.
		if c.HookDir == hookDirFor(c.DataDir) {
			c.HookDir = hookDirFor(v)
		}
		c.DataDir = v
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.CameraID < 0 {
		return fmt.Errorf("camera_id must be non-negative, got %d", c.CameraID)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("width and height must be non-negative, got %dx%d", c.Width, c.Height)
	}
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("fps must be between 1 and 120, got %d", c.FPS)
	}
	if c.ModelPath == "" {
		return fmt.Errorf("model_path must be set")
	}
	if c.MaxHands < 1 {
		return fmt.Errorf("max_hands must be at least 1, got %d", c.MaxHands)
	}

	confidences := []struct {
		name  string
		value float64
	}{
		{"min_detection_confidence", c.MinDetectionConfidence},
		{"min_presence_confidence", c.MinPresenceConfidence},
		{"min_tracking_confidence", c.MinTrackingConfidence},
	}
	for _, conf := range confidences {
		if conf.value < 0 || conf.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %f", conf.name, conf.value)
		}
	}

	if c.HookTimeout != "" {
		d, err := time.ParseDuration(c.HookTimeout)
		if err != nil {
			return fmt.Errorf("invalid hook_timeout '%s': %w", c.HookTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("hook_timeout must be positive, got %s", c.HookTimeout)
		}
	}

	return nil
}

func hookDirFor(dataDir string) string {
	return filepath.Join(dataDir, "hooks")
}

// DBPath returns the SQLite database path inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFile)
}

// HookTimeoutDuration returns the parsed hook timeout, or zero when unset or
// invalid.
func (c *Config) HookTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.HookTimeout)
	if err != nil {
		return 0
	}
	return d
}

// DetectorConfig returns the live detector settings, in video mode.
func (c *Config) DetectorConfig() detector.Config {
	return c.detectorConfig(detector.ModeVideo)
}

// ImageDetectorConfig returns the still-image detector settings, in image
// mode.
func (c *Config) ImageDetectorConfig() detector.Config {
	return c.detectorConfig(detector.ModeImage)
}

func (c *Config) detectorConfig(mode detector.Mode) detector.Config {
	return detector.Config{
		ModelPath:       c.ModelPath,
		Mode:            mode,
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinDetectionConfidence,
		MinPresenceConf: c.MinPresenceConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
	}
}

// CameraOptions returns the camera settings.
func (c *Config) CameraOptions() capture.Options {
	return capture.Options{
		DeviceID: c.CameraID,
		Width:    c.Width,
		Height:   c.Height,
		FPS:      c.FPS,
		Mirror:   c.Mirror,
	}
}
