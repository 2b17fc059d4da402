package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/detector"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if !cfg.Mirror {
		t.Error("expected mirrored camera by default")
	}
	if cfg.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", cfg.MaxHands)
	}
	if !strings.HasSuffix(cfg.DBPath(), filepath.Join(".fingercount", DBFile)) {
		t.Errorf("DBPath() = %q, want it under .fingercount", cfg.DBPath())
	}
	if got := cfg.HookTimeoutDuration(); got != 5*time.Second {
		t.Errorf("HookTimeoutDuration() = %v, want 5s", got)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "fingercount.json", `{
		"camera_id": 1,
		"fps": 30,
		"mirror": false,
		"model_path": "/models/hand_landmarker.task",
		"max_hands": 1,
		"listen": ":9000",
		"hook_timeout": "250ms"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.CameraID = 1
	want.FPS = 30
	want.Mirror = false
	want.ModelPath = "/models/hand_landmarker.task"
	want.MaxHands = 1
	want.Listen = ":9000"
	want.HookTimeout = "250ms"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"wrong extension", "config.yaml", "{}", ".json extension"},
		{"bad json", "bad.json", "{not json", "failed to parse"},
		{"invalid fps", "fps.json", `{"fps": 0}`, "fps must be between"},
		{"invalid confidence", "conf.json", `{"min_detection_confidence": 1.5}`, "min_detection_confidence"},
		{"invalid hook timeout", "hook.json", `{"hook_timeout": "soon"}`, "hook_timeout"},
		{"negative hook timeout", "neg.json", `{"hook_timeout": "-1s"}`, "hook_timeout"},
		{"empty model", "model.json", `{"model_path": ""}`, "model_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_TooLarge(t *testing.T) {
	path := writeConfig(t, "big.json", `{"listen":"`+strings.Repeat("x", maxFileSize)+`"}`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected too large error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvListen, "0.0.0.0:7000")
	t.Setenv(EnvCameraID, "2")
	t.Setenv(EnvModelPath, "/tmp/model.task")
	t.Setenv(EnvDataDir, "/var/lib/fingercount")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Listen != "0.0.0.0:7000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.CameraID != 2 {
		t.Errorf("CameraID = %d", cfg.CameraID)
	}
	if cfg.ModelPath != "/tmp/model.task" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if cfg.DBPath() != filepath.Join("/var/lib/fingercount", DBFile) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if want := filepath.Join("/var/lib/fingercount", "hooks"); cfg.HookDir != want {
		t.Errorf("HookDir = %q, want %q", cfg.HookDir, want)
	}
}

func TestApplyEnv_ExplicitHookDir(t *testing.T) {
	t.Setenv(EnvDataDir, "/var/lib/fingercount")

	cfg := Default()
	cfg.HookDir = "/opt/hooks"
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.HookDir != "/opt/hooks" {
		t.Errorf("HookDir = %q, want /opt/hooks", cfg.HookDir)
	}
}

func TestLoad_HookDirFollowsDataDir(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "derived",
			content: `{"data_dir": "/srv/fc"}`,
			want:    filepath.Join("/srv/fc", "hooks"),
		},
		{
			name:    "explicit",
			content: `{"data_dir": "/srv/fc", "hook_dir": "/opt/hooks"}`,
			want:    "/opt/hooks",
		},
		{
			name:    "default",
			content: `{}`,
			want:    Default().HookDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "fingercount.json", tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.HookDir != tt.want {
				t.Errorf("HookDir = %q, want %q", cfg.HookDir, tt.want)
			}
		})
	}
}

func TestApplyEnv_BadCameraID(t *testing.T) {
	t.Setenv(EnvCameraID, "front")

	if err := Default().ApplyEnv(); err == nil {
		t.Fatal("expected error for non-numeric camera id")
	}
}

func TestHookTimeoutDuration_Unset(t *testing.T) {
	cfg := Default()
	cfg.HookTimeout = ""
	if got := cfg.HookTimeoutDuration(); got != 0 {
		t.Errorf("HookTimeoutDuration() = %v, want 0", got)
	}
}

func TestDetectorConfig(t *testing.T) {
	cfg := Default()
	cfg.ModelPath = "m.task"
	cfg.MaxHands = 1
	cfg.MinTrackingConfidence = 0.7

	want := detector.Config{
		ModelPath:       "m.task",
		Mode:            detector.ModeVideo,
		MaxHands:        1,
		MinConfidence:   0.5,
		MinPresenceConf: 0.5,
		MinTrackingConf: 0.7,
	}
	if diff := cmp.Diff(want, cfg.DetectorConfig()); diff != "" {
		t.Errorf("DetectorConfig() mismatch (-want +got):\n%s", diff)
	}

	want.Mode = detector.ModeImage
	if diff := cmp.Diff(want, cfg.ImageDetectorConfig()); diff != "" {
		t.Errorf("ImageDetectorConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestCameraOptions(t *testing.T) {
	cfg := Default()
	cfg.CameraID = 3
	cfg.Mirror = false

	want := capture.DefaultOptions()
	want.DeviceID = 3
	want.Mirror = false

	if diff := cmp.Diff(want, cfg.CameraOptions()); diff != "" {
		t.Errorf("CameraOptions() mismatch (-want +got):\n%s", diff)
	}
}
