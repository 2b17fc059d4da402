package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/fingercount/internal/app"
	"github.com/ayusman/fingercount/internal/detector"
	"github.com/ayusman/fingercount/internal/store"
)

func TestPromptMode(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantImage  string
		wantCamera bool
		wantErr    bool
	}{
		{name: "image", input: "1\nhand.jpg\n", wantImage: "hand.jpg"},
		{name: "image without trailing newline", input: "1\n  hand.png  ", wantImage: "hand.png"},
		{name: "camera", input: "2\n", wantCamera: true},
		{name: "unknown choice", input: "3\n", wantErr: true},
		{name: "empty path", input: "1\n\n", wantErr: true},
		{name: "no input", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptMode(strings.NewReader(tt.input), &out, options{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("promptMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.image != tt.wantImage {
				t.Errorf("image = %q, want %q", got.image, tt.wantImage)
			}
			if got.camera != tt.wantCamera {
				t.Errorf("camera = %v, want %v", got.camera, tt.wantCamera)
			}
			if !strings.Contains(out.String(), "1. Detect from image") ||
				!strings.Contains(out.String(), "2. Detect from live camera") {
				t.Errorf("menu not printed:\n%s", out.String())
			}
		})
	}
}

func TestPromptMode_KeepsFlags(t *testing.T) {
	got, err := promptMode(strings.NewReader("2\n"), &bytes.Buffer{}, options{noWindow: true, configPath: "c.json"})
	if err != nil {
		t.Fatalf("promptMode() error = %v", err)
	}
	if !got.noWindow || got.configPath != "c.json" {
		t.Errorf("flags lost: %+v", got)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	t.Setenv("FINGERCOUNT_DATA_DIR", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Listen == "" {
		t.Error("expected default listen address")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := loadConfig("does-not-exist.json"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestNewServer_Unsubscribe(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.PeaceLandmarks()})
	a := app.New(app.Config{Store: st, Detector: mock})
	defer a.Close()

	srv, unsubscribe := newServer(a, st)
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/counts", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := ts.Client().Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		var health struct {
			Clients int `json:"clients"`
		}
		json.NewDecoder(resp.Body).Decode(&health)
		resp.Body.Close()
		if health.Clients == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	process := func() {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
		defer frame.Close()
		if _, err := a.ProcessFrame(&frame); err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
	}

	process()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("expected an update while subscribed: %v", err)
	}

	unsubscribe()
	process()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := conn.ReadMessage(); err == nil {
		t.Errorf("received %s after unsubscribe", msg)
	}
}
