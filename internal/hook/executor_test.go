package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptHook writes a shell script hook into a temp dir.
func scriptHook(t *testing.T, name, script string, config json.RawMessage) *Hook {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Hook{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Events:     []string{EventCountChanged},
			Config:     config,
		},
		Path:       dir,
		Executable: path,
	}
}

func testEvent() *Event {
	return &Event{
		Event:      EventCountChanged,
		SessionID:  "s1",
		FrameIndex: 12,
		Total:      3,
		Previous:   2,
		Hands:      []HandSummary{{Slot: 0, Handedness: "Right", Count: 3}},
		Time:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestExecutor_Execute(t *testing.T) {
	h := scriptHook(t, "ok", `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"hello"}}
EOF
`, nil)

	resp, err := NewExecutor(5 * time.Second).Execute(h, testEvent())
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true, got false")
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello" {
		t.Errorf("expected message 'hello', got %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	h := scriptHook(t, "echo", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`, json.RawMessage(`{"voice":"Alex"}`))

	resp, err := NewExecutor(5 * time.Second).Execute(h, testEvent())
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var got Event
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed event: %v", err)
	}
	if got.Event != EventCountChanged || got.Total != 3 || got.Previous != 2 || got.FrameIndex != 12 {
		t.Errorf("unexpected echoed event: %+v", got)
	}
	if len(got.Hands) != 1 || got.Hands[0].Count != 3 {
		t.Errorf("unexpected echoed hands: %+v", got.Hands)
	}
	if string(got.Config) != `{"voice":"Alex"}` {
		t.Errorf("expected manifest config attached, got %s", got.Config)
	}
}

func TestExecutor_Execute_DoesNotMutateEvent(t *testing.T) {
	h := scriptHook(t, "cfg", `#!/bin/sh
cat >/dev/null
echo '{"success":true}'
`, json.RawMessage(`{"a":1}`))

	ev := testEvent()
	if _, err := NewExecutor(5*time.Second).Execute(h, ev); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if ev.Config != nil {
		t.Errorf("caller's event gained config %s", ev.Config)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	h := scriptHook(t, "slow", `#!/bin/sh
sleep 10
echo '{"success":true}'
`, nil)

	_, err := NewExecutor(100*time.Millisecond).Execute(h, testEvent())
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got: %v", err)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
		wantMsg string
	}{
		{
			name:    "error response",
			script:  "#!/bin/sh\necho '{\"success\":false,\"error\":\"speaker busy\"}'\n",
			wantMsg: "speaker busy",
		},
		{
			name:    "invalid json",
			script:  "#!/bin/sh\necho 'not valid json'\n",
			wantErr: true,
		},
		{
			name:    "non-zero exit",
			script:  "#!/bin/sh\necho 'boom' >&2\nexit 1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := scriptHook(t, "hook", tt.script, nil)

			resp, err := NewExecutor(5*time.Second).Execute(h, testEvent())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() failed: %v", err)
			}
			if resp.Success {
				t.Error("expected success=false")
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("expected error %q, got %q", tt.wantMsg, resp.Error)
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", got)
	}
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", got)
	}
}
