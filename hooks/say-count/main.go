// Package main provides a hook that speaks the finger count aloud.
// It uses `say` on macOS and `spd-say` or `espeak` elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Event is the input from the hook executor.
type Event struct {
	Event    string          `json:"event"`
	Total    int             `json:"total"`
	Previous int             `json:"previous"`
	Config   json.RawMessage `json:"config"`
}

// Response is the output to the hook executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is the hook's manifest config.
type Config struct {
	Voice string `json:"voice"`
	// DryRun reports the phrase without speaking it.
	DryRun bool `json:"dry_run"`
}

func main() {
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode event: %v", err)})
		return
	}

	if ev.Event != "count_changed" {
		writeResponse(Response{Error: fmt.Sprintf("unknown event: %s", ev.Event)})
		return
	}

	var cfg Config
	if len(ev.Config) > 0 {
		if err := json.Unmarshal(ev.Config, &cfg); err != nil {
			writeResponse(Response{Error: fmt.Sprintf("failed to parse config: %v", err)})
			return
		}
	}

	phrase := buildPhrase(ev.Total)
	data, _ := json.Marshal(map[string]string{"phrase": phrase})

	if !cfg.DryRun {
		if err := speak(phrase, cfg.Voice); err != nil {
			writeResponse(Response{Error: err.Error(), Data: data})
			return
		}
	}

	writeResponse(Response{Success: true, Data: data})
}

// buildPhrase turns a count into a spoken sentence.
func buildPhrase(total int) string {
	switch total {
	case 0:
		return "No fingers"
	case 1:
		return "One finger"
	default:
		return fmt.Sprintf("%d fingers", total)
	}
}

// speechCommand picks the text-to-speech command for the platform.
func speechCommand(goos, phrase, voice string) (string, []string, error) {
	if goos == "darwin" {
		if voice != "" {
			return "say", []string{"-v", voice, phrase}, nil
		}
		return "say", []string{phrase}, nil
	}

	for _, name := range []string{"spd-say", "espeak"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if voice != "" {
			flag := "-v"
			if name == "spd-say" {
				flag = "-y"
			}
			return name, []string{flag, voice, phrase}, nil
		}
		return name, []string{phrase}, nil
	}
	return "", nil, errors.New("no speech command found (need say, spd-say or espeak)")
}

func speak(phrase, voice string) error {
	name, args, err := speechCommand(runtime.GOOS, phrase, voice)
	if err != nil {
		return err
	}
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
