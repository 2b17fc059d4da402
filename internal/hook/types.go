// Package hook discovers and runs external executables that react to
// finger-count changes.
package hook

import (
	"encoding/json"
	"slices"
	"time"
)

// EventCountChanged fires when the smoothed total of a live frame differs
// from the previous frame's.
const EventCountChanged = "count_changed"

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and the events it listens to.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// HandSummary is the per-hand part of an Event.
type HandSummary struct {
	Slot       int    `json:"slot"`
	Handedness string `json:"handedness,omitempty"`
	Count      int    `json:"count"`
}

// Event is written as JSON to a hook's stdin.
type Event struct {
	Event      string          `json:"event"`
	SessionID  string          `json:"session_id,omitempty"`
	FrameIndex int             `json:"frame_index"`
	Total      int             `json:"total"`
	Previous   int             `json:"previous"`
	Hands      []HandSummary   `json:"hands"`
	Time       time.Time       `json:"time"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response is read as JSON from a hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribes to event.
func (h *Hook) Handles(event string) bool {
	return slices.Contains(h.Manifest.Events, event)
}
