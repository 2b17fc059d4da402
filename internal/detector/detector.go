package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrModelNotFound is returned when the hand landmarker model file is missing.
var ErrModelNotFound = errors.New("hand landmarker model not found")

// ModelDownloadURL is where the float16 hand landmarker bundle is published.
const ModelDownloadURL = "https://storage.googleapis.com/mediapipe-models/hand_landmarker/hand_landmarker/float16/1/hand_landmarker.task"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks
	// in detector output order.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Mode selects how the landmarker treats consecutive frames.
type Mode string

const (
	// ModeImage treats every frame as an unrelated still image.
	ModeImage Mode = "image"
	// ModeVideo lets the landmarker track hands between frames.
	ModeVideo Mode = "video"
)

// Config holds configuration options for hand detection.
type Config struct {
	// ModelPath is the path to the hand_landmarker.task bundle.
	ModelPath string

	// Mode is the running mode passed to the landmarker (default: video).
	Mode Mode

	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinPresenceConf is the minimum hand presence confidence threshold (0.0-1.0).
	MinPresenceConf float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelPath:       "hand_landmarker.task",
		Mode:            ModeVideo,
		MaxHands:        2,
		MinConfidence:   0.5,
		MinPresenceConf: 0.5,
		MinTrackingConf: 0.5,
	}
}
