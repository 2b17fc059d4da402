// Package fingers decides which fingers of a detected hand are raised.
//
// Classification is purely geometric: it compares landmark positions in
// normalized image coordinates and never looks at pixels or confidence
// scores. Smoothing for video streams lives in History and Counter.
package fingers

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/fingercount/internal/detector"
)

// Thumb thresholds in normalized image units.
const (
	// ThumbLateralMargin is how far the thumb tip must sit to the right of
	// the IP joint for the lateral test to pass.
	ThumbLateralMargin = 0.02
	// ThumbExtensionRatio is how much farther from the wrist the thumb tip
	// must be than the thumb MCP joint for the distance test to pass.
	ThumbExtensionRatio = 1.15
)

// ErrInvalidHandShape is returned when a hand does not carry exactly
// detector.NumLandmarks keypoints.
var ErrInvalidHandShape = errors.New("invalid hand shape")

// ShapeError reports the keypoint count of a rejected hand.
type ShapeError struct {
	Got int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: got %d keypoints, want %d", ErrInvalidHandShape, e.Got, detector.NumLandmarks)
}

func (e *ShapeError) Unwrap() error {
	return ErrInvalidHandShape
}

// Finger identifies one of the five finger slots.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	// NumFingers is the number of finger slots per hand.
	NumFingers
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// State is the verdict for one finger.
type State int

const (
	Lowered State = iota
	Raised
)

func (s State) String() string {
	if s == Raised {
		return "raised"
	}
	return "lowered"
}

// States holds one State per finger, indexed by Finger.
type States [NumFingers]State

// Count returns the number of raised fingers.
func (s States) Count() int {
	n := 0
	for _, st := range s {
		if st == Raised {
			n++
		}
	}
	return n
}

// Raised reports whether finger f is raised.
func (s States) Raised(f Finger) bool {
	return f >= 0 && f < NumFingers && s[f] == Raised
}

// String renders the states as a bit string in finger order, e.g. "01100".
func (s States) String() string {
	b := make([]byte, NumFingers)
	for i, st := range s {
		b[i] = '0'
		if st == Raised {
			b[i] = '1'
		}
	}
	return string(b)
}

// MarshalJSON encodes the states as an object keyed by finger name.
func (s States) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, NumFingers)
	for f := Thumb; f < NumFingers; f++ {
		m[f.String()] = s[f] == Raised
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object written by MarshalJSON.
func (s *States) UnmarshalJSON(data []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = States{}
	for f := Thumb; f < NumFingers; f++ {
		if m[f.String()] {
			s[f] = Raised
		}
	}
	return nil
}

// ParseStates is the inverse of States.String.
func ParseStates(v string) (States, error) {
	var s States
	if len(v) != int(NumFingers) {
		return s, fmt.Errorf("parse states %q: want %d characters", v, NumFingers)
	}
	for i := range s {
		switch v[i] {
		case '0':
			s[i] = Lowered
		case '1':
			s[i] = Raised
		default:
			return s, fmt.Errorf("parse states %q: invalid character %q", v, v[i])
		}
	}
	return s, nil
}

// fingerJoints maps each non-thumb finger to its MCP, PIP and tip indices.
var fingerJoints = [NumFingers]struct{ mcp, pip, tip int }{
	Index:  {detector.IndexMCP, detector.IndexPIP, detector.IndexTip},
	Middle: {detector.MiddleMCP, detector.MiddlePIP, detector.MiddleTip},
	Ring:   {detector.RingMCP, detector.RingPIP, detector.RingTip},
	Pinky:  {detector.PinkyMCP, detector.PinkyPIP, detector.PinkyTip},
}

// Classify returns the per-finger states of one hand and the number of
// raised fingers. It does not modify points.
//
// The thumb is raised when its tip sits more than ThumbLateralMargin to the
// right of the IP joint, or when the tip is more than ThumbExtensionRatio
// times as far from the wrist as the thumb MCP joint. The lateral test
// assumes one chirality and camera mirroring; a hand of the opposite
// orientation only passes through the distance test.
//
// Any other finger is raised when its tip is strictly above (smaller Y)
// both its MCP and PIP joints.
func Classify(points []detector.Point3D) (States, int, error) {
	var states States
	if len(points) != detector.NumLandmarks {
		return states, 0, &ShapeError{Got: len(points)}
	}

	if thumbRaised(points) {
		states[Thumb] = Raised
	}

	for f := Index; f < NumFingers; f++ {
		j := fingerJoints[f]
		tip := points[j.tip].Y
		if tip < points[j.mcp].Y && tip < points[j.pip].Y {
			states[f] = Raised
		}
	}

	return states, states.Count(), nil
}

func thumbRaised(points []detector.Point3D) bool {
	tip := points[detector.ThumbTip]
	ip := points[detector.ThumbIP]

	if tip.X-ip.X > ThumbLateralMargin {
		return true
	}

	wrist := points[detector.Wrist]
	mcp := points[detector.ThumbMCP]
	return distance2D(wrist, tip) > ThumbExtensionRatio*distance2D(wrist, mcp)
}

// distance2D is the Euclidean distance between two points in the image plane.
func distance2D(a, b detector.Point3D) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}
