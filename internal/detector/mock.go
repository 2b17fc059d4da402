package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
	calls int
	mu    sync.Mutex
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.hands == nil {
		return nil, nil
	}

	hands := make([]HandLandmarks, len(m.hands))
	for i, h := range m.hands {
		hands[i] = h.Clone()
	}
	return hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// curledFingers places index through pinky in a loose fist: every tip sits
// at or below its MCP joint.
func curledFingers(l *HandLandmarks) {
	l.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	l.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	l.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	l.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	l.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	l.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	l.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	l.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	curledRingPinky(l)
}

func curledRingPinky(l *HandLandmarks) {
	l.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	l.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	l.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	l.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	l.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	l.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	l.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	l.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}
}

func extendedIndexMiddle(l *HandLandmarks) {
	l.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	l.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	l.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	l.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	l.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	l.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	l.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	l.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}
}

// tuckedThumb folds the thumb across the palm: the tip is left of the IP
// joint and no farther from the wrist than the thumb MCP.
func tuckedThumb(l *HandLandmarks) {
	l.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	l.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.68, Z: 0.0}
	l.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.64, Z: 0.0}
	l.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.66, Z: 0.0}
}

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	landmarks := NewHandLandmarks("Right", 0.95)

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	curledFingers(&landmarks)

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks with all five fingers raised.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := NewHandLandmarks("Right", 0.95)

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	extendedIndexMiddle(&landmarks)

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// FistLandmarks returns a preset HandLandmarks with no fingers raised.
func FistLandmarks() HandLandmarks {
	landmarks := NewHandLandmarks("Right", 0.93)

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}
	tuckedThumb(&landmarks)
	curledFingers(&landmarks)

	return landmarks
}

// PeaceLandmarks returns a preset HandLandmarks with index and middle raised.
func PeaceLandmarks() HandLandmarks {
	landmarks := NewHandLandmarks("Left", 0.91)

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}
	tuckedThumb(&landmarks)
	extendedIndexMiddle(&landmarks)
	curledRingPinky(&landmarks)

	return landmarks
}
