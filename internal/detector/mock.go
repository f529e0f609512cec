package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed set of hands or plays back a scripted sequence,
// one entry per Detect call.
type MockDetector struct {
	hands  []HandLandmarks
	script [][]HandLandmarks
	index  int
	err    error
	calls  int
	mu     sync.Mutex
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
	m.script = nil
}

// SetScript sets a per-call sequence of detections. A nil entry means
// "no hand" for that frame. Once the script is exhausted Detect reports no hands.
func (m *MockDetector) SetScript(script [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
	m.index = 0
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

// Detect returns the scripted or pre-configured hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.script != nil {
		if m.index >= len(m.script) {
			return nil, nil
		}
		hands := m.script[m.index]
		m.index++
		return hands, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PinchLandmarks returns a right hand whose index fingertip sits at the
// normalized position (x, y) with the thumb tip touching it.
func PinchLandmarks(x, y float64) HandLandmarks {
	landmarks := handAt(x, y)

	// Thumb curls in so its tip meets the index tip
	landmarks.Points[ThumbCMC] = Point3D{X: x + 0.08, Y: y + 0.30, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: x + 0.09, Y: y + 0.20, Z: -0.01}
	landmarks.Points[ThumbIP] = Point3D{X: x + 0.05, Y: y + 0.08, Z: -0.02}
	landmarks.Points[ThumbTip] = Point3D{X: x + 0.005, Y: y + 0.005, Z: -0.02}

	return landmarks
}

// OpenHandLandmarks returns a right hand whose index fingertip sits at the
// normalized position (x, y) with the thumb spread well away from it.
func OpenHandLandmarks(x, y float64) HandLandmarks {
	landmarks := handAt(x, y)

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: x + 0.08, Y: y + 0.33, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: x + 0.14, Y: y + 0.28, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: x + 0.20, Y: y + 0.23, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: x + 0.25, Y: y + 0.18, Z: 0.03}

	return landmarks
}

// handAt lays out a pointing hand with the index tip at (x, y).
func handAt(x, y float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: x + 0.02, Y: y + 0.45, Z: 0.0}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: x + 0.03, Y: y + 0.23, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: x + 0.02, Y: y + 0.14, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: x + 0.01, Y: y + 0.07, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: x, Y: y, Z: 0.0}

	// Remaining fingers curled toward the palm
	landmarks.Points[MiddleMCP] = Point3D{X: x - 0.02, Y: y + 0.24, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: x - 0.02, Y: y + 0.20, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: x - 0.03, Y: y + 0.24, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: x - 0.03, Y: y + 0.27, Z: -0.02}

	landmarks.Points[RingMCP] = Point3D{X: x - 0.06, Y: y + 0.26, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: x - 0.06, Y: y + 0.22, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: x - 0.07, Y: y + 0.26, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: x - 0.07, Y: y + 0.29, Z: -0.02}

	landmarks.Points[PinkyMCP] = Point3D{X: x - 0.10, Y: y + 0.29, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: x - 0.10, Y: y + 0.26, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: x - 0.11, Y: y + 0.29, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: x - 0.11, Y: y + 0.31, Z: -0.02}

	return landmarks
}
