package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PointingLandmarks returns a right hand with the index finger extended and
// its tip at (tipX, tipY) in normalized frame coordinates. The remaining
// fingers are curled below the tip.
func PointingLandmarks(tipX, tipY float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Everything hangs below the fingertip
	base := func(dx, dy, z float64) Point3D {
		return Point3D{X: tipX + dx, Y: tipY + dy, Z: z}
	}

	landmarks.Points[Wrist] = base(0.0, 0.40, 0.0)

	landmarks.Points[ThumbCMC] = base(0.05, 0.35, 0.0)
	landmarks.Points[ThumbMCP] = base(0.08, 0.30, -0.01)
	landmarks.Points[ThumbIP] = base(0.07, 0.27, -0.02)
	landmarks.Points[ThumbTip] = base(0.04, 0.25, -0.02)

	// Index finger extended straight up to the tip
	landmarks.Points[IndexMCP] = base(0.0, 0.22, 0.0)
	landmarks.Points[IndexPIP] = base(0.0, 0.14, 0.0)
	landmarks.Points[IndexDIP] = base(0.0, 0.07, 0.0)
	landmarks.Points[IndexTip] = base(0.0, 0.0, 0.0)

	landmarks.Points[MiddleMCP] = base(-0.04, 0.23, -0.02)
	landmarks.Points[MiddlePIP] = base(-0.04, 0.20, -0.05)
	landmarks.Points[MiddleDIP] = base(-0.03, 0.24, -0.04)
	landmarks.Points[MiddleTip] = base(-0.03, 0.27, -0.02)

	landmarks.Points[RingMCP] = base(-0.08, 0.25, -0.02)
	landmarks.Points[RingPIP] = base(-0.08, 0.22, -0.05)
	landmarks.Points[RingDIP] = base(-0.07, 0.26, -0.04)
	landmarks.Points[RingTip] = base(-0.07, 0.29, -0.02)

	landmarks.Points[PinkyMCP] = base(-0.11, 0.28, -0.02)
	landmarks.Points[PinkyPIP] = base(-0.11, 0.25, -0.05)
	landmarks.Points[PinkyDIP] = base(-0.10, 0.28, -0.04)
	landmarks.Points[PinkyTip] = base(-0.10, 0.31, -0.02)

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}
