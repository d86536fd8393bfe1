package ocr

import (
	"image"

	"gocv.io/x/gocv"
)

// MockRecognizer returns preset regions for tests.
type MockRecognizer struct {
	regions []TextRegion
	err     error
	calls   int
}

// NewMockRecognizer creates a MockRecognizer returning no regions.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{}
}

// SetRegions sets the regions returned by Recognize.
func (m *MockRecognizer) SetRegions(regions []TextRegion) {
	m.regions = regions
}

// SetError sets the error returned by Recognize.
func (m *MockRecognizer) SetError(err error) {
	m.err = err
}

// Recognize returns the configured regions or error.
func (m *MockRecognizer) Recognize(frame *gocv.Mat) ([]TextRegion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.regions, nil
}

// Calls returns how many times Recognize was invoked.
func (m *MockRecognizer) Calls() int {
	return m.calls
}

func (m *MockRecognizer) Close() error {
	return nil
}

// RegionAt builds a TextRegion of the given size centered on (cx, cy).
func RegionAt(text string, cx, cy, width, height int) TextRegion {
	return TextRegion{
		Quad:       QuadFromRect(image.Rect(cx-width/2, cy-height/2, cx-width/2+width, cy-height/2+height)),
		Text:       text,
		Confidence: 0.9,
	}
}
