package ocr

import (
	"image"

	"gocv.io/x/gocv"
)

// Quad is a text bounding quadrilateral. Corners are ordered top-left,
// top-right, bottom-right, bottom-left.
type Quad [4]image.Point

// QuadFromRect returns the quadrilateral covering r.
func QuadFromRect(r image.Rectangle) Quad {
	return Quad{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// Center is the midpoint of the opposite corners 0 and 2.
func (q Quad) Center() image.Point {
	return image.Point{
		X: (q[0].X + q[2].X) / 2,
		Y: (q[0].Y + q[2].Y) / 2,
	}
}

// Points returns the corners as a slice for polygon drawing.
func (q Quad) Points() []image.Point {
	return []image.Point{q[0], q[1], q[2], q[3]}
}

// TextRegion is one recognized word and where it sits in the frame.
type TextRegion struct {
	Quad       Quad    `json:"quad"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Center returns the center of the region's quadrilateral.
func (r TextRegion) Center() image.Point {
	return r.Quad.Center()
}

// Recognizer detects text regions in a frame.
type Recognizer interface {
	// Recognize returns the words found in frame. An empty result is not an error.
	Recognize(frame *gocv.Mat) ([]TextRegion, error)

	// Close releases the underlying engine.
	Close() error
}
