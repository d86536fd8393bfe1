// Package testdata synthesizes camera frames for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame size used across tests, matching the default capture resolution.
const (
	Width  = 640
	Height = 480
)

// BlankFrame returns a white BGR frame.
func BlankFrame(width, height int) *gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), height, width, gocv.MatTypeCV8UC3)
	return &m
}

// BlankFrames returns n white frames of the default size.
func BlankFrames(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		frames[i] = BlankFrame(Width, Height)
	}
	return frames
}

// WordFrame returns a white frame with text printed in black and the
// rectangle the text occupies.
func WordFrame(text string, org image.Point, scale float64) (*gocv.Mat, image.Rectangle) {
	frame := BlankFrame(Width, Height)

	const thickness = 3
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, thickness)
	gocv.PutText(frame, text, org, gocv.FontHersheySimplex, scale, color.RGBA{A: 255}, thickness)

	// org is the bottom-left corner of the text
	return frame, image.Rect(org.X, org.Y-size.Y, org.X+size.X, org.Y)
}

// CloseAll closes every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
