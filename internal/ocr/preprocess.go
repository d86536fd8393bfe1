package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

// Preprocess controls how a frame is prepared before recognition.
type Preprocess struct {
	// Grayscale drops color information before recognition.
	Grayscale bool `json:"grayscale"`

	// Scale resizes the image by this factor (1 keeps the frame size).
	Scale float64 `json:"scale"`

	// Contrast adjusts contrast in the range [-1, 1]; 0 leaves it unchanged.
	Contrast float64 `json:"contrast"`
}

// DefaultPreprocess converts to grayscale and keeps the frame size.
func DefaultPreprocess() Preprocess {
	return Preprocess{Grayscale: true, Scale: 1}
}

// Apply returns the preprocessed image and the scale factor actually applied.
func (p Preprocess) Apply(img image.Image) (image.Image, float64) {
	out := img

	if p.Grayscale {
		out = imaging.Grayscale(out)
	}

	if p.Contrast != 0 {
		out = adjust.Contrast(out, p.Contrast)
	}

	scale := p.Scale
	if scale <= 0 || scale == 1 {
		return out, 1
	}

	b := out.Bounds()
	w := int(float64(b.Dx())*scale + 0.5)
	if w < 1 {
		return out, 1
	}
	out = imaging.Resize(out, w, 0, imaging.Lanczos)

	// Report the effective factor after integer rounding of the width
	return out, float64(out.Bounds().Dx()) / float64(b.Dx())
}

// unscaleRect maps a rectangle found on a scaled image back to frame pixels.
func unscaleRect(r image.Rectangle, scale float64) image.Rectangle {
	if scale == 1 || scale <= 0 {
		return r
	}
	f := func(v int) int {
		return int(float64(v)/scale + 0.5)
	}
	return image.Rect(f(r.Min.X), f(r.Min.Y), f(r.Max.X), f(r.Max.Y))
}
