// Package overlay draws detection results onto frames and shows them.
package overlay

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Style controls overlay colors and sizes.
type Style struct {
	Region         color.RGBA
	Match          color.RGBA
	Landmark       color.RGBA
	Connection     color.RGBA
	Fingertip      color.RGBA
	LabelScale     float64
	Thickness      int
	FingertipSize  int
	LandmarkRadius int
}

// DefaultStyle draws text boxes in green and the fingertip in red.
func DefaultStyle() Style {
	return Style{
		Region:         color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Match:          color.RGBA{R: 255, G: 200, B: 0, A: 255},
		Landmark:       color.RGBA{R: 255, G: 0, B: 0, A: 255},
		Connection:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Fingertip:      color.RGBA{R: 255, G: 0, B: 0, A: 255},
		LabelScale:     0.7,
		Thickness:      2,
		FingertipSize:  10,
		LandmarkRadius: 4,
	}
}

// Colors holds hex color overrides ("#rrggbb"); empty fields keep the default.
type Colors struct {
	Region     string `json:"region"`
	Match      string `json:"match"`
	Landmark   string `json:"landmark"`
	Connection string `json:"connection"`
	Fingertip  string `json:"fingertip"`
}

// WithColors returns a copy of s with the given hex overrides applied.
func (s Style) WithColors(c Colors) (Style, error) {
	targets := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"region", c.Region, &s.Region},
		{"match", c.Match, &s.Match},
		{"landmark", c.Landmark, &s.Landmark},
		{"connection", c.Connection, &s.Connection},
		{"fingertip", c.Fingertip, &s.Fingertip},
	}

	for _, t := range targets {
		if t.hex == "" {
			continue
		}
		rgba, err := ParseColor(t.hex)
		if err != nil {
			return s, fmt.Errorf("%s color: %w", t.name, err)
		}
		*t.dst = rgba
	}
	return s, nil
}

// ParseColor parses a "#rrggbb" hex string.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
