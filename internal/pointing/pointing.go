// Package pointing resolves which text region a fingertip points at.
package pointing

import (
	"image"
	"math"

	"github.com/ayusman/pointread/internal/detector"
	"github.com/ayusman/pointread/internal/ocr"
)

// DefaultThreshold is the maximum fingertip-to-center distance in pixels.
const DefaultThreshold = 100.0

// Fingertip returns the pixel position of the index fingertip in a frame of
// the given size: (round(x*width), round(y*height)).
func Fingertip(hand *detector.HandLandmarks, width, height int) image.Point {
	tip := hand.IndexFingertip()
	return image.Point{
		X: int(math.Round(tip.X * float64(width))),
		Y: int(math.Round(tip.Y * float64(height))),
	}
}

// Match associates a fingertip with the text region it points at.
type Match struct {
	Tip      image.Point
	Region   ocr.TextRegion
	Index    int     // position of Region in the scanned list
	Distance float64 // pixels between Tip and the region center
}

// Resolver picks the text region closest to a fingertip.
type Resolver struct {
	// Threshold is the exclusive upper bound on the accepted distance.
	Threshold float64
}

// NewResolver returns a Resolver; a non-positive threshold selects DefaultThreshold.
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{Threshold: threshold}
}

// Resolve scans regions once and returns the one whose center is nearest to
// tip, provided that distance is strictly below the threshold. Among
// equidistant candidates the lowest index wins.
func (r *Resolver) Resolve(tip image.Point, regions []ocr.TextRegion) (Match, bool) {
	best := Match{Index: -1, Distance: math.Inf(1)}

	for i, region := range regions {
		c := region.Center()
		dist := math.Hypot(float64(tip.X-c.X), float64(tip.Y-c.Y))
		if dist < best.Distance && dist < r.Threshold {
			best = Match{Tip: tip, Region: region, Index: i, Distance: dist}
		}
	}

	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}

// ResolveAll resolves each fingertip independently; tips without a
// qualifying region are omitted, so the result holds at most one match per tip.
func (r *Resolver) ResolveAll(tips []image.Point, regions []ocr.TextRegion) []Match {
	if len(regions) == 0 {
		return nil
	}

	var matches []Match
	for _, tip := range tips {
		if m, ok := r.Resolve(tip, regions); ok {
			matches = append(matches, m)
		}
	}
	return matches
}
