package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/pointread/internal/detector"
	"github.com/ayusman/pointread/internal/ocr"
	"github.com/ayusman/pointread/internal/pointing"
)

// Painter renders overlays in place on a frame.
type Painter struct {
	style Style
}

// NewPainter creates a Painter with the given style.
func NewPainter(style Style) *Painter {
	return &Painter{style: style}
}

// Style returns the painter's style.
func (p *Painter) Style() Style {
	return p.style
}

// DrawRegions outlines every text region and labels it at its first corner.
func (p *Painter) DrawRegions(frame *gocv.Mat, regions []ocr.TextRegion) {
	for _, r := range regions {
		p.drawQuad(frame, r.Quad, p.style.Region, p.style.Thickness)
		gocv.PutText(frame, r.Text, r.Quad[0], gocv.FontHersheySimplex,
			p.style.LabelScale, p.style.Region, p.style.Thickness)
	}
}

// DrawHand draws the hand skeleton in frame pixel space.
func (p *Painter) DrawHand(frame *gocv.Mat, hand *detector.HandLandmarks) {
	w, h := frame.Cols(), frame.Rows()

	var px [detector.NumLandmarks]image.Point
	for i := range hand.Points {
		px[i] = image.Point{
			X: int(hand.Points[i].X * float64(w)),
			Y: int(hand.Points[i].Y * float64(h)),
		}
	}

	for _, c := range detector.HandConnections {
		gocv.Line(frame, px[c.From], px[c.To], p.style.Connection, p.style.Thickness)
	}
	for _, pt := range px {
		gocv.Circle(frame, pt, p.style.LandmarkRadius, p.style.Landmark, -1)
	}
}

// DrawFingertip draws a filled marker at the fingertip.
func (p *Painter) DrawFingertip(frame *gocv.Mat, tip image.Point) {
	gocv.Circle(frame, tip, p.style.FingertipSize, p.style.Fingertip, -1)
}

// DrawMatch highlights the region a fingertip resolved to.
func (p *Painter) DrawMatch(frame *gocv.Mat, m pointing.Match) {
	p.drawQuad(frame, m.Region.Quad, p.style.Match, p.style.Thickness*2)
	gocv.Line(frame, m.Tip, m.Region.Center(), p.style.Match, 1)
}

func (p *Painter) drawQuad(frame *gocv.Mat, q ocr.Quad, c color.RGBA, thickness int) {
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{q.Points()})
	defer pts.Close()
	gocv.Polylines(frame, pts, true, c, thickness)
}
