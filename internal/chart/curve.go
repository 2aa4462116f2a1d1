package chart

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a cubic Bézier from the previous point to To.
type Segment struct {
	C1 Point `json:"c1"`
	C2 Point `json:"c2"`
	To Point `json:"to"`
}

// Path is a smooth line through a sequence of points.
type Path struct {
	Start    Point     `json:"start"`
	Segments []Segment `json:"segments,omitempty"`
}

// MonotonePath fits a monotone cubic through pts, so the curve never
// overshoots between neighbouring points. pts must be ordered by X. Fewer
// than three points, or repeated X values, fall back to straight segments.
func MonotonePath(pts []Point) Path {
	if len(pts) == 0 {
		return Path{}
	}
	p := Path{Start: pts[0]}
	if len(pts) == 1 {
		return p
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	increasing := true
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
		if i > 0 && xs[i] <= xs[i-1] {
			increasing = false
		}
	}
	var fb interp.FritschButland
	if len(pts) < 3 || !increasing || fb.Fit(xs, ys) != nil {
		return linearPath(pts)
	}

	p.Segments = make([]Segment, 0, len(pts)-1)
	m0 := fb.PredictDerivative(xs[0])
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		m1 := fb.PredictDerivative(xs[i])
		third := (b.X - a.X) / 3
		delta := (b.Y - a.Y) / (b.X - a.X)
		p.Segments = append(p.Segments, Segment{
			C1: Point{X: a.X + third, Y: a.Y + clampTangent(m0, delta)*third},
			C2: Point{X: b.X - third, Y: b.Y - clampTangent(m1, delta)*third},
			To: b,
		})
		m0 = m1
	}
	return p
}

// clampTangent keeps a knot tangent inside the region where a cubic Hermite
// segment with secant slope delta stays monotone.
func clampTangent(m, delta float64) float64 {
	switch {
	case delta == 0 || m*delta < 0:
		return 0
	case math.Abs(m) > 3*math.Abs(delta):
		return 3 * delta
	}
	return m
}

// linearPath joins pts with straight lines expressed as degenerate cubics.
func linearPath(pts []Point) Path {
	p := Path{Start: pts[0], Segments: make([]Segment, 0, len(pts)-1)}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		p.Segments = append(p.Segments, Segment{C1: a, C2: b, To: b})
	}
	return p
}

// SVG returns the path as SVG path data. A single point becomes a bare move.
func (p Path) SVG() string {
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, p.Start)
	for _, s := range p.Segments {
		b.WriteString("C")
		writePoint(&b, s.C1)
		b.WriteByte(' ')
		writePoint(&b, s.C2)
		b.WriteByte(' ')
		writePoint(&b, s.To)
	}
	return b.String()
}

func writePoint(b *strings.Builder, pt Point) {
	b.WriteString(strconv.FormatFloat(pt.X, 'f', 2, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(pt.Y, 'f', 2, 64))
}
