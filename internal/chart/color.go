package chart

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotutil"
)

// Series labels used by the weather report.
const (
	LabelTemperature = "temperature"
	LabelDewPoint    = "dewpoint"
)

// GradientSpec colours a line by value: Ramp is stretched over Domain (in the
// series' physical unit) and sampled at Stops evenly spaced values.
type GradientSpec struct {
	Domain Domain
	// Ramp returns a fresh colour map; maps are mutable so they are not shared.
	Ramp  func() palette.ColorMap
	Stops int
}

// Colors is the colour configuration handed to a Composer. Lookups are total:
// labels missing from Flat use Fallback, and labels missing from Gradients
// are stroked flat.
type Colors struct {
	Flat      map[string]color.Color
	Gradients map[string]GradientSpec
	Fallback  color.Color
}

// DefaultColors returns the palette for temperature and dew point charts.
func DefaultColors() Colors {
	return Colors{
		Flat: map[string]color.Color{
			LabelTemperature: plotutil.Color(0),
			LabelDewPoint:    plotutil.Color(1),
		},
		Gradients: map[string]GradientSpec{
			LabelTemperature: {
				Domain: Domain{Min: 0, Max: 35},
				Ramp:   func() palette.ColorMap { return moreland.SmoothBlueRed() },
				Stops:  10,
			},
			LabelDewPoint: {
				Domain: Domain{Min: 0, Max: 21},
				Ramp:   func() palette.ColorMap { return moreland.Kindlmann() },
				Stops:  10,
			},
		},
		Fallback: plotutil.Color(2),
	}
}

// Stroke returns the flat colour for label.
func (c Colors) Stroke(label string) color.Color {
	if col, ok := c.Flat[label]; ok && col != nil {
		return col
	}
	if c.Fallback != nil {
		return c.Fallback
	}
	return plotutil.Color(0)
}

// GradientStop is one colour stop; Offset runs from 0 to 1.
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Gradient is a vertical linear gradient in scene coordinates, running from
// Y1 to Y2.
type Gradient struct {
	ID    string         `json:"id"`
	Y1    float64        `json:"y1"`
	Y2    float64        `json:"y2"`
	Stops []GradientStop `json:"stops"`
}

// Gradient builds the value gradient for label against the value scale y.
// ok is false when label has no usable gradient, or when y has a degenerate
// domain and the gradient would have no length.
func (c Colors) Gradient(label string, y Linear) (g Gradient, ok bool) {
	if y.Domain.Degenerate() {
		return Gradient{}, false
	}
	spec, found := c.Gradients[label]
	if !found || spec.Ramp == nil || spec.Domain.Max <= spec.Domain.Min {
		return Gradient{}, false
	}
	cm := spec.Ramp()
	cm.SetMax(spec.Domain.Max)
	cm.SetMin(spec.Domain.Min)
	if dm, ok := cm.(palette.DivergingColorMap); ok {
		dm.SetConvergePoint((spec.Domain.Min + spec.Domain.Max) / 2)
	}

	n := spec.Stops
	if n < 2 {
		n = 2
	}
	stops := make([]GradientStop, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		v := math.Min(spec.Domain.Min+t*(spec.Domain.Max-spec.Domain.Min), spec.Domain.Max)
		col, err := cm.At(v)
		if err != nil {
			return Gradient{}, false
		}
		stops = append(stops, GradientStop{Offset: t, Color: Hex(col)})
	}
	return Gradient{
		ID:    "gradient-" + idSafe(label),
		Y1:    y.Map(spec.Domain.Min),
		Y2:    y.Map(spec.Domain.Max),
		Stops: stops,
	}, true
}

func idSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
