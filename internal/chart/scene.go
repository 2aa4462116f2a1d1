package chart

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Insets are the gaps between the viewport edge and the plot area.
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Layout bundles the knobs that differ between chart styles.
type Layout struct {
	Name string
	// Policy picks the extreme point detector.
	Policy Policy
	// LabelOffset is the pixel distance between a point and its label.
	LabelOffset float64
	// Gradient strokes series by value where a gradient is configured.
	Gradient bool
	// Markers draws a dot under each labelled point.
	Markers bool
	// EdgeMargin hides labels whose scaled position is this close to the
	// viewport edge.
	EdgeMargin float64
	// ValueTicks is the number of horizontal gridlines.
	ValueTicks int
	Margins    Insets
	// DayLabelGap is the distance from the plot bottom to the day labels.
	DayLabelGap float64
}

// DetailedLayout labels each day's low and high on a value-coloured line.
var DetailedLayout = Layout{
	Name:        "detailed",
	Policy:      PolicyDailyRange,
	LabelOffset: 10,
	Gradient:    true,
	Markers:     true,
	EdgeMargin:  30,
	ValueTicks:  5,
	Margins:     Insets{Top: 20, Right: 20, Bottom: 40, Left: 50},
	DayLabelGap: 20,
}

// CompactLayout labels every turning point on a flat-coloured line.
var CompactLayout = Layout{
	Name:        "compact",
	Policy:      PolicyInflection,
	LabelOffset: 6,
	EdgeMargin:  30,
	ValueTicks:  5,
	Margins:     Insets{Top: 20, Right: 20, Bottom: 40, Left: 50},
	DayLabelGap: 20,
}

// LayoutByName returns one of the named layouts.
func LayoutByName(name string) (Layout, error) {
	switch name {
	case DetailedLayout.Name:
		return DetailedLayout, nil
	case CompactLayout.Name:
		return CompactLayout, nil
	default:
		return Layout{}, fmt.Errorf("unknown chart layout %q", name)
	}
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line is a straight line in pixels.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Text is a positioned string.
type Text struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Text     string   `json:"text"`
	Anchor   Anchor   `json:"textAnchor,omitempty"`
	Baseline Baseline `json:"alignmentBaseline,omitempty"`
}

// PointLabel annotates an extreme point. X and Y are the point itself; the
// label is drawn at X+DX, Y+DY.
type PointLabel struct {
	Point
	Placement
	Text   string `json:"text"`
	Marker bool   `json:"marker,omitempty"`
	Sample Sample `json:"sample"`
}

// SeriesLayer is the drawable form of one series.
type SeriesLayer struct {
	Label    string       `json:"label"`
	Stroke   string       `json:"stroke"`
	Gradient *Gradient    `json:"gradient,omitempty"`
	Path     Path         `json:"path"`
	D        string       `json:"d"`
	Points   []Point      `json:"points"`
	Labels   []PointLabel `json:"labels,omitempty"`
}

// Scene is everything a renderer needs to draw the chart.
type Scene struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Layout     string        `json:"layout"`
	Plot       Rect          `json:"plot"`
	Days       []DayBoundary `json:"days,omitempty"`
	DayLines   []Line        `json:"dayLines,omitempty"`
	DayLabels  []Text        `json:"dayLabels,omitempty"`
	TickLines  []Line        `json:"tickLines,omitempty"`
	TickLabels []Text        `json:"tickLabels,omitempty"`
	Series     []SeriesLayer `json:"series,omitempty"`
	// Empty is set when no series had samples.
	Empty bool `json:"empty"`
}

// Composer turns series into scenes. It holds only configuration, so one
// Composer may be shared.
type Composer struct {
	layout Layout
	colors Colors
	zone   *time.Location
}

// NewComposer returns a Composer. A nil zone means Eastern.
func NewComposer(layout Layout, colors Colors, zone *time.Location) *Composer {
	if zone == nil {
		zone = Eastern
	}
	return &Composer{layout: layout, colors: colors, zone: zone}
}

// Compose lays out series in vp. It always returns a drawable scene. Empty
// series are left out; when none remain the scene is marked Empty and the
// error is a NoDataError. Malformed series are left out and reported in the
// returned error while the rest are drawn.
func (c *Composer) Compose(series []Series, vp Viewport) (*Scene, error) {
	vp = vp.Normalize()
	m := c.layout.Margins
	plot := Rect{
		X:      m.Left,
		Y:      m.Top,
		Width:  math.Max(0, vp.Width-m.Left-m.Right),
		Height: math.Max(0, vp.Height-m.Top-m.Bottom),
	}
	scene := &Scene{Width: vp.Width, Height: vp.Height, Layout: c.layout.Name, Plot: plot}

	var (
		valid []Series
		errs  []error
	)
	for _, s := range series {
		if err := s.Validate(); err != nil {
			if !errors.Is(err, ErrNoData) {
				errs = append(errs, err)
			}
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		scene.Empty = true
		if len(errs) == 0 {
			return scene, &NoDataError{}
		}
		return scene, errors.Join(append(errs, &NoDataError{})...)
	}

	td, _ := TimeDomain(valid)
	vd, _ := ValueDomain(valid)
	x := NewLinear(td, Range{Lo: plot.X, Hi: plot.X + plot.Width})
	y := NewLinear(vd, Range{Lo: plot.Y + plot.Height, Hi: plot.Y})

	scene.Days = DayBoundaries(int64(td.Min), int64(td.Max), c.zone)
	c.composeDays(scene, x, td)
	c.composeTicks(scene, y, vd)

	for _, s := range valid {
		scene.Series = append(scene.Series, c.composeSeries(s, scene.Days, x, y, vp))
	}
	return scene, errors.Join(errs...)
}

func (c *Composer) composeDays(scene *Scene, x Linear, td Domain) {
	plot := scene.Plot
	for _, d := range scene.Days {
		if td.Contains(float64(d.Start)) {
			px := x.Map(float64(d.Start))
			scene.DayLines = append(scene.DayLines, Line{X1: px, Y1: plot.Y, X2: px, Y2: plot.Y + plot.Height})
		}
		// Partial days at either end may put the label outside the plot;
		// the renderer drops those.
		scene.DayLabels = append(scene.DayLabels, Text{
			X:      x.Map(float64(d.Midpoint())),
			Y:      plot.Y + plot.Height + c.layout.DayLabelGap,
			Text:   DayLabel(d.Start, c.zone),
			Anchor: AnchorMiddle,
		})
	}
}

func (c *Composer) composeTicks(scene *Scene, y Linear, vd Domain) {
	plot := scene.Plot
	ticks := y.Ticks(c.layout.ValueTicks)
	if vd.Degenerate() && len(ticks) > 1 {
		ticks = ticks[:1]
	}
	for _, v := range ticks {
		py := y.Map(v)
		scene.TickLines = append(scene.TickLines, Line{X1: plot.X, Y1: py, X2: plot.X + plot.Width, Y2: py})
		scene.TickLabels = append(scene.TickLabels, Text{
			X:        plot.X - 6,
			Y:        py,
			Text:     FormatFahrenheit(v),
			Anchor:   AnchorEnd,
			Baseline: BaselineMiddle,
		})
	}
}

func (c *Composer) composeSeries(s Series, days []DayBoundary, x, y Linear, vp Viewport) SeriesLayer {
	layer := SeriesLayer{
		Label:  s.Label,
		Stroke: Hex(c.colors.Stroke(s.Label)),
		Points: make([]Point, len(s.Points)),
	}
	for i, p := range s.Points {
		layer.Points[i] = Point{X: x.Map(float64(p.Time)), Y: y.Map(p.Value)}
	}
	layer.Path = MonotonePath(layer.Points)
	layer.D = layer.Path.SVG()

	if c.layout.Gradient {
		if g, ok := c.colors.Gradient(s.Label, y); ok {
			layer.Gradient = &g
		}
	}

	for _, e := range DetectExtremes(s, days, c.layout.Policy, c.layout.LabelOffset) {
		pt := layer.Points[e.Index]
		if !c.labelVisible(pt, vp) {
			continue
		}
		layer.Labels = append(layer.Labels, PointLabel{
			Point:     pt,
			Placement: e.Placement,
			Text:      FormatFahrenheit(e.Value),
			Marker:    c.layout.Markers,
			Sample:    e.Sample,
		})
	}
	return layer
}

// labelVisible applies the edge rule. The position is taken relative to the
// plot origin, as the scales produce it, but checked against the full
// viewport size; labels near the axes and the far edges are dropped.
func (c *Composer) labelVisible(pt Point, vp Viewport) bool {
	m := c.layout.EdgeMargin
	lx := pt.X - c.layout.Margins.Left
	ly := pt.Y - c.layout.Margins.Top
	return lx >= m && lx <= vp.Width-m && ly >= m && ly <= vp.Height-m
}
