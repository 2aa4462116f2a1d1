// Package render draws chart scenes.
package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/i474232898/weather-charts/internal/chart"
)

// Style controls the non-geometric look of the SVG.
type Style struct {
	Background  string
	Border      string
	Grid        string
	Text        string
	FontFamily  string
	FontSize    int
	StrokeWidth float64
	MarkerSize  int
}

// DefaultStyle is a light theme.
var DefaultStyle = Style{
	Background:  "#ffffff",
	Border:      "#444444",
	Grid:        "#dddddd",
	Text:        "#333333",
	FontFamily:  "sans-serif",
	FontSize:    12,
	StrokeWidth: 2,
	MarkerSize:  3,
}

// errWriter remembers the first write error so the svgo calls, which do not
// return errors, can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}

// SVG writes scene to w as a standalone SVG document.
func SVG(w io.Writer, scene *chart.Scene) error {
	return DefaultStyle.SVG(w, scene)
}

// SVG writes scene to w using st.
func (st Style) SVG(w io.Writer, scene *chart.Scene) error {
	if scene == nil {
		return fmt.Errorf("render: nil scene")
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	canvas.Start(px(scene.Width), px(scene.Height))
	canvas.Rect(0, 0, px(scene.Width), px(scene.Height), "fill:"+st.Background)

	writeGradients(canvas, scene)

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1", st.Grid))
	for _, l := range scene.TickLines {
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2))
	}
	for _, l := range scene.DayLines {
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2))
	}
	canvas.Gend()

	p := scene.Plot
	canvas.Rect(px(p.X), px(p.Y), px(p.Width), px(p.Height), fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", st.Border))

	canvas.Gstyle(fmt.Sprintf("fill:%s;font-family:%s;font-size:%dpx", st.Text, st.FontFamily, st.FontSize))
	for _, t := range scene.TickLabels {
		text(canvas, t.X, t.Y, t.Text, t.Anchor, t.Baseline)
	}
	for _, t := range scene.DayLabels {
		if t.X < p.X || t.X > p.X+p.Width {
			continue
		}
		text(canvas, t.X, t.Y, t.Text, t.Anchor, t.Baseline)
	}
	canvas.Gend()

	for _, layer := range scene.Series {
		stroke := layer.Stroke
		if layer.Gradient != nil {
			stroke = "url(#" + layer.Gradient.ID + ")"
		}
		canvas.Path(layer.D, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f", stroke, st.StrokeWidth))
	}

	for _, layer := range scene.Series {
		if len(layer.Labels) == 0 {
			continue
		}
		canvas.Gstyle(fmt.Sprintf("fill:%s;font-family:%s;font-size:%dpx", layer.Stroke, st.FontFamily, st.FontSize))
		for _, l := range layer.Labels {
			if l.Marker {
				canvas.Circle(px(l.X), px(l.Y), st.MarkerSize)
			}
			text(canvas, l.X+l.DX, l.Y+l.DY, l.Text, l.Anchor, l.Baseline)
		}
		canvas.Gend()
	}

	canvas.End()
	return ew.err
}

// writeGradients emits the series gradients. svgo's LinearGradient only takes
// percentages relative to the stroked shape, while the stops here are pinned
// to value positions, so the elements are written directly.
func writeGradients(canvas *svg.SVG, scene *chart.Scene) {
	var found bool
	for _, layer := range scene.Series {
		if layer.Gradient != nil {
			found = true
			break
		}
	}
	if !found {
		return
	}
	canvas.Def()
	for _, layer := range scene.Series {
		g := layer.Gradient
		if g == nil {
			continue
		}
		fmt.Fprintf(canvas.Writer, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="0" y1="%.2f" x2="0" y2="%.2f">`+"\n", g.ID, g.Y1, g.Y2)
		for _, s := range g.Stops {
			fmt.Fprintf(canvas.Writer, `<stop offset="%.2f" stop-color="%s"/>`+"\n", s.Offset, s.Color)
		}
		fmt.Fprintln(canvas.Writer, `</linearGradient>`)
	}
	canvas.DefEnd()
}

func text(canvas *svg.SVG, x, y float64, s string, anchor chart.Anchor, baseline chart.Baseline) {
	var attrs []string
	if anchor != chart.AnchorDefault {
		attrs = append(attrs, fmt.Sprintf(`text-anchor="%s"`, anchor))
	}
	if baseline != chart.BaselineDefault {
		attrs = append(attrs, fmt.Sprintf(`dominant-baseline="%s"`, baseline))
	}
	canvas.Text(px(x), px(y), s, attrs...)
}

func px(v float64) int {
	return int(math.Round(v))
}
