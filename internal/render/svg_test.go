package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-charts/internal/chart"
)

func testScene(t *testing.T, layout chart.Layout) *chart.Scene {
	t.Helper()
	start := time.Date(2024, 7, 1, 6, 0, 0, 0, chart.Eastern)
	times := make([]int64, 48)
	temps := make([]float64, 48)
	dews := make([]float64, 48)
	for h := range times {
		times[h] = start.Add(time.Duration(h) * time.Hour).UnixMilli()
		temps[h] = 22 + float64((h%24)-12)*0.4
		dews[h] = 15 + float64(h%5)
	}
	c := chart.NewComposer(layout, chart.DefaultColors(), chart.Eastern)
	scene, err := c.Compose([]chart.Series{
		chart.NewSeries(chart.LabelTemperature, times, temps),
		chart.NewSeries(chart.LabelDewPoint, times, dews),
	}, chart.Viewport{Width: 1200, Height: 400})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return scene
}

func TestSVGWellFormed(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, testScene(t, chart.DetailedLayout)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(buf.Bytes()))
	counts := map[string]int{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, buf.String())
		}
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Local]++
		}
	}
	if counts["svg"] != 1 {
		t.Errorf("expected one svg element, got %d", counts["svg"])
	}
	if counts["path"] != 2 {
		t.Errorf("expected 2 paths, got %d", counts["path"])
	}
	if counts["linearGradient"] != 2 {
		t.Errorf("expected 2 gradients, got %d", counts["linearGradient"])
	}
	if counts["text"] == 0 {
		t.Errorf("expected text labels")
	}
	if !strings.Contains(buf.String(), "url(#gradient-temperature)") {
		t.Errorf("expected the temperature path to use its gradient")
	}
}

func TestSVGFlatStroke(t *testing.T) {
	var buf bytes.Buffer
	scene := testScene(t, chart.CompactLayout)
	if err := SVG(&buf, scene); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "linearGradient") {
		t.Errorf("did not expect gradients in the compact layout")
	}
	if !strings.Contains(out, "stroke:"+scene.Series[0].Stroke) {
		t.Errorf("expected flat stroke %s in output", scene.Series[0].Stroke)
	}
}

type failingWriter struct{}

var errBroken = errors.New("broken pipe")

func (failingWriter) Write(p []byte) (int, error) { return 0, errBroken }

func TestSVGReportsWriteError(t *testing.T) {
	if err := SVG(failingWriter{}, testScene(t, chart.CompactLayout)); !errors.Is(err, errBroken) {
		t.Fatalf("expected write error, got %v", err)
	}
	if err := SVG(io.Discard, nil); err == nil {
		t.Fatalf("expected an error for a nil scene")
	}
}

func TestSVGDropsDayLabelsOutsidePlot(t *testing.T) {
	scene := testScene(t, chart.DetailedLayout)
	if len(scene.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(scene.Days))
	}
	// The data ends at 05:00 on the last day, so its noon label is past the plot.
	last := scene.DayLabels[2]
	if last.X <= scene.Plot.X+scene.Plot.Width {
		t.Fatalf("expected the last day label beyond the plot, got x=%v", last.X)
	}

	var buf bytes.Buffer
	if err := SVG(&buf, scene); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, ">"+scene.DayLabels[0].Text+"<") {
		t.Errorf("expected the first day label %q in output", scene.DayLabels[0].Text)
	}
	if strings.Contains(out, ">"+last.Text+"<") {
		t.Errorf("did not expect the off-plot label %q in output", last.Text)
	}
}
