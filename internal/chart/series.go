// Package chart lays out annotated time-series line charts: scales, day
// boundaries, extreme point labels and the drawable scene.
package chart

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoData is matched by every NoDataError.
var ErrNoData = errors.New("no data to chart")

// NoDataError reports that there is nothing to render. Series is empty when no
// series were supplied at all.
type NoDataError struct {
	Series string
}

func (e *NoDataError) Error() string {
	if e.Series == "" {
		return ErrNoData.Error()
	}
	return fmt.Sprintf("%s: series %q has no samples", ErrNoData, e.Series)
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// Sample is one observation. Time is epoch milliseconds and Index is the
// sample's position within its series.
type Sample struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
	Index int     `json:"index"`
}

// Series is a labelled sequence of samples ordered by time. The label keys
// colour lookup, so it should be unique within a chart.
type Series struct {
	Label  string   `json:"label"`
	Points []Sample `json:"points"`
}

// NewSeries builds a series from parallel time and value slices, assigning
// indices in order. Extra entries in the longer slice are dropped.
func NewSeries(label string, times []int64, values []float64) Series {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	pts := make([]Sample, n)
	for i := 0; i < n; i++ {
		pts[i] = Sample{Time: times[i], Value: values[i], Index: i}
	}
	return Series{Label: label, Points: pts}
}

// Validate checks that the series is non-empty, that every index matches its
// position, and that times never decrease.
func (s Series) Validate() error {
	if len(s.Points) == 0 {
		return &NoDataError{Series: s.Label}
	}
	for i, p := range s.Points {
		if p.Index != i {
			return fmt.Errorf("series %q: sample %d has index %d", s.Label, i, p.Index)
		}
		if i > 0 && p.Time < s.Points[i-1].Time {
			return fmt.Errorf("series %q: sample %d is earlier than its predecessor", s.Label, i)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("series %q: sample %d has non-finite value", s.Label, i)
		}
	}
	return nil
}

// Neighbors returns the samples immediately before and after index i. ok is
// false when i is the first or last sample (or out of range), in which case
// prev and next are zero.
func (s Series) Neighbors(i int) (prev, next Sample, ok bool) {
	if i <= 0 || i >= len(s.Points)-1 {
		return Sample{}, Sample{}, false
	}
	return s.Points[i-1], s.Points[i+1], true
}

// IsBoundary reports whether index i is the first or last sample.
func (s Series) IsBoundary(i int) bool {
	return i == 0 || i == len(s.Points)-1
}

const (
	// MinViewportWidth is the narrowest width rendered as-is.
	MinViewportWidth = 1000
	// FallbackViewportWidth replaces widths below MinViewportWidth so labels
	// have room.
	FallbackViewportWidth = 1200
)

// Viewport is the pixel size of the drawing surface.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize applies the width floor.
func (v Viewport) Normalize() Viewport {
	if v.Width < MinViewportWidth {
		v.Width = FallbackViewportWidth
	}
	return v
}
