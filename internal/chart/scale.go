package chart

import (
	"fmt"
	"math"
)

// Domain is a closed data interval. Times are epoch milliseconds.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate reports whether the domain has no extent.
func (d Domain) Degenerate() bool {
	return d.Max == d.Min
}

// Contains reports whether x lies in [Min, Max].
func (d Domain) Contains(x float64) bool {
	return x >= d.Min && x <= d.Max
}

// Range is a pixel interval. Lo maps from Domain.Min and Hi from Domain.Max,
// so an inverted y axis simply has Lo > Hi.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Mid returns the centre of the range.
func (r Range) Mid() float64 {
	return (r.Lo + r.Hi) / 2
}

// Linear maps a domain onto a range by linear interpolation. It has no
// mutable state; copies are interchangeable.
type Linear struct {
	Domain Domain
	Range  Range
}

// NewLinear returns a linear scale from d to r.
func NewLinear(d Domain, r Range) Linear {
	return Linear{Domain: d, Range: r}
}

// Map converts a domain value to a pixel. A degenerate domain maps every
// value to the middle of the range.
func (l Linear) Map(x float64) float64 {
	if l.Domain.Degenerate() {
		return l.Range.Mid()
	}
	t := (x - l.Domain.Min) / (l.Domain.Max - l.Domain.Min)
	return l.Range.Lo + t*(l.Range.Hi-l.Range.Lo)
}

// Invert converts a pixel back to a domain value. A degenerate domain or
// range inverts to Domain.Min.
func (l Linear) Invert(px float64) float64 {
	if l.Domain.Degenerate() || l.Range.Hi == l.Range.Lo {
		return l.Domain.Min
	}
	t := (px - l.Range.Lo) / (l.Range.Hi - l.Range.Lo)
	return l.Domain.Min + t*(l.Domain.Max-l.Domain.Min)
}

// Ticks returns n domain values whose pixels are evenly spaced across the
// range, ends included. n < 2 yields just Domain.Min (if n is 1).
func (l Linear) Ticks(n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{l.Domain.Min}
	}
	ticks := make([]float64, n)
	step := (l.Range.Hi - l.Range.Lo) / float64(n-1)
	for i := range ticks {
		ticks[i] = l.Invert(l.Range.Lo + float64(i)*step)
	}
	if l.Domain.Degenerate() {
		for i := range ticks {
			ticks[i] = l.Domain.Min
		}
	}
	return ticks
}

// TimeDomain returns the millisecond extent shared by every series.
func TimeDomain(series []Series) (Domain, error) {
	return combinedDomain(series, func(s Sample) float64 { return float64(s.Time) })
}

// ValueDomain returns the value extent shared by every series.
func ValueDomain(series []Series) (Domain, error) {
	return combinedDomain(series, func(s Sample) float64 { return s.Value })
}

func combinedDomain(series []Series, get func(Sample) float64) (Domain, error) {
	var (
		d    Domain
		seen bool
	)
	for _, s := range series {
		for _, p := range s.Points {
			v := get(p)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if !seen {
				d = Domain{Min: v, Max: v}
				seen = true
				continue
			}
			d.Min = math.Min(d.Min, v)
			d.Max = math.Max(d.Max, v)
		}
	}
	if !seen {
		if len(series) == 1 {
			return Domain{}, &NoDataError{Series: series[0].Label}
		}
		return Domain{}, &NoDataError{}
	}
	return d, nil
}

// CelsiusToFahrenheit converts a temperature.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FormatFahrenheit renders a Celsius value as a rounded Fahrenheit label.
func FormatFahrenheit(c float64) string {
	return fmt.Sprintf("%d°", int(math.Round(CelsiusToFahrenheit(c))))
}
