package chart

import "fmt"

// Policy selects how extreme points are detected.
type Policy int

const (
	// PolicyInflection flags samples strictly above or below both neighbours.
	PolicyInflection Policy = iota
	// PolicyDailyRange flags the minimum and maximum sample of each day.
	PolicyDailyRange
)

func (p Policy) String() string {
	switch p {
	case PolicyInflection:
		return "inflection"
	case PolicyDailyRange:
		return "daily-range"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Extremes runs the detector selected by p. days is only consulted by
// PolicyDailyRange. A series with fewer than two samples has no extremes
// under either policy.
func (p Policy) Extremes(s Series, days []DayBoundary) []Sample {
	if len(s.Points) < 2 {
		return nil
	}
	if p == PolicyDailyRange {
		return DailyExtremes(s, days)
	}
	return Inflections(s)
}

// Inflections returns the local minima and maxima of s. The first and last
// samples never qualify. A flagged sample directly after the last kept one
// is dropped, so [1 3 2 5 1] yields indices 1 and 3 but not 2.
func Inflections(s Series) []Sample {
	var out []Sample
	for i, p := range s.Points {
		prev, next, ok := s.Neighbors(i)
		if !ok {
			continue
		}
		isMax := p.Value > prev.Value && p.Value > next.Value
		isMin := p.Value < prev.Value && p.Value < next.Value
		if isMax || isMin {
			out = append(out, p)
		}
	}
	return collapseAdjacent(out)
}

func collapseAdjacent(pts []Sample) []Sample {
	if len(pts) < 2 {
		return pts
	}
	out := []Sample{pts[0]}
	for _, p := range pts[1:] {
		if p.Index-out[len(out)-1].Index == 1 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// DailyExtremes returns, for each day in order, the minimum sample followed
// by the maximum sample among those falling inside it. Ties go to the
// earliest sample. Days without samples contribute nothing.
//
// A sample is never emitted twice: when the minimum and maximum of a day are
// the same sample (one sample, or all values equal) the day contributes that
// sample once. A series with fewer than two samples yields nothing.
func DailyExtremes(s Series, days []DayBoundary) []Sample {
	if len(s.Points) < 2 {
		return nil
	}
	var out []Sample
	j := 0
	for _, day := range days {
		for j < len(s.Points) && s.Points[j].Time < day.Start {
			j++
		}
		var (
			lo, hi Sample
			found  bool
		)
		for k := j; k < len(s.Points) && day.Contains(s.Points[k].Time); k++ {
			p := s.Points[k]
			if !found {
				lo, hi, found = p, p, true
				continue
			}
			if p.Value < lo.Value {
				lo = p
			}
			if p.Value > hi.Value {
				hi = p
			}
		}
		if !found {
			continue
		}
		out = append(out, lo)
		if hi.Index != lo.Index {
			out = append(out, hi)
		}
	}
	return out
}
