package chart

// Anchor is the horizontal text anchor of a label. The zero value leaves the
// renderer's default in place.
type Anchor string

const (
	AnchorDefault Anchor = ""
	AnchorStart   Anchor = "start"
	AnchorMiddle  Anchor = "middle"
	AnchorEnd     Anchor = "end"
)

// Baseline is the vertical alignment of a label. The zero value leaves the
// renderer's default in place.
type Baseline string

const (
	BaselineDefault Baseline = ""
	BaselineMiddle  Baseline = "middle"
	BaselineHanging Baseline = "hanging"
)

// Placement offsets a label from its point so the text clears the line.
// Screen y grows downward, so a negative DY moves the label up.
type Placement struct {
	DX       float64  `json:"dx"`
	DY       float64  `json:"dy"`
	Anchor   Anchor   `json:"textAnchor,omitempty"`
	Baseline Baseline `json:"alignmentBaseline,omitempty"`
}

// Place derives the label placement for p from its neighbours in s, with
// offset as the distance in pixels.
//
//	both neighbours lower   above, centred
//	both neighbours higher  below, centred, top-aligned
//	rising through p        upper left
//	falling through p       upper right
//
// Boundary samples and ties get no offset.
func Place(p Sample, s Series, offset float64) Placement {
	if s.IsBoundary(p.Index) {
		return Placement{}
	}
	prev, next, ok := s.Neighbors(p.Index)
	if !ok {
		return Placement{}
	}
	v := p.Value
	switch {
	case prev.Value < v && next.Value < v:
		return Placement{DY: -offset, Anchor: AnchorMiddle}
	case prev.Value > v && next.Value > v:
		return Placement{DY: offset, Anchor: AnchorMiddle, Baseline: BaselineHanging}
	case prev.Value < v && next.Value > v:
		return Placement{DX: -offset, DY: -offset, Anchor: AnchorEnd, Baseline: BaselineMiddle}
	case prev.Value > v && next.Value < v:
		return Placement{DX: offset, DY: -offset, Anchor: AnchorStart, Baseline: BaselineMiddle}
	default:
		return Placement{}
	}
}

// ExtremePoint is a flagged sample together with its label placement.
type ExtremePoint struct {
	Sample
	Placement Placement `json:"placement"`
}

// DetectExtremes flags the extreme samples of s under policy and places a
// label for each.
func DetectExtremes(s Series, days []DayBoundary, policy Policy, offset float64) []ExtremePoint {
	samples := policy.Extremes(s, days)
	if len(samples) == 0 {
		return nil
	}
	out := make([]ExtremePoint, len(samples))
	for i, p := range samples {
		out[i] = ExtremePoint{Sample: p, Placement: Place(p, s, offset)}
	}
	return out
}
