package chart

import "testing"

func TestPlace(t *testing.T) {
	const d = 10
	tests := []struct {
		name   string
		values []float64
		at     int
		want   Placement
	}{
		{"maximum goes above", []float64{1, 5, 2}, 1, Placement{DY: -d, Anchor: AnchorMiddle}},
		{"minimum goes below", []float64{5, 1, 3}, 1, Placement{DY: d, Anchor: AnchorMiddle, Baseline: BaselineHanging}},
		{"rising goes upper left", []float64{1, 2, 3}, 1, Placement{DX: -d, DY: -d, Anchor: AnchorEnd, Baseline: BaselineMiddle}},
		{"falling goes upper right", []float64{3, 2, 1}, 1, Placement{DX: d, DY: -d, Anchor: AnchorStart, Baseline: BaselineMiddle}},
		{"tie has no offset", []float64{2, 2, 1}, 1, Placement{}},
		{"first sample", []float64{1, 5, 2}, 0, Placement{}},
		{"last sample", []float64{1, 5, 2}, 2, Placement{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valuesSeries("s", tt.values...)
			got := Place(s.Points[tt.at], s, d)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPlaceUsesOffset(t *testing.T) {
	s := valuesSeries("s", 1, 5, 2)
	detailed := Place(s.Points[1], s, DetailedLayout.LabelOffset)
	compact := Place(s.Points[1], s, CompactLayout.LabelOffset)
	if detailed.DY != -10 || compact.DY != -6 {
		t.Errorf("expected dy -10 and -6, got %v and %v", detailed.DY, compact.DY)
	}
}

func TestDetectExtremes(t *testing.T) {
	s := valuesSeries("s", 1, 3, 2, 5, 1)
	got := DetectExtremes(s, nil, PolicyInflection, 6)
	if len(got) != 2 {
		t.Fatalf("expected 2 extreme points, got %d", len(got))
	}
	for _, e := range got {
		if e.Placement.Anchor != AnchorMiddle || e.Placement.DY >= 0 {
			t.Errorf("expected maximum at index %d to be labelled above, got %+v", e.Index, e.Placement)
		}
	}
	if got := DetectExtremes(valuesSeries("one", 4), nil, PolicyInflection, 6); got != nil {
		t.Errorf("expected no extremes for a single sample, got %v", got)
	}
}
