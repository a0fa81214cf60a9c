package intervals

import (
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time {
	return base.Add(time.Duration(h) * time.Hour)
}

func span(startHour, endHour int) Interval {
	return Interval{Start: at(startHour), End: at(endHour)}
}

func equalIntervals(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) {
			return false
		}
	}
	return true
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		input []Interval
		want  []Interval
	}{
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
		{
			name:  "single interval",
			input: []Interval{span(1, 2)},
			want:  []Interval{span(1, 2)},
		},
		{
			name:  "disjoint stay apart",
			input: []Interval{span(1, 2), span(3, 4)},
			want:  []Interval{span(1, 2), span(3, 4)},
		},
		{
			name:  "overlapping fold into one",
			input: []Interval{span(1, 3), span(2, 5)},
			want:  []Interval{span(1, 5)},
		},
		{
			name:  "touching fold into one",
			input: []Interval{span(1, 2), span(2, 3)},
			want:  []Interval{span(1, 3)},
		},
		{
			name:  "unsorted input gets sorted",
			input: []Interval{span(6, 8), span(1, 2), span(7, 9), span(2, 4)},
			want:  []Interval{span(1, 4), span(6, 9)},
		},
		{
			name:  "contained interval absorbed",
			input: []Interval{span(1, 10), span(3, 4)},
			want:  []Interval{span(1, 10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.input)
			if !equalIntervals(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	input := []Interval{span(5, 7), span(1, 3), span(2, 4), span(6, 9)}
	once := Merge(input)
	twice := Merge(once)
	if !equalIntervals(once, twice) {
		t.Errorf("Merge applied twice differs: %v vs %v", once, twice)
	}
}

func TestMergeDoesNotModifyInput(t *testing.T) {
	input := []Interval{span(3, 4), span(1, 2)}
	Merge(input)
	if !input[0].Start.Equal(at(3)) {
		t.Error("Merge reordered its input slice")
	}
}

func TestMergeOutputSortedNonOverlapping(t *testing.T) {
	input := []Interval{span(4, 6), span(0, 2), span(5, 9), span(1, 3), span(11, 12)}
	got := Merge(input)
	for i := 1; i < len(got); i++ {
		if !got[i-1].End.Before(got[i].Start) {
			t.Errorf("intervals %d and %d not strictly separated: %v", i-1, i, got)
		}
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b []Interval
		want []Interval
	}{
		{
			name: "no overlap",
			a:    []Interval{span(1, 2)},
			b:    []Interval{span(3, 4)},
			want: nil,
		},
		{
			name: "partial overlap",
			a:    []Interval{span(1, 4)},
			b:    []Interval{span(3, 6)},
			want: []Interval{span(3, 4)},
		},
		{
			name: "touching endpoints produce nothing",
			a:    []Interval{span(1, 3)},
			b:    []Interval{span(3, 5)},
			want: nil,
		},
		{
			name: "multiple overlaps swept",
			a:    []Interval{span(0, 3), span(5, 9)},
			b:    []Interval{span(2, 6), span(8, 12)},
			want: []Interval{span(2, 3), span(5, 6), span(8, 9)},
		},
		{
			name: "empty side",
			a:    nil,
			b:    []Interval{span(1, 2)},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intersect(tt.a, tt.b)
			if !equalIntervals(got, tt.want) {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectIsCommutative(t *testing.T) {
	a := []Interval{span(0, 4), span(6, 10), span(12, 13)}
	b := []Interval{span(2, 7), span(9, 14)}

	ab := Intersect(a, b)
	ba := Intersect(b, a)
	if !equalIntervals(ab, ba) {
		t.Errorf("Intersect not commutative: %v vs %v", ab, ba)
	}
}

func TestIntersectResultLiesInBothInputs(t *testing.T) {
	a := Merge([]Interval{span(0, 5), span(7, 12)})
	b := Merge([]Interval{span(3, 8), span(10, 11)})

	covered := func(list []Interval, t time.Time) bool {
		for _, iv := range list {
			if iv.Contains(t) {
				return true
			}
		}
		return false
	}

	for _, iv := range Intersect(a, b) {
		// Probe a handful of points inside each result interval
		for _, p := range []time.Time{iv.Start, iv.Start.Add(iv.Duration() / 2)} {
			if !covered(a, p) || !covered(b, p) {
				t.Errorf("point %v of result %v not covered by both inputs", p, iv)
			}
		}
	}
}

func TestIntersectAll(t *testing.T) {
	// Pool semantics: busy only when every list is busy
	x := []Interval{span(10, 11)}
	y := []Interval{span(10, 12)}
	z := []Interval{span(9, 11)}

	got := IntersectAll([][]Interval{x, y, z})
	want := []Interval{span(10, 11)}
	if !equalIntervals(got, want) {
		t.Errorf("IntersectAll() = %v, want %v", got, want)
	}

	if got := IntersectAll(nil); got != nil {
		t.Errorf("IntersectAll(nil) = %v, want nil", got)
	}

	single := [][]Interval{{span(1, 2)}}
	if got := IntersectAll(single); !equalIntervals(got, single[0]) {
		t.Errorf("IntersectAll with one list = %v, want %v", got, single[0])
	}
}

func TestIntervalHelpers(t *testing.T) {
	iv := span(1, 3)

	if !iv.IsValid() {
		t.Error("expected interval to be valid")
	}
	if (Interval{Start: at(3), End: at(3)}).IsValid() {
		t.Error("zero-length interval should be invalid")
	}
	if !iv.Contains(at(1)) {
		t.Error("half-open interval should contain its start")
	}
	if iv.Contains(at(3)) {
		t.Error("half-open interval should not contain its end")
	}
	if !iv.Overlaps(span(2, 4)) {
		t.Error("expected overlap")
	}
	if iv.Overlaps(span(3, 4)) {
		t.Error("touching intervals should not overlap")
	}
}
