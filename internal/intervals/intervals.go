// Package intervals provides pure interval arithmetic over half-open time
// spans. It has no I/O and no dependencies on the rest of the application.
package intervals

import (
	"sort"
	"time"
)

// Interval is a half-open time span [Start, End). A valid interval has
// Start before End. Intervals are values; they carry no identity.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsValid reports whether the interval covers any time at all.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Overlaps reports whether two intervals share any point.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the covered length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Merge sorts the input by start time and folds overlapping or adjacent
// intervals into one, taking the later end. The input slice is not modified.
// Merging an already-merged list is a no-op.
func Merge(list []Interval) []Interval {
	if len(list) == 0 {
		return nil
	}

	sorted := make([]Interval, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]Interval, 0, len(sorted))
	merged = append(merged, sorted[0])

	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !next.Start.After(last.End) {
			// Overlapping or touching: extend to the later end
			if next.End.After(last.End) {
				last.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}

	return merged
}

// Intersect computes the overlap of two merged interval lists with a
// two-pointer sweep. Both inputs must be sorted and non-overlapping
// (i.e. outputs of Merge); this precondition is not re-validated.
func Intersect(a, b []Interval) []Interval {
	var out []Interval

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := maxTime(a[i].Start, b[j].Start)
		end := minTime(a[i].End, b[j].End)
		if start.Before(end) {
			out = append(out, Interval{Start: start, End: end})
		}

		// Advance whichever interval ends first
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}

	return out
}

// IntersectAll reduces a set of merged interval lists pairwise. Zero lists
// intersect to nothing; a single list is returned as-is.
func IntersectAll(lists [][]Interval) []Interval {
	if len(lists) == 0 {
		return nil
	}

	result := lists[0]
	for _, next := range lists[1:] {
		result = Intersect(result, next)
		if len(result) == 0 {
			break
		}
	}
	return result
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
