package availability

import (
	"time"

	"velocar/internal/intervals"
)

const (
	// PostUseBuffer pads every busy interval's end so back-to-back rentals
	// leave time for cleaning, refueling and handover.
	PostUseBuffer = 90 * time.Minute

	// DefaultHorizon bounds availability queries that give no explicit end.
	DefaultHorizon = 90 * 24 * time.Hour

	// MinActionableGap suppresses interior free windows too short to book.
	MinActionableGap = time.Hour
)

// Window is a contiguous span during which at least one vehicle in the
// requested pool is free. Produced fresh per query; never persisted.
type Window = intervals.Interval

// Availability is the computed result for one pool and horizon. The merged
// pool-busy intervals are included for diagnostics.
type Availability struct {
	FreeWindows   []Window             `json:"free_windows"`
	BusyIntervals []intervals.Interval `json:"busy_intervals"`
	TotalVehicles int                  `json:"total_vehicles_in_pool"`
}

// Earliest reports the first instant the pool can be booked.
type Earliest struct {
	IsAvailable       bool      `json:"is_available"`
	EarliestAvailable time.Time `json:"earliest_available"`
}

// RangeCheck reports whether a concrete pickup/dropoff range is free, and
// the pool-busy intervals that conflict with it when it is not.
type RangeCheck struct {
	IsAvailable bool                 `json:"is_available"`
	Conflicts   []intervals.Interval `json:"conflicts,omitempty"`
}
