package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"velocar/internal/fleet"
	"velocar/internal/intervals"
)

// ErrEmptyPool is returned when a query names no vehicles; no computation is
// meaningful for an empty pool.
var ErrEmptyPool = errors.New("availability: vehicle pool is empty")

// BusyPeriodStore is the slice of the fleet repository this calculator needs
// (declared here to avoid depending on the full fleet surface).
type BusyPeriodStore interface {
	FindBusyPeriods(ctx context.Context, vehicleIDs []uuid.UUID, horizon intervals.Interval) ([]fleet.BusyPeriod, error)
}

// Service interface defines the contract for availability queries
type Service interface {
	GetWindows(ctx context.Context, pool []uuid.UUID, horizon intervals.Interval) (*Availability, error)
	GetEarliest(ctx context.Context, pool []uuid.UUID) (*Earliest, error)
	CheckRange(ctx context.Context, pool []uuid.UUID, rng intervals.Interval) (*RangeCheck, error)
}

type service struct {
	store BusyPeriodStore
	cache *Cache
	now   func() time.Time
}

// NewService creates a new availability service instance. The cache may be
// nil, in which case every query recomputes.
func NewService(store BusyPeriodStore, cache *Cache) Service {
	return &service{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// GetWindows computes the free windows of a pool inside the horizon. The
// result is a snapshot: it may be stale by the time a booking is attempted,
// and the booking path is responsible for re-checking before committing.
func (s *service) GetWindows(ctx context.Context, pool []uuid.UUID, horizon intervals.Interval) (*Availability, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	now := s.now()
	horizon = s.normalizeHorizon(horizon, now)

	if cached := s.cache.GetWindows(ctx, pool, horizon); cached != nil {
		return cached, nil
	}

	busy, err := s.computePoolBusy(ctx, pool, horizon)
	if err != nil {
		return nil, err
	}

	searchStart := maxTime(now, horizon.Start)
	result := &Availability{
		FreeWindows:   complement(busy, searchStart, horizon.End),
		BusyIntervals: busy,
		TotalVehicles: len(pool),
	}

	s.cache.SetWindows(ctx, pool, horizon, result)
	return result, nil
}

// GetEarliest returns the first instant at which the pool can be booked:
// now when the pool is not inside a busy interval, otherwise the end of the
// merged busy interval covering now.
func (s *service) GetEarliest(ctx context.Context, pool []uuid.UUID) (*Earliest, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	now := s.now()
	horizon := intervals.Interval{Start: now, End: now.Add(DefaultHorizon)}

	busy, err := s.computePoolBusy(ctx, pool, horizon)
	if err != nil {
		return nil, err
	}

	for _, b := range busy {
		if b.Contains(now) {
			return &Earliest{IsAvailable: false, EarliestAvailable: b.End}, nil
		}
	}

	return &Earliest{IsAvailable: true, EarliestAvailable: now}, nil
}

// CheckRange reports whether the pool is free for the whole requested range.
func (s *service) CheckRange(ctx context.Context, pool []uuid.UUID, rng intervals.Interval) (*RangeCheck, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if !rng.IsValid() {
		return nil, fmt.Errorf("availability: invalid range %v", rng)
	}

	busy, err := s.computePoolBusy(ctx, pool, rng)
	if err != nil {
		return nil, err
	}

	var conflicts []intervals.Interval
	for _, b := range busy {
		if b.Overlaps(rng) {
			conflicts = append(conflicts, b)
		}
	}

	return &RangeCheck{
		IsAvailable: len(conflicts) == 0,
		Conflicts:   conflicts,
	}, nil
}

// computePoolBusy builds per-vehicle merged busy lists (buffer applied) and
// intersects them: the pool is busy only when every vehicle is busy at once.
func (s *service) computePoolBusy(ctx context.Context, pool []uuid.UUID, horizon intervals.Interval) ([]intervals.Interval, error) {
	// Widen the query start so bookings whose buffered end reaches into the
	// horizon are not missed.
	queryHorizon := intervals.Interval{Start: horizon.Start.Add(-PostUseBuffer), End: horizon.End}

	periods, err := s.store.FindBusyPeriods(ctx, pool, queryHorizon)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch busy periods: %w", err)
	}

	perVehicle := make(map[uuid.UUID][]intervals.Interval, len(pool))
	for _, p := range periods {
		padded := intervals.Interval{Start: p.Interval.Start, End: p.Interval.End.Add(PostUseBuffer)}
		perVehicle[p.VehicleID] = append(perVehicle[p.VehicleID], padded)
	}

	lists := make([][]intervals.Interval, 0, len(pool))
	for _, id := range pool {
		lists = append(lists, intervals.Merge(perVehicle[id]))
	}

	if len(lists) == 1 {
		return lists[0], nil
	}
	return intervals.IntersectAll(lists), nil
}

// complement computes free windows inside [searchStart, horizonEnd]: before
// the first busy interval, between consecutive ones (interior gaps of an
// hour or less are suppressed as unbookable), and after the last.
func complement(busy []intervals.Interval, searchStart, horizonEnd time.Time) []Window {
	var windows []Window

	if horizonEnd.Before(searchStart) {
		return nil
	}

	if len(busy) == 0 {
		if horizonEnd.After(searchStart) {
			windows = append(windows, Window{Start: searchStart, End: horizonEnd})
		}
		return windows
	}

	// Before the first busy interval
	if searchStart.Before(busy[0].Start) {
		end := minTime(busy[0].Start, horizonEnd)
		if end.After(searchStart) {
			windows = append(windows, Window{Start: searchStart, End: end})
		}
	}

	// Between consecutive busy intervals
	for i := 0; i < len(busy)-1; i++ {
		gapStart := maxTime(busy[i].End, searchStart)
		gapEnd := minTime(busy[i+1].Start, horizonEnd)
		if gapEnd.Sub(gapStart) > MinActionableGap {
			windows = append(windows, Window{Start: gapStart, End: gapEnd})
		}
	}

	// After the last busy interval
	lastEnd := maxTime(busy[len(busy)-1].End, searchStart)
	if lastEnd.Before(horizonEnd) {
		windows = append(windows, Window{Start: lastEnd, End: horizonEnd})
	}

	return windows
}

func (s *service) normalizeHorizon(horizon intervals.Interval, now time.Time) intervals.Interval {
	if horizon.Start.IsZero() {
		horizon.Start = now
	}
	if horizon.End.IsZero() {
		horizon.End = now.Add(DefaultHorizon)
	}
	return horizon
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
