package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"velocar/internal/fleet"
	"velocar/internal/intervals"
)

var day = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func clock(h int) time.Time {
	return day.Add(time.Duration(h) * time.Hour)
}

type fakeBusyStore struct {
	periods []fleet.BusyPeriod
	err     error
}

func (f *fakeBusyStore) FindBusyPeriods(_ context.Context, vehicleIDs []uuid.UUID, horizon intervals.Interval) ([]fleet.BusyPeriod, error) {
	if f.err != nil {
		return nil, f.err
	}
	allowed := make(map[uuid.UUID]bool, len(vehicleIDs))
	for _, id := range vehicleIDs {
		allowed[id] = true
	}
	var out []fleet.BusyPeriod
	for _, p := range f.periods {
		if allowed[p.VehicleID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService(store BusyPeriodStore, now time.Time) *service {
	return &service{
		store: store,
		now:   func() time.Time { return now },
	}
}

func TestGetWindowsEmptyPoolIsClientError(t *testing.T) {
	svc := newTestService(&fakeBusyStore{}, clock(0))
	if _, err := svc.GetWindows(context.Background(), nil, intervals.Interval{}); err != ErrEmptyPool {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestGetWindowsNoBookingsWholeHorizonFree(t *testing.T) {
	vehicle := uuid.New()
	svc := newTestService(&fakeBusyStore{}, clock(0))

	horizon := intervals.Interval{Start: clock(0), End: clock(48)}
	result, err := svc.GetWindows(context.Background(), []uuid.UUID{vehicle}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	if len(result.FreeWindows) != 1 {
		t.Fatalf("expected a single free window, got %v", result.FreeWindows)
	}
	if !result.FreeWindows[0].Start.Equal(clock(0)) || !result.FreeWindows[0].End.Equal(clock(48)) {
		t.Errorf("free window = %v, want whole horizon", result.FreeWindows[0])
	}
	if result.TotalVehicles != 1 {
		t.Errorf("TotalVehicles = %d, want 1", result.TotalVehicles)
	}
}

func TestGetWindowsAppliesPostUseBuffer(t *testing.T) {
	vehicle := uuid.New()
	// Booking ends at 11:00; buffered busy end must be 12:30
	store := &fakeBusyStore{periods: []fleet.BusyPeriod{
		{VehicleID: vehicle, Interval: intervals.Interval{Start: clock(9), End: clock(11)}},
	}}
	svc := newTestService(store, clock(0))

	horizon := intervals.Interval{Start: clock(0), End: clock(48)}
	result, err := svc.GetWindows(context.Background(), []uuid.UUID{vehicle}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	if len(result.BusyIntervals) != 1 {
		t.Fatalf("expected one busy interval, got %v", result.BusyIntervals)
	}
	wantEnd := clock(11).Add(90 * time.Minute)
	if !result.BusyIntervals[0].End.Equal(wantEnd) {
		t.Errorf("buffered busy end = %v, want %v", result.BusyIntervals[0].End, wantEnd)
	}
}

func TestGetWindowsPoolIntersection(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	// Unpadded: X busy 10:00-11:00, Y busy 10:30-11:30. With the 90m buffer
	// the pool-busy overlap is 10:30-12:30.
	store := &fakeBusyStore{periods: []fleet.BusyPeriod{
		{VehicleID: x, Interval: intervals.Interval{Start: clock(10), End: clock(11)}},
		{VehicleID: y, Interval: intervals.Interval{Start: day.Add(10*time.Hour + 30*time.Minute), End: day.Add(11*time.Hour + 30*time.Minute)}},
	}}
	svc := newTestService(store, clock(0))
	horizon := intervals.Interval{Start: clock(0), End: clock(48)}

	result, err := svc.GetWindows(context.Background(), []uuid.UUID{x, y}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	if len(result.BusyIntervals) != 1 {
		t.Fatalf("expected one pool-busy interval, got %v", result.BusyIntervals)
	}
	wantStart := day.Add(10*time.Hour + 30*time.Minute)
	wantEnd := clock(11).Add(90 * time.Minute)
	got := result.BusyIntervals[0]
	if !got.Start.Equal(wantStart) || !got.End.Equal(wantEnd) {
		t.Errorf("pool busy = %v, want [%v, %v]", got, wantStart, wantEnd)
	}
}

func TestGetWindowsSingleVehiclePoolUsesOwnBusyList(t *testing.T) {
	x := uuid.New()
	store := &fakeBusyStore{periods: []fleet.BusyPeriod{
		{VehicleID: x, Interval: intervals.Interval{Start: clock(10), End: clock(11)}},
	}}
	svc := newTestService(store, clock(0))
	horizon := intervals.Interval{Start: clock(0), End: clock(48)}

	result, err := svc.GetWindows(context.Background(), []uuid.UUID{x}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	if len(result.BusyIntervals) != 1 || !result.BusyIntervals[0].Start.Equal(clock(10)) {
		t.Errorf("single-vehicle pool busy = %v, want the vehicle's own busy list", result.BusyIntervals)
	}
}

func TestGetWindowsPoolFreeWhenOneVehicleIdle(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	// Only X is ever booked; Y idle, so the pool is never busy
	store := &fakeBusyStore{periods: []fleet.BusyPeriod{
		{VehicleID: x, Interval: intervals.Interval{Start: clock(10), End: clock(20)}},
	}}
	svc := newTestService(store, clock(0))
	horizon := intervals.Interval{Start: clock(0), End: clock(48)}

	result, err := svc.GetWindows(context.Background(), []uuid.UUID{x, y}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	if len(result.BusyIntervals) != 0 {
		t.Errorf("expected no pool-busy intervals, got %v", result.BusyIntervals)
	}
	if len(result.FreeWindows) != 1 {
		t.Errorf("expected whole horizon free, got %v", result.FreeWindows)
	}
}

func TestGetWindowsSuppressesSubHourInteriorGaps(t *testing.T) {
	x := uuid.New()
	// Two bookings leaving a 30-minute gap between buffered ends: the gap
	// from 12:30 to 13:00 must be suppressed, the trailing window kept.
	store := &fakeBusyStore{periods: []fleet.BusyPeriod{
		{VehicleID: x, Interval: intervals.Interval{Start: clock(9), End: clock(11)}},
		{VehicleID: x, Interval: intervals.Interval{Start: clock(13), End: clock(15)}},
	}}
	svc := newTestService(store, clock(0))
	horizon := intervals.Interval{Start: clock(0), End: clock(48)}

	result, err := svc.GetWindows(context.Background(), []uuid.UUID{x}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	for _, w := range result.FreeWindows {
		if w.Start.After(clock(11)) && w.End.Before(clock(14)) {
			t.Errorf("sub-hour interior gap not suppressed: %v", w)
		}
	}

	// Leading window up to 09:00 and trailing window after 16:30 remain
	if len(result.FreeWindows) != 2 {
		t.Fatalf("expected leading and trailing windows only, got %v", result.FreeWindows)
	}
	if !result.FreeWindows[0].End.Equal(clock(9)) {
		t.Errorf("leading window ends at %v, want %v", result.FreeWindows[0].End, clock(9))
	}
	wantTrailingStart := clock(15).Add(90 * time.Minute)
	if !result.FreeWindows[1].Start.Equal(wantTrailingStart) {
		t.Errorf("trailing window starts at %v, want %v", result.FreeWindows[1].Start, wantTrailingStart)
	}
}

func TestGetWindowsSearchStartsAtNow(t *testing.T) {
	x := uuid.New()
	svc := newTestService(&fakeBusyStore{}, clock(24))

	// Horizon starts in the past; free windows must not begin before now
	horizon := intervals.Interval{Start: clock(0), End: clock(48)}
	result, err := svc.GetWindows(context.Background(), []uuid.UUID{x}, horizon)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}

	if len(result.FreeWindows) != 1 || !result.FreeWindows[0].Start.Equal(clock(24)) {
		t.Errorf("free windows = %v, want single window starting at now", result.FreeWindows)
	}
}

func TestGetEarliest(t *testing.T) {
	x := uuid.New()
	now := clock(10)

	t.Run("free now", func(t *testing.T) {
		svc := newTestService(&fakeBusyStore{}, now)
		got, err := svc.GetEarliest(context.Background(), []uuid.UUID{x})
		if err != nil {
			t.Fatalf("GetEarliest failed: %v", err)
		}
		if !got.IsAvailable || !got.EarliestAvailable.Equal(now) {
			t.Errorf("got %+v, want available now", got)
		}
	})

	t.Run("inside a chained busy block", func(t *testing.T) {
		// Two back-to-back bookings; earliest is the end of the merged block
		store := &fakeBusyStore{periods: []fleet.BusyPeriod{
			{VehicleID: x, Interval: intervals.Interval{Start: clock(9), End: clock(11)}},
			{VehicleID: x, Interval: intervals.Interval{Start: clock(12), End: clock(14)}},
		}}
		svc := newTestService(store, now)

		got, err := svc.GetEarliest(context.Background(), []uuid.UUID{x})
		if err != nil {
			t.Fatalf("GetEarliest failed: %v", err)
		}
		if got.IsAvailable {
			t.Fatal("expected unavailable")
		}
		wantEnd := clock(14).Add(90 * time.Minute)
		if !got.EarliestAvailable.Equal(wantEnd) {
			t.Errorf("earliest = %v, want %v", got.EarliestAvailable, wantEnd)
		}
	})
}

func TestCheckRange(t *testing.T) {
	x := uuid.New()
	store := &fakeBusyStore{periods: []fleet.BusyPeriod{
		{VehicleID: x, Interval: intervals.Interval{Start: clock(10), End: clock(12)}},
	}}
	svc := newTestService(store, clock(0))

	t.Run("conflicting range", func(t *testing.T) {
		got, err := svc.CheckRange(context.Background(), []uuid.UUID{x}, intervals.Interval{Start: clock(11), End: clock(16)})
		if err != nil {
			t.Fatalf("CheckRange failed: %v", err)
		}
		if got.IsAvailable || len(got.Conflicts) != 1 {
			t.Errorf("got %+v, want one conflict", got)
		}
	})

	t.Run("buffer blocks immediately following range", func(t *testing.T) {
		// Booking ends 12:00, buffer runs to 13:30
		got, err := svc.CheckRange(context.Background(), []uuid.UUID{x}, intervals.Interval{Start: clock(13), End: clock(16)})
		if err != nil {
			t.Fatalf("CheckRange failed: %v", err)
		}
		if got.IsAvailable {
			t.Error("expected buffered booking to block the range")
		}
	})

	t.Run("free range", func(t *testing.T) {
		got, err := svc.CheckRange(context.Background(), []uuid.UUID{x}, intervals.Interval{Start: clock(20), End: clock(24)})
		if err != nil {
			t.Fatalf("CheckRange failed: %v", err)
		}
		if !got.IsAvailable {
			t.Errorf("got conflicts %v, want none", got.Conflicts)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		if _, err := svc.CheckRange(context.Background(), []uuid.UUID{x}, intervals.Interval{Start: clock(5), End: clock(4)}); err == nil {
			t.Error("expected error for inverted range")
		}
	})
}
