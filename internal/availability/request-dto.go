package availability

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"velocar/internal/intervals"
)

var validate = validator.New()

// WindowsRequest asks for the free windows of a vehicle pool. Explicit IDs
// define the pool; a vehicle name resolves to all units of that model.
type WindowsRequest struct {
	VehicleIDs  []string `json:"vehicle_ids" binding:"omitempty,dive,uuid"`
	VehicleName string   `json:"vehicle_name"`
	StartDate   string   `json:"start_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate     string   `json:"end_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// EarliestRequest asks for the first bookable instant of a pool.
type EarliestRequest struct {
	VehicleIDs  []string `json:"vehicle_ids" binding:"omitempty,dive,uuid"`
	VehicleName string   `json:"vehicle_name"`
}

// CheckRequest asks whether a concrete pickup/dropoff range is free.
type CheckRequest struct {
	VehicleIDs  []string `json:"vehicle_ids" binding:"omitempty,dive,uuid"`
	VehicleName string   `json:"vehicle_name"`
	PickupDate  string   `json:"pickup_date" binding:"required" validate:"datetime=2006-01-02T15:04:05Z07:00"`
	DropoffDate string   `json:"dropoff_date" binding:"required" validate:"datetime=2006-01-02T15:04:05Z07:00"`
}

// Validate runs the non-binding validations (RFC3339 timestamps).
func (r *WindowsRequest) Validate() error {
	return validate.Struct(r)
}

// Validate runs the non-binding validations (RFC3339 timestamps).
func (r *CheckRequest) Validate() error {
	return validate.Struct(r)
}

// Horizon parses the optional horizon bounds. Zero values mean defaults.
func (r *WindowsRequest) Horizon() (intervals.Interval, error) {
	var horizon intervals.Interval
	var err error

	if r.StartDate != "" {
		if horizon.Start, err = time.Parse(time.RFC3339, r.StartDate); err != nil {
			return horizon, fmt.Errorf("invalid start_date: %w", err)
		}
	}
	if r.EndDate != "" {
		if horizon.End, err = time.Parse(time.RFC3339, r.EndDate); err != nil {
			return horizon, fmt.Errorf("invalid end_date: %w", err)
		}
	}
	return horizon, nil
}

// Range parses the required pickup/dropoff range.
func (r *CheckRequest) Range() (intervals.Interval, error) {
	pickup, err := time.Parse(time.RFC3339, r.PickupDate)
	if err != nil {
		return intervals.Interval{}, fmt.Errorf("invalid pickup_date: %w", err)
	}
	dropoff, err := time.Parse(time.RFC3339, r.DropoffDate)
	if err != nil {
		return intervals.Interval{}, fmt.Errorf("invalid dropoff_date: %w", err)
	}

	rng := intervals.Interval{Start: pickup, End: dropoff}
	if !rng.IsValid() {
		return rng, fmt.Errorf("pickup_date must be before dropoff_date")
	}
	return rng, nil
}

func parseVehicleIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
