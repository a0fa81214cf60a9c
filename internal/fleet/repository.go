package fleet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"velocar/internal/intervals"
)

type Repository interface {
	// Vehicle lookup
	GetVehicles(ctx context.Context, category string) ([]Vehicle, error)
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	GetVehicleIDsByName(ctx context.Context, displayName string) ([]uuid.UUID, error)

	// Busy periods feeding the availability calculator
	FindBusyPeriods(ctx context.Context, vehicleIDs []uuid.UUID, horizon intervals.Interval) ([]BusyPeriod, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetVehicles(ctx context.Context, category string) ([]Vehicle, error) {
	var vehicles []Vehicle

	query := r.db.WithContext(ctx).Where("status = ?", "active")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	err := query.Order("display_name ASC").Find(&vehicles).Error
	return vehicles, err
}

func (r *repository) GetVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	var vehicle Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) GetVehicleIDsByName(ctx context.Context, displayName string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Vehicle{}).
		Where("display_name = ?", displayName).
		Pluck("id", &ids).Error
	return ids, err
}

// FindBusyPeriods collects raw occupied spans for the given vehicles from
// both confirmed bookings and live reservations overlapping the horizon.
// Cancelled and completed rows never block availability.
func (r *repository) FindBusyPeriods(ctx context.Context, vehicleIDs []uuid.UUID, horizon intervals.Interval) ([]BusyPeriod, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}

	var periods []BusyPeriod

	// Bookings overlapping the horizon
	var bookingRows []struct {
		VehicleID   uuid.UUID `gorm:"column:vehicle_id"`
		PickupDate  time.Time `gorm:"column:pickup_date"`
		DropoffDate time.Time `gorm:"column:dropoff_date"`
	}

	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("vehicle_id, pickup_date, dropoff_date").
		Where("vehicle_id IN ?", vehicleIDs).
		Where("status NOT IN ?", []string{"cancelled", "completed"}).
		Where("dropoff_date >= ? AND pickup_date <= ?", horizon.Start, horizon.End).
		Find(&bookingRows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range bookingRows {
		periods = append(periods, BusyPeriod{
			VehicleID: row.VehicleID,
			Interval:  intervals.Interval{Start: row.PickupDate, End: row.DropoffDate},
		})
	}

	// Reservations (holds) overlapping the horizon
	var reservationRows []struct {
		VehicleID uuid.UUID `gorm:"column:vehicle_id"`
		StartAt   time.Time `gorm:"column:start_at"`
		EndAt     time.Time `gorm:"column:end_at"`
	}

	err = r.db.WithContext(ctx).
		Table("reservations").
		Select("vehicle_id, start_at, end_at").
		Where("vehicle_id IN ?", vehicleIDs).
		Where("status IN ?", []string{"pending", "confirmed", "active"}).
		Where("end_at >= ? AND start_at <= ?", horizon.Start, horizon.End).
		Find(&reservationRows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range reservationRows {
		periods = append(periods, BusyPeriod{
			VehicleID: row.VehicleID,
			Interval:  intervals.Interval{Start: row.StartAt, End: row.EndAt},
		})
	}

	return periods, nil
}
