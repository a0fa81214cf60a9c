package fleet

import (
	"time"

	"github.com/google/uuid"

	"velocar/internal/intervals"
)

// Vehicle is one physical unit of the fleet. Interchangeable units of the
// same model share a PoolKey and are offered jointly.
type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DisplayName string    `gorm:"type:varchar(120);not null;index" json:"display_name"`
	Plate       string    `gorm:"type:varchar(20);unique" json:"plate"`
	PoolKey     string    `gorm:"type:varchar(80);index" json:"pool_key"`
	Category    string    `gorm:"type:varchar(40)" json:"category"` // car, yacht, villa, jet
	Status      string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reservation is a short-lived hold on a vehicle, placed ahead of payment.
// Confirmed bookings live in the bookings table; both block availability.
type Reservation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VehicleID uuid.UUID `gorm:"type:uuid;index;not null" json:"vehicle_id"`
	StartAt   time.Time `gorm:"not null" json:"start_at"`
	EndAt     time.Time `gorm:"not null" json:"end_at"`
	Status    string    `gorm:"type:varchar(20);check:status IN ('pending', 'confirmed', 'active', 'cancelled', 'completed');default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BusyPeriod is one raw occupied span on one vehicle, derived from a booking
// or a reservation. Buffer padding is applied by the availability calculator,
// not here.
type BusyPeriod struct {
	VehicleID uuid.UUID
	Interval  intervals.Interval
}

// TableName sets the table name for Vehicle
func (Vehicle) TableName() string {
	return "vehicles"
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}
