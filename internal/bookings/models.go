package bookings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONMap stores loosely structured booking details as a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			raw = []byte(s)
		} else {
			return fmt.Errorf("unsupported jsonb source type %T", value)
		}
	}
	return json.Unmarshal(raw, m)
}

// Booking defines the main booking structure
type Booking struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	VehicleID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"vehicle_id"`
	PickupDate      time.Time  `gorm:"index;not null" json:"pickup_date"`
	DropoffDate     time.Time  `gorm:"index;not null" json:"dropoff_date"`
	Status          string     `gorm:"type:varchar(20);check:status IN ('pending', 'confirmed', 'active', 'cancelled', 'completed');default:'pending'" json:"status"`
	PaymentStatus   string     `gorm:"type:varchar(20);check:payment_status IN ('pending', 'succeeded', 'failed');default:'pending'" json:"payment_status"`
	GatewayOrderID  string     `gorm:"index" json:"gateway_order_id,omitempty"`
	PaymentProvider string     `gorm:"type:varchar(50)" json:"payment_provider,omitempty"`
	AuthCode        string     `gorm:"type:varchar(50)" json:"auth_code,omitempty"`
	AmountCents     int64      `gorm:"not null;default:0" json:"amount_cents"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	BookingDetails  JSONMap    `gorm:"type:jsonb" json:"booking_details,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingDraft holds the data of a payment-first booking before the payment
// is confirmed. No booking row exists until a success notification
// materializes the draft; a failure deletes it.
type BookingDraft struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID       string     `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID        *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	VehicleID     uuid.UUID  `gorm:"type:uuid;not null" json:"vehicle_id"`
	PickupDate    time.Time  `gorm:"not null" json:"pickup_date"`
	DropoffDate   time.Time  `gorm:"not null" json:"dropoff_date"`
	AmountCents   int64      `gorm:"not null;default:0" json:"amount_cents"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Details       JSONMap    `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (BookingDraft) TableName() string {
	return "booking_drafts"
}
