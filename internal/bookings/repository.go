package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the booking persistence contract used by the
// settlement flow. Lookups return (nil, nil) when nothing matches so callers
// can fall through to the next settlement candidate.
type Repository interface {
	FindByOrderRef(ctx context.Context, orderRef string) (*Booking, error)
	SettlePaymentSuccess(ctx context.Context, bookingID uuid.UUID, authCode string) (bool, error)
	SettlePaymentFailure(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)

	FindDraftByOrderID(ctx context.Context, orderRef string) (*BookingDraft, error)
	MaterializeDraft(ctx context.Context, draft *BookingDraft, authCode string) (*Booking, error)
	DeleteDraft(ctx context.Context, draftID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new booking repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByOrderRef matches a live booking by row id, stored gateway order id,
// or as a last resort by the gateway order id embedded in the booking
// details of older rows.
func (r *repository) FindByOrderRef(ctx context.Context, orderRef string) (*Booking, error) {
	var booking Booking

	query := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderRef)
	if id, parseErr := uuid.Parse(orderRef); parseErr == nil {
		query = r.db.WithContext(ctx).Where("id = ? OR gateway_order_id = ?", id, orderRef)
	}

	err := query.First(&booking).Error
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up booking by order ref: %w", err)
	}

	err = r.db.WithContext(ctx).
		Where("booking_details->>'gateway_order_id' = ?", orderRef).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking by embedded order ref: %w", err)
	}
	return &booking, nil
}

// SettlePaymentSuccess confirms the booking and marks its payment succeeded
// in one conditional statement. Returns false when the row was already
// settled, which callers treat as a duplicate delivery.
func (r *repository) SettlePaymentSuccess(ctx context.Context, bookingID uuid.UUID, authCode string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND payment_status <> ?", bookingID, PaymentStatusSucceeded).
		Updates(map[string]interface{}{
			"payment_status": PaymentStatusSucceeded,
			"status":         StatusConfirmed,
			"auth_code":      authCode,
			"paid_at":        &now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to settle booking payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SettlePaymentFailure cancels the booking unless it already succeeded.
func (r *repository) SettlePaymentFailure(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND payment_status <> ?", bookingID, PaymentStatusSucceeded).
		Updates(map[string]interface{}{
			"payment_status": PaymentStatusFailed,
			"status":         StatusCancelled,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark booking payment failed (%s): %w", reason, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindDraftByOrderID(ctx context.Context, orderRef string) (*BookingDraft, error) {
	var draft BookingDraft
	err := r.db.WithContext(ctx).Where("order_id = ?", orderRef).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking draft: %w", err)
	}
	return &draft, nil
}

// MaterializeDraft creates the confirmed booking from the held draft data
// and deletes the draft in the same transaction. The delete doubles as the
// claim: it runs first, and zero rows affected means another delivery
// already materialized this draft, in which case (nil, nil) is returned and
// no booking is created.
func (r *repository) MaterializeDraft(ctx context.Context, draft *BookingDraft, authCode string) (*Booking, error) {
	now := time.Now()
	booking := &Booking{
		UserID:          draft.UserID,
		VehicleID:       draft.VehicleID,
		PickupDate:      draft.PickupDate,
		DropoffDate:     draft.DropoffDate,
		Status:          StatusConfirmed,
		PaymentStatus:   PaymentStatusSucceeded,
		GatewayOrderID:  draft.OrderID,
		PaymentProvider: "nexi",
		AuthCode:        authCode,
		AmountCents:     draft.AmountCents,
		CustomerEmail:   draft.CustomerEmail,
		BookingDetails:  draft.Details,
		PaidAt:          &now,
	}

	var claimed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Delete(&BookingDraft{}, "id = ?", draft.ID)
		if del.Error != nil {
			return fmt.Errorf("failed to delete materialized draft: %w", del.Error)
		}
		if del.RowsAffected == 0 {
			return nil
		}
		claimed = true
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to materialize booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}
	return booking, nil
}

func (r *repository) DeleteDraft(ctx context.Context, draftID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&BookingDraft{}, "id = ?", draftID).Error; err != nil {
		return fmt.Errorf("failed to delete booking draft: %w", err)
	}
	return nil
}
