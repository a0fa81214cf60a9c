package memberships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface defines the membership persistence contract.
type Repository interface {
	FindPurchaseByOrderID(ctx context.Context, orderRef string) (*MembershipPurchase, error)
	FinalizePurchase(ctx context.Context, purchaseID uuid.UUID) (bool, error)
	RevertPurchase(ctx context.Context, purchaseID uuid.UUID) error
	MarkPurchaseFailed(ctx context.Context, purchaseID uuid.UUID) (bool, error)
	ActivateMembership(ctx context.Context, purchase *MembershipPurchase) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new membership repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPurchaseByOrderID(ctx context.Context, orderRef string) (*MembershipPurchase, error) {
	var purchase MembershipPurchase
	err := r.db.WithContext(ctx).Where("order_id = ?", orderRef).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up membership purchase: %w", err)
	}
	return &purchase, nil
}

// FinalizePurchase claims and finalizes in one conditional write. Only the
// caller that flips the row performs the profile activation; every other
// concurrent delivery sees zero rows affected and acknowledges.
func (r *repository) FinalizePurchase(ctx context.Context, purchaseID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&MembershipPurchase{}).
		Where("id = ? AND payment_status <> ?", purchaseID, PaymentStatusSucceeded).
		Update("payment_status", PaymentStatusSucceeded)
	if result.Error != nil {
		return false, fmt.Errorf("failed to finalize membership purchase: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RevertPurchase returns a finalized purchase to pending after a failed
// activation so a gateway retry can complete it.
func (r *repository) RevertPurchase(ctx context.Context, purchaseID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&MembershipPurchase{}).
		Where("id = ? AND payment_status = ?", purchaseID, PaymentStatusSucceeded).
		Update("payment_status", PaymentStatusPending)
	if result.Error != nil {
		return fmt.Errorf("failed to revert membership purchase: %w", result.Error)
	}
	return nil
}

func (r *repository) MarkPurchaseFailed(ctx context.Context, purchaseID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&MembershipPurchase{}).
		Where("id = ? AND payment_status <> ?", purchaseID, PaymentStatusSucceeded).
		Update("payment_status", PaymentStatusFailed)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark membership purchase failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ActivateMembership stamps the purchased tier onto the member profile.
// Idempotent: re-running for the same purchase rewrites identical fields.
func (r *repository) ActivateMembership(ctx context.Context, purchase *MembershipPurchase) error {
	renewal := renewalDate(time.Now(), purchase.BillingCycle)

	profile := &MemberProfile{
		UserID:             purchase.UserID,
		TierID:             purchase.TierID,
		BillingCycle:       purchase.BillingCycle,
		RenewalDate:        &renewal,
		IsRecurring:        purchase.IsRecurring,
		SubscriptionStatus: SubscriptionStatusActive,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier_id", "billing_cycle", "renewal_date", "is_recurring",
			"subscription_status", "updated_at",
		}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to activate membership: %w", err)
	}
	return nil
}

func renewalDate(from time.Time, billingCycle string) time.Time {
	if billingCycle == BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
