package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const kindTopUp = "topup"

// Repository interface defines the wallet persistence contract. All claim
// transitions are single conditional UPDATE statements; concurrency is
// decided by RowsAffected, never by reading first.
type Repository interface {
	FindTopUpByOrderID(ctx context.Context, orderRef string) (*CreditTopUp, error)
	ClaimTopUp(ctx context.Context, topUpID uuid.UUID, reclaimAfter time.Duration) (bool, error)
	IssueCredit(ctx context.Context, userID uuid.UUID, amountCents int64, orderRef string) (int64, error)
	FinalizeTopUp(ctx context.Context, topUpID uuid.UUID) (bool, error)
	RevertClaim(ctx context.Context, topUpID uuid.UUID) error
	MarkTopUpFailed(ctx context.Context, topUpID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new wallet repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindTopUpByOrderID(ctx context.Context, orderRef string) (*CreditTopUp, error) {
	var topUp CreditTopUp
	err := r.db.WithContext(ctx).Where("order_id = ?", orderRef).First(&topUp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up credit top-up: %w", err)
	}
	return &topUp, nil
}

// ClaimTopUp grants exclusive settlement rights by moving pending to
// processing in one conditional write. A processing row whose claim is older
// than reclaimAfter is eligible again, so a crash between claim and
// finalization cannot strand the top-up forever. reclaimAfter <= 0 disables
// reclaim.
func (r *repository) ClaimTopUp(ctx context.Context, topUpID uuid.UUID, reclaimAfter time.Duration) (bool, error) {
	now := time.Now()

	query := r.db.WithContext(ctx).Model(&CreditTopUp{})
	if reclaimAfter > 0 {
		cutoff := now.Add(-reclaimAfter)
		query = query.Where(
			"id = ? AND (payment_status = ? OR (payment_status = ? AND claimed_at < ?))",
			topUpID, PaymentStatusPending, PaymentStatusProcessing, cutoff,
		)
	} else {
		query = query.Where("id = ? AND payment_status = ?", topUpID, PaymentStatusPending)
	}

	result := query.Updates(map[string]interface{}{
		"payment_status": PaymentStatusProcessing,
		"claimed_at":     &now,
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim credit top-up: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// IssueCredit increments the user's balance and appends the ledger entry in
// one transaction. The ledger insert runs first and its unique (kind,
// reference) index makes the whole credit idempotent per order: a duplicate
// reference skips the increment entirely. The increment itself is expressed
// in SQL so concurrent credits for different orders never lose an update.
func (r *repository) IssueCredit(ctx context.Context, userID uuid.UUID, amountCents int64, orderRef string) (int64, error) {
	var balance int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &CreditTransaction{
			UserID:      userID,
			AmountCents: amountCents,
			Kind:        kindTopUp,
			Reference:   orderRef,
		}
		ledger := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
		if ledger.Error != nil {
			return fmt.Errorf("failed to append credit ledger entry: %w", ledger.Error)
		}

		if ledger.RowsAffected > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"balance_cents": gorm.Expr("wallets.balance_cents + ?", amountCents),
					"updated_at":    time.Now(),
				}),
			}).Create(&Wallet{UserID: userID, BalanceCents: amountCents}).Error
			if err != nil {
				return fmt.Errorf("failed to increment balance: %w", err)
			}
		}

		var wallet Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			return fmt.Errorf("failed to read balance after credit: %w", err)
		}
		balance = wallet.BalanceCents
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// FinalizeTopUp moves a claimed top-up to succeeded.
func (r *repository) FinalizeTopUp(ctx context.Context, topUpID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&CreditTopUp{}).
		Where("id = ? AND payment_status = ?", topUpID, PaymentStatusProcessing).
		Update("payment_status", PaymentStatusSucceeded)
	if result.Error != nil {
		return false, fmt.Errorf("failed to finalize credit top-up: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RevertClaim returns a claimed top-up to pending so a gateway retry can
// complete it after a side-effect failure.
func (r *repository) RevertClaim(ctx context.Context, topUpID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&CreditTopUp{}).
		Where("id = ? AND payment_status = ?", topUpID, PaymentStatusProcessing).
		Updates(map[string]interface{}{
			"payment_status": PaymentStatusPending,
			"claimed_at":     nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to revert credit top-up claim: %w", result.Error)
	}
	return nil
}

// MarkTopUpFailed records a failed payment. Only a pending row may fail:
// processing belongs to the delivery holding the claim and succeeded is
// terminal, so the write declines both and the caller acknowledges instead.
func (r *repository) MarkTopUpFailed(ctx context.Context, topUpID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&CreditTopUp{}).
		Where("id = ? AND payment_status = ?", topUpID, PaymentStatusPending).
		Update("payment_status", PaymentStatusFailed)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark credit top-up failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
