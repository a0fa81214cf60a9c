package memberships

import (
	"time"

	"github.com/google/uuid"
)

// MembershipPurchase is a subscription activation awaiting payment
// settlement.
type MembershipPurchase struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID       string    `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TierID        string    `gorm:"type:varchar(50);not null" json:"tier_id"`
	BillingCycle  string    `gorm:"type:varchar(20);check:billing_cycle IN ('monthly', 'yearly');default:'monthly'" json:"billing_cycle"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	IsRecurring   bool      `gorm:"default:false" json:"is_recurring"`
	PaymentStatus string    `gorm:"type:varchar(20);check:payment_status IN ('pending', 'succeeded', 'failed');default:'pending'" json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (MembershipPurchase) TableName() string {
	return "membership_purchases"
}

// MemberProfile carries the membership fields stamped onto a user when a
// purchase settles. Activation is idempotent: rewriting the same fields is
// harmless.
type MemberProfile struct {
	UserID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	TierID             string     `gorm:"type:varchar(50)" json:"tier_id"`
	BillingCycle       string     `gorm:"type:varchar(20)" json:"billing_cycle"`
	RenewalDate        *time.Time `json:"renewal_date,omitempty"`
	IsRecurring        bool       `gorm:"default:false" json:"is_recurring"`
	SubscriptionStatus string     `gorm:"type:varchar(20)" json:"subscription_status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (MemberProfile) TableName() string {
	return "member_profiles"
}
