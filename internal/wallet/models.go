package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds one user's credit balance in cents.
type Wallet struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BalanceCents int64     `gorm:"not null;default:0" json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// CreditTransaction is the append-only ledger behind every balance change.
// Reference is unique per kind, so one gateway order can never credit twice
// even if a claim is reclaimed after a crash mid-settlement.
type CreditTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Kind        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_credit_tx_kind_ref" json:"kind"`
	Reference   string    `gorm:"uniqueIndex:idx_credit_tx_kind_ref" json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// CreditTopUp is a wallet recharge awaiting payment settlement.
type CreditTopUp struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID       string     `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountCents   int64      `gorm:"not null" json:"amount_cents"`
	PaymentStatus string     `gorm:"type:varchar(20);check:payment_status IN ('pending', 'processing', 'succeeded', 'failed');default:'pending'" json:"payment_status"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (CreditTopUp) TableName() string {
	return "credit_topups"
}
