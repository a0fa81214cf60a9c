package memberships

// Purchase payment status values.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Billing cycles offered for membership tiers.
const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// Subscription status written to the member profile on activation.
const SubscriptionStatusActive = "active"
