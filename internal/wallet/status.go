package wallet

// Top-up payment status values. processing is a transient claim state: it
// either resolves to succeeded or reverts to pending for a later retry.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusSucceeded  = "succeeded"
	PaymentStatusFailed     = "failed"
)
