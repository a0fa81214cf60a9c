package settlement

import "fmt"

// ResultKind classifies how a notification was absorbed.
type ResultKind string

const (
	// ResultAcknowledged means the notification was a duplicate or lost a
	// claim race; nothing changed and nothing needs to.
	ResultAcknowledged ResultKind = "acknowledged"

	// ResultHandled means this delivery performed the terminal transition.
	ResultHandled ResultKind = "handled"

	// ResultNotFound means no pending unit of work matches the order id.
	ResultNotFound ResultKind = "not_found"
)

// Target names which settlement variant matched the order.
type Target string

const (
	TargetBooking    Target = "booking"
	TargetDraft      Target = "booking_draft"
	TargetTopUp      Target = "credit_topup"
	TargetMembership Target = "membership"
)

// Result is the outcome of settling one notification. SideEffects lists the
// fire-and-forget events this delivery triggered.
type Result struct {
	Kind        ResultKind `json:"kind"`
	Target      Target     `json:"target,omitempty"`
	SideEffects []string   `json:"side_effects,omitempty"`
}

// SideEffectError reports a failure after a claim was granted (balance
// increment or membership activation). The claim has been reverted and the
// gateway should retry the notification.
type SideEffectError struct {
	OrderID string
	Op      string
	Err     error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("settlement: %s failed for order %s, retry required: %v", e.Op, e.OrderID, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}
