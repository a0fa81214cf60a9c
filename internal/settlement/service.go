package settlement

import (
	"context"
	"time"

	"velocar/internal/bookings"
	"velocar/internal/gateway"
	"velocar/internal/memberships"
	"velocar/internal/notifications"
	"velocar/internal/wallet"
	"velocar/pkg/logger"
)

const dispatchTimeout = 10 * time.Second

// Service interface defines the contract for settling payment outcomes
type Service interface {
	Settle(ctx context.Context, outcome *gateway.Outcome) (*Result, error)
}

type service struct {
	bookings     bookings.Repository
	wallet       wallet.Repository
	memberships  memberships.Repository
	producer     notifications.Producer
	reclaimAfter time.Duration
	log          *logger.Logger
}

// NewService creates a new settlement service instance. reclaimAfter bounds
// how long a top-up can sit in processing before another delivery may
// reclaim it; zero disables reclaim.
func NewService(
	bookingRepo bookings.Repository,
	walletRepo wallet.Repository,
	membershipRepo memberships.Repository,
	producer notifications.Producer,
	reclaimAfter time.Duration,
) Service {
	return &service{
		bookings:     bookingRepo,
		wallet:       walletRepo,
		memberships:  membershipRepo,
		producer:     producer,
		reclaimAfter: reclaimAfter,
		log:          logger.GetDefault(),
	}
}

// Settle drives one canonical payment outcome to its terminal state. The
// resolver chain is ordered: live bookings, then payment-first drafts, then
// credit top-ups, then membership purchases. First match wins; an order id
// is never matched against more than one variant.
func (s *service) Settle(ctx context.Context, outcome *gateway.Outcome) (*Result, error) {
	booking, err := s.bookings.FindByOrderRef(ctx, outcome.OrderID)
	if err != nil {
		return nil, err
	}
	if booking != nil {
		return s.settleBooking(ctx, booking, outcome)
	}

	draft, err := s.bookings.FindDraftByOrderID(ctx, outcome.OrderID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return s.settleDraft(ctx, draft, outcome)
	}

	topUp, err := s.wallet.FindTopUpByOrderID(ctx, outcome.OrderID)
	if err != nil {
		return nil, err
	}
	if topUp != nil {
		return s.settleTopUp(ctx, topUp, outcome)
	}

	purchase, err := s.memberships.FindPurchaseByOrderID(ctx, outcome.OrderID)
	if err != nil {
		return nil, err
	}
	if purchase != nil {
		return s.settleMembership(ctx, purchase, outcome)
	}

	s.log.WarnContext(ctx, "no settlement target for order", "order_id", outcome.OrderID)
	return &Result{Kind: ResultNotFound}, nil
}

// settleBooking applies the outcome to a live booking row. Rows are matched
// 1:1 and updated through one conditional statement, so no separate claim
// step is needed.
func (s *service) settleBooking(ctx context.Context, booking *bookings.Booking, outcome *gateway.Outcome) (*Result, error) {
	if booking.PaymentStatus == bookings.PaymentStatusSucceeded {
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetBooking))
		return &Result{Kind: ResultAcknowledged, Target: TargetBooking}, nil
	}

	if !outcome.IsSuccess {
		applied, err := s.bookings.SettlePaymentFailure(ctx, booking.ID, outcome.ErrorMessage)
		if err != nil {
			return nil, err
		}
		if !applied {
			// A concurrent success delivery settled the row first
			s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetBooking))
			return &Result{Kind: ResultAcknowledged, Target: TargetBooking}, nil
		}
		s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetBooking), bookings.PaymentStatusFailed)
		return &Result{Kind: ResultHandled, Target: TargetBooking}, nil
	}

	applied, err := s.bookings.SettlePaymentSuccess(ctx, booking.ID, outcome.AuthCode)
	if err != nil {
		return nil, err
	}
	if !applied {
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetBooking))
		return &Result{Kind: ResultAcknowledged, Target: TargetBooking}, nil
	}

	s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetBooking), bookings.PaymentStatusSucceeded)
	s.dispatch(notifications.EventBookingConfirmed, outcome.OrderID, map[string]interface{}{
		"booking_id": booking.ID.String(),
	})
	return &Result{
		Kind:        ResultHandled,
		Target:      TargetBooking,
		SideEffects: []string{notifications.EventBookingConfirmed},
	}, nil
}

// settleDraft resolves a payment-first booking: success materializes the
// booking, failure deletes the draft so nothing was ever committed.
func (s *service) settleDraft(ctx context.Context, draft *bookings.BookingDraft, outcome *gateway.Outcome) (*Result, error) {
	if !outcome.IsSuccess {
		if err := s.bookings.DeleteDraft(ctx, draft.ID); err != nil {
			return nil, err
		}
		s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetDraft), bookings.PaymentStatusFailed)
		return &Result{Kind: ResultHandled, Target: TargetDraft}, nil
	}

	booking, err := s.bookings.MaterializeDraft(ctx, draft, outcome.AuthCode)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		// Another delivery won the materialization race
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetDraft))
		return &Result{Kind: ResultAcknowledged, Target: TargetDraft}, nil
	}

	s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetDraft), bookings.PaymentStatusSucceeded)
	s.dispatch(notifications.EventBookingConfirmed, outcome.OrderID, map[string]interface{}{
		"booking_id": booking.ID.String(),
	})
	return &Result{
		Kind:        ResultHandled,
		Target:      TargetDraft,
		SideEffects: []string{notifications.EventBookingConfirmed},
	}, nil
}

// settleTopUp resolves a wallet recharge. The pending→processing claim gives
// exactly one delivery the right to move funds; the credit itself is issued
// before the terminal transition so a crash in between is recoverable via
// the reclaim window without double-crediting (the ledger is keyed by order).
func (s *service) settleTopUp(ctx context.Context, topUp *wallet.CreditTopUp, outcome *gateway.Outcome) (*Result, error) {
	if topUp.PaymentStatus == wallet.PaymentStatusSucceeded {
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetTopUp))
		return &Result{Kind: ResultAcknowledged, Target: TargetTopUp}, nil
	}

	if !outcome.IsSuccess {
		applied, err := s.wallet.MarkTopUpFailed(ctx, topUp.ID)
		if err != nil {
			return nil, err
		}
		if !applied {
			// The row is succeeded or carries a live claim; a failure
			// outcome must disturb neither.
			s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetTopUp))
			return &Result{Kind: ResultAcknowledged, Target: TargetTopUp}, nil
		}
		s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetTopUp), wallet.PaymentStatusFailed)
		return &Result{Kind: ResultHandled, Target: TargetTopUp}, nil
	}

	claimed, err := s.wallet.ClaimTopUp(ctx, topUp.ID, s.reclaimAfter)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetTopUp))
		return &Result{Kind: ResultAcknowledged, Target: TargetTopUp}, nil
	}

	if _, err := s.wallet.IssueCredit(ctx, topUp.UserID, topUp.AmountCents, outcome.OrderID); err != nil {
		if revertErr := s.wallet.RevertClaim(ctx, topUp.ID); revertErr != nil {
			s.log.ErrorContext(ctx, "failed to revert top-up claim", "order_id", outcome.OrderID, "error", revertErr)
		}
		s.log.LogSettlementRetryRequired(ctx, outcome.OrderID, string(TargetTopUp), err)
		return nil, &SideEffectError{OrderID: outcome.OrderID, Op: "credit issuance", Err: err}
	}

	finalized, err := s.wallet.FinalizeTopUp(ctx, topUp.ID)
	if err != nil {
		// Funds are already credited; the ledger's order key makes a retry
		// after reclaim a no-op, so do not revert here.
		s.log.LogSettlementRetryRequired(ctx, outcome.OrderID, string(TargetTopUp), err)
		return nil, &SideEffectError{OrderID: outcome.OrderID, Op: "top-up finalization", Err: err}
	}
	if !finalized {
		// The claim went stale and another delivery reclaimed it. Its own
		// IssueCredit is a ledger no-op, so the funds moved exactly once;
		// this delivery no longer owns the terminal transition.
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetTopUp))
		return &Result{Kind: ResultAcknowledged, Target: TargetTopUp}, nil
	}

	s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetTopUp), wallet.PaymentStatusSucceeded)
	s.dispatch(notifications.EventCreditIssued, outcome.OrderID, map[string]interface{}{
		"user_id":      topUp.UserID.String(),
		"amount_cents": topUp.AmountCents,
	})
	return &Result{
		Kind:        ResultHandled,
		Target:      TargetTopUp,
		SideEffects: []string{notifications.EventCreditIssued},
	}, nil
}

// settleMembership resolves a subscription purchase. Claim and finalize are
// one conditional write; only the winner activates the profile.
func (s *service) settleMembership(ctx context.Context, purchase *memberships.MembershipPurchase, outcome *gateway.Outcome) (*Result, error) {
	if !outcome.IsSuccess {
		applied, err := s.memberships.MarkPurchaseFailed(ctx, purchase.ID)
		if err != nil {
			return nil, err
		}
		if !applied {
			s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetMembership))
			return &Result{Kind: ResultAcknowledged, Target: TargetMembership}, nil
		}
		s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetMembership), memberships.PaymentStatusFailed)
		return &Result{Kind: ResultHandled, Target: TargetMembership}, nil
	}

	if purchase.PaymentStatus == memberships.PaymentStatusSucceeded {
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetMembership))
		return &Result{Kind: ResultAcknowledged, Target: TargetMembership}, nil
	}

	won, err := s.memberships.FinalizePurchase(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		s.log.LogSettlementDuplicate(ctx, outcome.OrderID, string(TargetMembership))
		return &Result{Kind: ResultAcknowledged, Target: TargetMembership}, nil
	}

	if err := s.memberships.ActivateMembership(ctx, purchase); err != nil {
		if revertErr := s.memberships.RevertPurchase(ctx, purchase.ID); revertErr != nil {
			s.log.ErrorContext(ctx, "failed to revert membership purchase", "order_id", outcome.OrderID, "error", revertErr)
		}
		s.log.LogSettlementRetryRequired(ctx, outcome.OrderID, string(TargetMembership), err)
		return nil, &SideEffectError{OrderID: outcome.OrderID, Op: "membership activation", Err: err}
	}

	s.log.LogSettlementHandled(ctx, outcome.OrderID, string(TargetMembership), memberships.PaymentStatusSucceeded)
	s.dispatch(notifications.EventMembershipActivated, outcome.OrderID, map[string]interface{}{
		"user_id": purchase.UserID.String(),
		"tier_id": purchase.TierID,
	})
	return &Result{
		Kind:        ResultHandled,
		Target:      TargetMembership,
		SideEffects: []string{notifications.EventMembershipActivated},
	}, nil
}

// dispatch publishes a settlement event without blocking or failing the
// settlement that already committed. Runs detached from the request context;
// panics and publish errors are contained here.
func (s *service) dispatch(eventType, orderID string, payload map[string]interface{}) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("settlement event dispatch panicked", "type", eventType, "order_id", orderID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		event := &notifications.Event{
			Type:       eventType,
			OrderID:    orderID,
			OccurredAt: time.Now(),
			Payload:    payload,
		}
		if err := s.producer.Publish(ctx, event); err != nil {
			s.log.Error("failed to publish settlement event", "type", eventType, "order_id", orderID, "error", err)
		}
	}()
}
