package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"velocar/internal/bookings"
	"velocar/internal/gateway"
	"velocar/internal/memberships"
	"velocar/internal/notifications"
	"velocar/internal/wallet"
)

// In-memory fakes guarding state with a mutex, so concurrent Settle calls
// exercise the same claim semantics the SQL conditional updates provide.

type fakeBookingRepo struct {
	mu            sync.Mutex
	bookings      map[string]*bookings.Booking // keyed by gateway order id
	drafts        map[string]*bookings.BookingDraft
	created       int
	beforeFailure func() // runs once before SettlePaymentFailure takes the lock
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[string]*bookings.Booking),
		drafts:   make(map[string]*bookings.BookingDraft),
	}
}

func (f *fakeBookingRepo) FindByOrderRef(_ context.Context, orderRef string) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[orderRef]; ok {
		copy := *b
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeBookingRepo) SettlePaymentSuccess(_ context.Context, bookingID uuid.UUID, authCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == bookingID && b.PaymentStatus != bookings.PaymentStatusSucceeded {
			b.PaymentStatus = bookings.PaymentStatusSucceeded
			b.Status = bookings.StatusConfirmed
			b.AuthCode = authCode
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) SettlePaymentFailure(_ context.Context, bookingID uuid.UUID, _ string) (bool, error) {
	if hook := f.beforeFailure; hook != nil {
		f.beforeFailure = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == bookingID && b.PaymentStatus != bookings.PaymentStatusSucceeded {
			b.PaymentStatus = bookings.PaymentStatusFailed
			b.Status = bookings.StatusCancelled
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) FindDraftByOrderID(_ context.Context, orderRef string) (*bookings.BookingDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.drafts[orderRef]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeBookingRepo) MaterializeDraft(_ context.Context, draft *bookings.BookingDraft, authCode string) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drafts[draft.OrderID]; !ok {
		return nil, nil
	}
	delete(f.drafts, draft.OrderID)
	f.created++
	booking := &bookings.Booking{
		ID:             uuid.New(),
		VehicleID:      draft.VehicleID,
		PickupDate:     draft.PickupDate,
		DropoffDate:    draft.DropoffDate,
		Status:         bookings.StatusConfirmed,
		PaymentStatus:  bookings.PaymentStatusSucceeded,
		GatewayOrderID: draft.OrderID,
		AuthCode:       authCode,
	}
	f.bookings[draft.OrderID] = booking
	copy := *booking
	return &copy, nil
}

func (f *fakeBookingRepo) DeleteDraft(_ context.Context, draftID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ref, d := range f.drafts {
		if d.ID == draftID {
			delete(f.drafts, ref)
		}
	}
	return nil
}

type fakeWalletRepo struct {
	mu         sync.Mutex
	topUps     map[string]*wallet.CreditTopUp
	balances   map[uuid.UUID]int64
	credited   map[string]bool // ledger keyed by order ref
	creditErr  error
	creditGate chan struct{} // when set, IssueCredit blocks until closed
	increments int
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		topUps:   make(map[string]*wallet.CreditTopUp),
		balances: make(map[uuid.UUID]int64),
		credited: make(map[string]bool),
	}
}

func (f *fakeWalletRepo) FindTopUpByOrderID(_ context.Context, orderRef string) (*wallet.CreditTopUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.topUps[orderRef]; ok {
		copy := *t
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeWalletRepo) ClaimTopUp(_ context.Context, topUpID uuid.UUID, reclaimAfter time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.topUps {
		if t.ID != topUpID {
			continue
		}
		now := time.Now()
		stale := reclaimAfter > 0 && t.ClaimedAt != nil && t.ClaimedAt.Before(now.Add(-reclaimAfter))
		if t.PaymentStatus == wallet.PaymentStatusPending ||
			(t.PaymentStatus == wallet.PaymentStatusProcessing && stale) {
			t.PaymentStatus = wallet.PaymentStatusProcessing
			t.ClaimedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWalletRepo) IssueCredit(_ context.Context, userID uuid.UUID, amountCents int64, orderRef string) (int64, error) {
	if f.creditGate != nil {
		<-f.creditGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	if !f.credited[orderRef] {
		f.credited[orderRef] = true
		f.balances[userID] += amountCents
		f.increments++
	}
	return f.balances[userID], nil
}

func (f *fakeWalletRepo) FinalizeTopUp(_ context.Context, topUpID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.topUps {
		if t.ID == topUpID && t.PaymentStatus == wallet.PaymentStatusProcessing {
			t.PaymentStatus = wallet.PaymentStatusSucceeded
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWalletRepo) RevertClaim(_ context.Context, topUpID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.topUps {
		if t.ID == topUpID && t.PaymentStatus == wallet.PaymentStatusProcessing {
			t.PaymentStatus = wallet.PaymentStatusPending
			t.ClaimedAt = nil
		}
	}
	return nil
}

func (f *fakeWalletRepo) MarkTopUpFailed(_ context.Context, topUpID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.topUps {
		if t.ID == topUpID && t.PaymentStatus == wallet.PaymentStatusPending {
			t.PaymentStatus = wallet.PaymentStatusFailed
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWalletRepo) status(orderRef string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topUps[orderRef].PaymentStatus
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	purchases   map[string]*memberships.MembershipPurchase
	activations int
	activateErr error
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{purchases: make(map[string]*memberships.MembershipPurchase)}
}

func (f *fakeMembershipRepo) FindPurchaseByOrderID(_ context.Context, orderRef string) (*memberships.MembershipPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.purchases[orderRef]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeMembershipRepo) FinalizePurchase(_ context.Context, purchaseID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.ID == purchaseID && p.PaymentStatus != memberships.PaymentStatusSucceeded {
			p.PaymentStatus = memberships.PaymentStatusSucceeded
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembershipRepo) RevertPurchase(_ context.Context, purchaseID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.ID == purchaseID && p.PaymentStatus == memberships.PaymentStatusSucceeded {
			p.PaymentStatus = memberships.PaymentStatusPending
		}
	}
	return nil
}

func (f *fakeMembershipRepo) MarkPurchaseFailed(_ context.Context, purchaseID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.purchases {
		if p.ID == purchaseID && p.PaymentStatus != memberships.PaymentStatusSucceeded {
			p.PaymentStatus = memberships.PaymentStatusFailed
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembershipRepo) ActivateMembership(_ context.Context, _ *memberships.MembershipPurchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activations++
	return nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []*notifications.Event
}

func (f *fakeProducer) Publish(_ context.Context, event *notifications.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type fixture struct {
	bookings    *fakeBookingRepo
	wallet      *fakeWalletRepo
	memberships *fakeMembershipRepo
	producer    *fakeProducer
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		bookings:    newFakeBookingRepo(),
		wallet:      newFakeWalletRepo(),
		memberships: newFakeMembershipRepo(),
		producer:    &fakeProducer{},
	}
	f.svc = NewService(f.bookings, f.wallet, f.memberships, f.producer, 15*time.Minute)
	return f
}

func successOutcome(orderID string) *gateway.Outcome {
	return &gateway.Outcome{
		OrderID:      orderID,
		IsSuccess:    true,
		AuthCode:     "AUTH1",
		SourceFormat: gateway.FormatLegacySigned,
	}
}

func failureOutcome(orderID string) *gateway.Outcome {
	return &gateway.Outcome{
		OrderID:      orderID,
		IsSuccess:    false,
		ErrorMessage: "card declined",
		SourceFormat: gateway.FormatLegacySigned,
	}
}

func TestSettleUnknownOrder(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Settle(context.Background(), successOutcome("UNKNOWN"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if result.Kind != ResultNotFound {
		t.Errorf("kind = %s, want not_found", result.Kind)
	}
}

func TestSettleLiveBookingSuccess(t *testing.T) {
	f := newFixture()
	bookingID := uuid.New()
	f.bookings.bookings["ORD-1"] = &bookings.Booking{
		ID:             bookingID,
		GatewayOrderID: "ORD-1",
		Status:         bookings.StatusPending,
		PaymentStatus:  bookings.PaymentStatusPending,
	}

	result, err := f.svc.Settle(context.Background(), successOutcome("ORD-1"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if result.Kind != ResultHandled || result.Target != TargetBooking {
		t.Errorf("result = %+v, want handled booking", result)
	}
	b := f.bookings.bookings["ORD-1"]
	if b.PaymentStatus != bookings.PaymentStatusSucceeded || b.Status != bookings.StatusConfirmed {
		t.Errorf("booking state = %s/%s, want succeeded/confirmed", b.PaymentStatus, b.Status)
	}
}

func TestSettleAlreadySettledBookingAcknowledges(t *testing.T) {
	f := newFixture()
	f.bookings.bookings["ORD-2"] = &bookings.Booking{
		ID:             uuid.New(),
		GatewayOrderID: "ORD-2",
		Status:         bookings.StatusConfirmed,
		PaymentStatus:  bookings.PaymentStatusSucceeded,
		AuthCode:       "ORIGINAL",
	}

	result, err := f.svc.Settle(context.Background(), successOutcome("ORD-2"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if result.Kind != ResultAcknowledged {
		t.Errorf("kind = %s, want acknowledged", result.Kind)
	}
	if len(result.SideEffects) != 0 {
		t.Errorf("duplicate delivery triggered side effects: %v", result.SideEffects)
	}
	if f.bookings.bookings["ORD-2"].AuthCode != "ORIGINAL" {
		t.Error("duplicate delivery modified the settled booking")
	}
}

func TestSettleBookingFailureCancels(t *testing.T) {
	f := newFixture()
	f.bookings.bookings["ORD-3"] = &bookings.Booking{
		ID:             uuid.New(),
		GatewayOrderID: "ORD-3",
		Status:         bookings.StatusPending,
		PaymentStatus:  bookings.PaymentStatusPending,
	}

	result, err := f.svc.Settle(context.Background(), failureOutcome("ORD-3"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if result.Kind != ResultHandled {
		t.Errorf("kind = %s, want handled", result.Kind)
	}
	b := f.bookings.bookings["ORD-3"]
	if b.PaymentStatus != bookings.PaymentStatusFailed || b.Status != bookings.StatusCancelled {
		t.Errorf("booking state = %s/%s, want failed/cancelled", b.PaymentStatus, b.Status)
	}
}

func TestSettleDraftFailureDeletesWithoutBooking(t *testing.T) {
	f := newFixture()
	f.bookings.drafts["ORD-4"] = &bookings.BookingDraft{
		ID:        uuid.New(),
		OrderID:   "ORD-4",
		VehicleID: uuid.New(),
	}

	result, err := f.svc.Settle(context.Background(), failureOutcome("ORD-4"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if result.Kind != ResultHandled || result.Target != TargetDraft {
		t.Errorf("result = %+v, want handled draft", result)
	}
	if len(f.bookings.drafts) != 0 {
		t.Error("failed draft was not deleted")
	}
	if f.bookings.created != 0 {
		t.Error("booking was created for a failed payment")
	}
}

func TestSettleDraftSuccessMaterializesOnce(t *testing.T) {
	f := newFixture()
	f.bookings.drafts["ORD-5"] = &bookings.BookingDraft{
		ID:        uuid.New(),
		OrderID:   "ORD-5",
		VehicleID: uuid.New(),
	}

	const deliveries = 8
	var wg sync.WaitGroup
	results := make([]*Result, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := f.svc.Settle(context.Background(), successOutcome("ORD-5"))
			if err != nil {
				t.Errorf("Settle failed: %v", err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()

	if f.bookings.created != 1 {
		t.Fatalf("created %d bookings, want exactly 1", f.bookings.created)
	}

	handled := 0
	for _, r := range results {
		if r != nil && r.Kind == ResultHandled {
			handled++
		}
	}
	if handled != 1 {
		t.Errorf("%d deliveries reported handled, want exactly 1", handled)
	}
}

func TestSettleTopUpConcurrentDeliveriesCreditOnce(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.wallet.topUps["A1"] = &wallet.CreditTopUp{
		ID:            uuid.New(),
		OrderID:       "A1",
		UserID:        userID,
		AmountCents:   5000,
		PaymentStatus: wallet.PaymentStatusPending,
	}

	const deliveries = 10
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Settle(context.Background(), successOutcome("A1")); err != nil {
				t.Errorf("Settle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if f.wallet.balances[userID] != 5000 {
		t.Errorf("balance = %d, want exactly 5000", f.wallet.balances[userID])
	}
	if f.wallet.increments != 1 {
		t.Errorf("balance incremented %d times, want 1", f.wallet.increments)
	}
	if got := f.wallet.topUps["A1"].PaymentStatus; got != wallet.PaymentStatusSucceeded {
		t.Errorf("final status = %s, want succeeded", got)
	}
}

func TestSettleTopUpSideEffectFailureRevertsClaim(t *testing.T) {
	f := newFixture()
	f.wallet.topUps["A2"] = &wallet.CreditTopUp{
		ID:            uuid.New(),
		OrderID:       "A2",
		UserID:        uuid.New(),
		AmountCents:   2500,
		PaymentStatus: wallet.PaymentStatusPending,
	}
	f.wallet.creditErr = errors.New("balance store unavailable")

	_, err := f.svc.Settle(context.Background(), successOutcome("A2"))

	var sideEffect *SideEffectError
	if !errors.As(err, &sideEffect) {
		t.Fatalf("expected SideEffectError, got %v", err)
	}
	if got := f.wallet.topUps["A2"].PaymentStatus; got != wallet.PaymentStatusPending {
		t.Errorf("status after revert = %s, want pending", got)
	}

	// Retry after the transient failure clears completes the settlement
	f.wallet.creditErr = nil
	result, err := f.svc.Settle(context.Background(), successOutcome("A2"))
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.Kind != ResultHandled {
		t.Errorf("retry kind = %s, want handled", result.Kind)
	}
	if got := f.wallet.topUps["A2"].PaymentStatus; got != wallet.PaymentStatusSucceeded {
		t.Errorf("final status = %s, want succeeded", got)
	}
}

func TestSettleTopUpFailureOutcome(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.wallet.topUps["A3"] = &wallet.CreditTopUp{
		ID:            uuid.New(),
		OrderID:       "A3",
		UserID:        userID,
		AmountCents:   9900,
		PaymentStatus: wallet.PaymentStatusPending,
	}

	result, err := f.svc.Settle(context.Background(), failureOutcome("A3"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if result.Kind != ResultHandled {
		t.Errorf("kind = %s, want handled", result.Kind)
	}
	if got := f.wallet.topUps["A3"].PaymentStatus; got != wallet.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", got)
	}
	if f.wallet.balances[userID] != 0 {
		t.Error("failed top-up moved funds")
	}
}

// A failure delivery arriving while another delivery holds the claim must
// not disturb it: the claim either finishes as succeeded or reverts to
// pending, never to failed.
func TestSettleTopUpFailureDuringLiveClaimAcknowledges(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.wallet.topUps["A4"] = &wallet.CreditTopUp{
		ID:            uuid.New(),
		OrderID:       "A4",
		UserID:        userID,
		AmountCents:   5000,
		PaymentStatus: wallet.PaymentStatusPending,
	}
	gate := make(chan struct{})
	f.wallet.creditGate = gate

	done := make(chan *Result, 1)
	go func() {
		r, err := f.svc.Settle(context.Background(), successOutcome("A4"))
		if err != nil {
			t.Errorf("success delivery failed: %v", err)
		}
		done <- r
	}()

	// Wait for the success delivery to claim the row and park in IssueCredit
	deadline := time.Now().Add(2 * time.Second)
	for f.wallet.status("A4") != wallet.PaymentStatusProcessing {
		if time.Now().After(deadline) {
			t.Fatal("success delivery never claimed the top-up")
		}
		time.Sleep(time.Millisecond)
	}

	result, err := f.svc.Settle(context.Background(), failureOutcome("A4"))
	if err != nil {
		t.Fatalf("failure delivery errored: %v", err)
	}
	if result.Kind != ResultAcknowledged {
		t.Errorf("failure delivery kind = %s, want acknowledged", result.Kind)
	}
	if got := f.wallet.status("A4"); got != wallet.PaymentStatusProcessing {
		t.Fatalf("failure delivery disturbed a live claim: status = %s, want processing", got)
	}

	close(gate)
	r := <-done
	if r == nil || r.Kind != ResultHandled {
		t.Fatalf("success delivery result = %+v, want handled", r)
	}
	if got := f.wallet.status("A4"); got != wallet.PaymentStatusSucceeded {
		t.Errorf("final status = %s, want succeeded", got)
	}
	if f.wallet.balances[userID] != 5000 {
		t.Errorf("balance = %d, want 5000", f.wallet.balances[userID])
	}
}

func TestSettleTopUpFailureAfterSucceededAcknowledges(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.wallet.topUps["A5"] = &wallet.CreditTopUp{
		ID:            uuid.New(),
		OrderID:       "A5",
		UserID:        userID,
		AmountCents:   7000,
		PaymentStatus: wallet.PaymentStatusSucceeded,
	}
	f.wallet.balances[userID] = 7000

	result, err := f.svc.Settle(context.Background(), failureOutcome("A5"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if result.Kind != ResultAcknowledged {
		t.Errorf("kind = %s, want acknowledged", result.Kind)
	}
	if got := f.wallet.status("A5"); got != wallet.PaymentStatusSucceeded {
		t.Errorf("status = %s, want succeeded untouched", got)
	}
	if f.wallet.balances[userID] != 7000 {
		t.Errorf("balance = %d, want 7000 untouched", f.wallet.balances[userID])
	}
}

// A failure delivery that loses the conditional write to a concurrent
// success acknowledges instead of reporting handled.
func TestSettleBookingFailureLosingRaceAcknowledges(t *testing.T) {
	f := newFixture()
	f.bookings.bookings["ORD-6"] = &bookings.Booking{
		ID:             uuid.New(),
		GatewayOrderID: "ORD-6",
		Status:         bookings.StatusPending,
		PaymentStatus:  bookings.PaymentStatusPending,
	}
	// The success delivery lands between this delivery's read and its write
	f.bookings.beforeFailure = func() {
		f.bookings.mu.Lock()
		defer f.bookings.mu.Unlock()
		b := f.bookings.bookings["ORD-6"]
		b.PaymentStatus = bookings.PaymentStatusSucceeded
		b.Status = bookings.StatusConfirmed
	}

	result, err := f.svc.Settle(context.Background(), failureOutcome("ORD-6"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if result.Kind != ResultAcknowledged {
		t.Errorf("kind = %s, want acknowledged", result.Kind)
	}
	b := f.bookings.bookings["ORD-6"]
	if b.PaymentStatus != bookings.PaymentStatusSucceeded || b.Status != bookings.StatusConfirmed {
		t.Errorf("booking state = %s/%s, want succeeded/confirmed untouched", b.PaymentStatus, b.Status)
	}
}

func TestSettleMembershipActivatesOnce(t *testing.T) {
	f := newFixture()
	f.memberships.purchases["M1"] = &memberships.MembershipPurchase{
		ID:            uuid.New(),
		OrderID:       "M1",
		UserID:        uuid.New(),
		TierID:        "black",
		BillingCycle:  memberships.BillingCycleYearly,
		PaymentStatus: memberships.PaymentStatusPending,
	}

	const deliveries = 6
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Settle(context.Background(), successOutcome("M1")); err != nil {
				t.Errorf("Settle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if f.memberships.activations != 1 {
		t.Errorf("activated %d times, want exactly 1", f.memberships.activations)
	}
	if got := f.memberships.purchases["M1"].PaymentStatus; got != memberships.PaymentStatusSucceeded {
		t.Errorf("final status = %s, want succeeded", got)
	}
}

func TestSettleMembershipActivationFailureReverts(t *testing.T) {
	f := newFixture()
	f.memberships.purchases["M2"] = &memberships.MembershipPurchase{
		ID:            uuid.New(),
		OrderID:       "M2",
		UserID:        uuid.New(),
		TierID:        "gold",
		PaymentStatus: memberships.PaymentStatusPending,
	}
	f.memberships.activateErr = errors.New("profile store unavailable")

	_, err := f.svc.Settle(context.Background(), successOutcome("M2"))

	var sideEffect *SideEffectError
	if !errors.As(err, &sideEffect) {
		t.Fatalf("expected SideEffectError, got %v", err)
	}
	if got := f.memberships.purchases["M2"].PaymentStatus; got != memberships.PaymentStatusPending {
		t.Errorf("status after revert = %s, want pending", got)
	}
}
