package parking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

/* ======================= fakes ======================= */

// passTxManager runs the closure directly; the fakes below are their own
// source of truth so there is nothing to commit or roll back.
type passTxManager struct{}

func (passTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOwner struct {
	location models.Location
	policy   models.PaymentPolicy
	balance  types.Amount
}

// fakeStore is an in-memory stand-in for the postgres repos, mirroring
// their sentinel semantics.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.ParkingSession
	drivers  map[string]types.Amount
	owners   map[string]*fakeOwner
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uuid.UUID]*models.ParkingSession),
		drivers:  make(map[string]types.Amount),
		owners:   make(map[string]*fakeOwner),
	}
}

func (f *fakeStore) FindActiveByDriver(_ context.Context, driverEmail string) (*models.ParkingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.DriverEmail == driverEmail && s.EndTime == nil {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Insert(_ context.Context, s *models.ParkingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sessions {
		if existing.DriverEmail == s.DriverEmail && existing.EndTime == nil {
			return types.ErrDuplicateSession
		}
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStore) MarkStopped(_ context.Context, sessionID uuid.UUID, driverEmail, ownerEmail string, now time.Time) (*models.ParkingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.DriverEmail != driverEmail || s.OwnerEmail != ownerEmail || s.EndTime != nil {
		return nil, types.ErrSessionNotFound
	}
	end := now
	s.EndTime = &end
	cp := *s
	return &cp, nil
}

func (f *fakeStore) MarkPaid(_ context.Context, sessionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return false, types.ErrSessionNotFound
	}
	if s.PaymentStatus == types.PaymentPaid {
		return false, nil
	}
	s.PaymentStatus = types.PaymentPaid
	return true, nil
}

func (f *fakeStore) FindWithOwnerPolicy(_ context.Context, sessionID uuid.UUID) (*models.SessionWithPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	owner, ok := f.owners[s.OwnerEmail]
	if !ok || owner.policy.RatePerMinute.IsZero() {
		return nil, types.ErrNoPaymentPolicy
	}
	return &models.SessionWithPolicy{Session: *s, Policy: owner.policy}, nil
}

func (f *fakeStore) GetBalance(_ context.Context, email string) (types.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drivers[email], nil
}

func (f *fakeStore) Debit(_ context.Context, email string, amount types.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drivers[email] = f.drivers[email].Sub(amount)
	return nil
}

func (f *fakeStore) GetLocation(_ context.Context, email string) (models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[email]
	if !ok {
		return models.Location{}, types.ErrOwnerNotFound
	}
	return owner.location, nil
}

func (f *fakeStore) GetPaymentPolicy(_ context.Context, email string) (*models.PaymentPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[email]
	if !ok {
		return nil, types.ErrOwnerNotFound
	}
	if owner.policy.RatePerMinute.IsZero() {
		return nil, types.ErrNoPaymentPolicy
	}
	cp := owner.policy
	return &cp, nil
}

func (f *fakeStore) Credit(_ context.Context, email string, amount types.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[email]
	if !ok {
		return types.ErrOwnerNotFound
	}
	owner.balance = owner.balance.Add(amount)
	return nil
}

// backdate shifts a stored session's start time into the past so that
// billing windows can be exercised without sleeping.
func (f *fakeStore) backdate(sessionID uuid.UUID, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionID].StartTime = f.sessions[sessionID].StartTime.Add(-d)
}

type recordedEvents struct {
	mu      sync.Mutex
	started []models.SessionStartedMessage
	stopped []models.SessionStoppedMessage
	paid    []models.SessionPaidMessage
}

func (r *recordedEvents) PublishSessionStarted(_ context.Context, msg models.SessionStartedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, msg)
	return nil
}

func (r *recordedEvents) PublishSessionStopped(_ context.Context, msg models.SessionStoppedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = append(r.stopped, msg)
	return nil
}

func (r *recordedEvents) PublishSessionPaid(_ context.Context, msg models.SessionPaidMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paid = append(r.paid, msg)
	return nil
}

const (
	testDriver = "driver@test.com"
	testOwner  = "owner@test.com"
)

func newTestService(t *testing.T) (*Service, *fakeStore, *recordedEvents) {
	t.Helper()

	store := newFakeStore()
	store.drivers[testDriver] = types.AmountFromMajor(1000)
	store.owners[testOwner] = &fakeOwner{
		location: models.Location{Latitude: 43.238949, Longitude: 76.889709},
		policy:   models.PaymentPolicy{RatePerMinute: types.AmountFromMajor(1)},
	}

	events := &recordedEvents{}
	log := logger.InitLogger("parking-test", logger.LevelError)
	svc := NewService(store, store, store, events, passTxManager{}, log)
	return svc, store, events
}

/* ======================= start ======================= */

func TestStartSession_CreatesActiveSession(t *testing.T) {
	svc, store, events := newTestService(t)
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if res.Duplicate {
		t.Fatalf("fresh start must not be marked duplicate")
	}
	if res.SessionID.IsZero() {
		t.Fatalf("expected a session id")
	}
	if res.Location.Latitude != 43.238949 {
		t.Fatalf("expected owner location in result, got %+v", res.Location)
	}

	active, err := store.FindActiveByDriver(ctx, testDriver)
	if err != nil || active == nil {
		t.Fatalf("expected an active session in the store, got %v / %v", active, err)
	}
	if active.PaymentStatus != types.PaymentUnpaid {
		t.Fatalf("new session must start unpaid, got %s", active.PaymentStatus)
	}
	if len(events.started) != 1 {
		t.Fatalf("expected one started event, got %d", len(events.started))
	}
}

func TestStartSession_DuplicateReturnsExisting(t *testing.T) {
	svc, store, events := newTestService(t)
	ctx := context.Background()

	store.owners["other@test.com"] = &fakeOwner{
		policy: models.PaymentPolicy{RatePerMinute: types.AmountFromMajor(2)},
	}

	first, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}

	// Second start at a different lot still reports the original session.
	second, err := svc.StartSession(ctx, testDriver, "other@test.com")
	if err != nil {
		t.Fatalf("duplicate start must not error: %v", err)
	}
	if !second.Duplicate {
		t.Fatalf("expected duplicate flag")
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("duplicate must reference the original session: got %s want %s", second.SessionID, first.SessionID)
	}
	if second.Location != first.Location {
		t.Fatalf("duplicate must report the original lot's location")
	}
	if len(store.sessions) != 1 {
		t.Fatalf("duplicate start must not create a row, have %d", len(store.sessions))
	}
	if len(events.started) != 1 {
		t.Fatalf("duplicate start must not publish a second event, got %d", len(events.started))
	}
}

func TestStartSession_UnknownOwner(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), testDriver, "ghost@test.com")
	if !errors.Is(err, types.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("failed start must leave no session behind")
	}
}

func TestStartSession_OwnerWithoutPolicy(t *testing.T) {
	svc, store, _ := newTestService(t)

	// A lot with coordinates but no rate could never bill or be stopped.
	store.owners["bare@test.com"] = &fakeOwner{
		location: models.Location{Latitude: 43.2, Longitude: 76.8},
	}

	_, err := svc.StartSession(context.Background(), testDriver, "bare@test.com")
	if !errors.Is(err, types.ErrNoPaymentPolicy) {
		t.Fatalf("expected ErrNoPaymentPolicy, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("refused start must leave no session behind")
	}
}

func TestStartSession_ConcurrentCreatesOne(t *testing.T) {
	svc, store, events := newTestService(t)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan *models.StartResult, workers)
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.StartSession(context.Background(), testDriver, testOwner)
			if err != nil {
				errs <- err
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent start failed: %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("expected exactly one session row, have %d", len(store.sessions))
	}

	var all []*models.StartResult
	for res := range results {
		all = append(all, res)
	}

	var winner uuid.UUID
	fresh := 0
	for _, res := range all {
		if !res.Duplicate {
			fresh++
			winner = res.SessionID
		}
	}
	if fresh != 1 {
		t.Fatalf("expected exactly one non-duplicate result, got %d", fresh)
	}
	for _, res := range all {
		if res.SessionID != winner {
			t.Fatalf("every caller must see the winning session: got %s want %s", res.SessionID, winner)
		}
	}
	for _, s := range store.sessions {
		if s.ID != winner {
			t.Fatalf("stored session %s does not match the winner %s", s.ID, winner)
		}
	}
	if len(events.started) != 1 {
		t.Fatalf("expected one started event, got %d", len(events.started))
	}
}

// raceStore makes every Insert lose to a concurrent winner that claims the
// driver's slot between the active-session lookup and the insert.
type raceStore struct {
	*fakeStore
	winnerID uuid.UUID
}

func (r *raceStore) Insert(ctx context.Context, s *models.ParkingSession) error {
	winner := &models.ParkingSession{
		ID:            r.winnerID,
		DriverEmail:   s.DriverEmail,
		OwnerEmail:    s.OwnerEmail,
		StartTime:     time.Now().UTC(),
		PaymentStatus: types.PaymentUnpaid,
	}
	_ = r.fakeStore.Insert(ctx, winner)
	return r.fakeStore.Insert(ctx, s)
}

func TestStartSession_LostInsertRaceReportsWinner(t *testing.T) {
	_, store, events := newTestService(t)

	winnerID, err := uuid.New()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	racing := &raceStore{fakeStore: store, winnerID: winnerID}
	log := logger.InitLogger("parking-test", logger.LevelError)
	svc := NewService(racing, store, store, events, passTxManager{}, log)

	res, err := svc.StartSession(context.Background(), testDriver, testOwner)
	if err != nil {
		t.Fatalf("lost race must not surface an error: %v", err)
	}
	if !res.Duplicate {
		t.Fatalf("lost race must be reported as duplicate")
	}
	if res.SessionID != winnerID {
		t.Fatalf("lost race must reference the winner: got %s want %s", res.SessionID, winnerID)
	}
	if len(store.sessions) != 1 {
		t.Fatalf("expected only the winner's row, have %d", len(store.sessions))
	}
	if len(events.started) != 0 {
		t.Fatalf("the loser must not publish a started event, got %d", len(events.started))
	}
}

/* ======================= stop ======================= */

func TestStopSession_BillsElapsedMinutes(t *testing.T) {
	svc, store, events := newTestService(t)
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	store.backdate(res.SessionID, 30*time.Minute)

	receipt, err := svc.StopSession(ctx, res.SessionID, testDriver, testOwner)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if receipt.DurationSeconds < 1800 || receipt.DurationSeconds > 1801 {
		t.Fatalf("expected ~1800s duration, got %d", receipt.DurationSeconds)
	}
	// 30 minutes at 1.00/min, within the rounding of the elapsed second.
	min, max := types.AmountFromMajor(30), types.AmountFromMajor(30).Add(types.Amount(2))
	if receipt.TotalAmount < min || receipt.TotalAmount > max {
		t.Fatalf("expected total near 30.00, got %s", receipt.TotalAmount)
	}
	if !receipt.PenaltyAmount.IsZero() {
		t.Fatalf("no penalty expected below the overstay threshold, got %s", receipt.PenaltyAmount)
	}
	if len(events.stopped) != 1 {
		t.Fatalf("expected one stopped event, got %d", len(events.stopped))
	}
}

func TestStopSession_OverstayAddsPenalty(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.owners[testOwner].policy = models.PaymentPolicy{
		RatePerMinute:       types.AmountFromMajor(1),
		PenaltyThresholdMin: 360,
		PenaltyRatePerMin:   types.AmountFromMajor(10),
	}

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	store.backdate(res.SessionID, 370*time.Minute)

	receipt, err := svc.StopSession(ctx, res.SessionID, testDriver, testOwner)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	// 370 min normal charge plus 10 overstay minutes at the 10x rate.
	wantPenalty := types.AmountFromMajor(100)
	if receipt.PenaltyAmount < wantPenalty || receipt.PenaltyAmount > wantPenalty.Add(types.Amount(20)) {
		t.Fatalf("expected penalty near 100.00, got %s", receipt.PenaltyAmount)
	}
	wantTotal := types.AmountFromMajor(470)
	if receipt.TotalAmount < wantTotal || receipt.TotalAmount > wantTotal.Add(types.Amount(20)) {
		t.Fatalf("expected total near 470.00, got %s", receipt.TotalAmount)
	}
}

func TestStopSession_IdentifierMismatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.StopSession(ctx, res.SessionID, "someone@else.com", testOwner); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("wrong driver: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.StopSession(ctx, res.SessionID, testDriver, "other@lot.com"); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("wrong owner: expected ErrSessionNotFound, got %v", err)
	}
}

func TestStopSession_AlreadyStopped(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.StopSession(ctx, res.SessionID, testDriver, testOwner); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if _, err := svc.StopSession(ctx, res.SessionID, testDriver, testOwner); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("second stop: expected ErrSessionNotFound, got %v", err)
	}
}

/* ======================= pay ======================= */

func stopAfter(t *testing.T, svc *Service, store *fakeStore, elapsed time.Duration) *models.SessionReceipt {
	t.Helper()
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	store.backdate(res.SessionID, elapsed)
	receipt, err := svc.StopSession(ctx, res.SessionID, testDriver, testOwner)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	return receipt
}

func TestPaySession_MovesMoneyOnce(t *testing.T) {
	svc, store, events := newTestService(t)
	ctx := context.Background()

	receipt := stopAfter(t, svc, store, 30*time.Minute)

	paid, err := svc.PaySession(ctx, receipt.SessionID, testDriver)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.TotalAmount != receipt.TotalAmount {
		t.Fatalf("pay must settle the stop amount: got %s want %s", paid.TotalAmount, receipt.TotalAmount)
	}

	wantDriver := types.AmountFromMajor(1000).Sub(receipt.TotalAmount)
	if got := store.drivers[testDriver]; got != wantDriver {
		t.Fatalf("driver balance: got %s want %s", got, wantDriver)
	}
	if got := store.owners[testOwner].balance; got != receipt.TotalAmount {
		t.Fatalf("owner balance: got %s want %s", got, receipt.TotalAmount)
	}

	// Repeat payment: same receipt, no second transfer, no second event.
	again, err := svc.PaySession(ctx, receipt.SessionID, testDriver)
	if err != nil {
		t.Fatalf("repeat pay: %v", err)
	}
	if again.TotalAmount != paid.TotalAmount {
		t.Fatalf("repeat pay must return the settled amount")
	}
	if got := store.drivers[testDriver]; got != wantDriver {
		t.Fatalf("repeat pay must not move money again: got %s want %s", got, wantDriver)
	}
	if len(events.paid) != 1 {
		t.Fatalf("expected exactly one paid event, got %d", len(events.paid))
	}
}

func TestPaySession_ActiveSessionRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.PaySession(ctx, res.SessionID, testDriver); !errors.Is(err, types.ErrSessionNotEnded) {
		t.Fatalf("expected ErrSessionNotEnded, got %v", err)
	}
}

func TestPaySession_WrongDriver(t *testing.T) {
	svc, store, _ := newTestService(t)

	receipt := stopAfter(t, svc, store, 10*time.Minute)
	if _, err := svc.PaySession(context.Background(), receipt.SessionID, "someone@else.com"); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPaySession_UnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	id, err := uuid.New()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	if _, err := svc.PaySession(context.Background(), id, testDriver); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPaySession_ConcurrentSettlesOnce(t *testing.T) {
	svc, store, events := newTestService(t)

	receipt := stopAfter(t, svc, store, 30*time.Minute)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.PaySession(context.Background(), receipt.SessionID, testDriver); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent pay failed: %v", err)
	}

	wantDriver := types.AmountFromMajor(1000).Sub(receipt.TotalAmount)
	if got := store.drivers[testDriver]; got != wantDriver {
		t.Fatalf("money must move exactly once: got %s want %s", got, wantDriver)
	}
	if len(events.paid) != 1 {
		t.Fatalf("expected one paid event, got %d", len(events.paid))
	}
}

/* ======================= active view ======================= */

func TestGetActiveSession_NoneIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.GetActiveSession(context.Background(), testDriver); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetActiveSession_ReportsAccruedCharge(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.StartSession(ctx, testDriver, testOwner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	store.backdate(res.SessionID, 15*time.Minute)

	status, err := svc.GetActiveSession(ctx, testDriver)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if status.SessionID != res.SessionID {
		t.Fatalf("status must reference the active session")
	}
	if status.OwnerEmail != testOwner {
		t.Fatalf("expected owner %s, got %s", testOwner, status.OwnerEmail)
	}
	if status.ElapsedSeconds < 900 || status.ElapsedSeconds > 901 {
		t.Fatalf("expected ~900s elapsed, got %d", status.ElapsedSeconds)
	}
	min, max := types.AmountFromMajor(15), types.AmountFromMajor(15).Add(types.Amount(2))
	if status.TotalAmount < min || status.TotalAmount > max {
		t.Fatalf("expected accrued total near 15.00, got %s", status.TotalAmount)
	}
}
