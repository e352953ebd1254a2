// internal/payment/service_test.go
package payment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"skillpadi/internal/paystack"
	"skillpadi/internal/program"
)

type fakeGateway struct {
	mu          sync.Mutex
	initErr     error
	verifyTx    *paystack.Transaction
	verifyErr   error
	initCalls   int
	verifyCalls int
	lastInit    paystack.InitializeRequest
}

func (g *fakeGateway) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &paystack.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*paystack.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	tx := *g.verifyTx
	tx.Reference = reference
	return &tx, nil
}

type countingFulfiller struct {
	calls atomic.Int64
	last  atomic.Pointer[Record]
}

func (f *countingFulfiller) Fulfill(_ context.Context, rec *Record) error {
	f.calls.Add(1)
	f.last.Store(rec)
	return nil
}

func newTestService(t *testing.T, gw Gateway, f Fulfiller) (Service, Store, program.Service) {
	t.Helper()
	store := NewMemoryStore()
	programs := program.NewService(program.NewMemoryStore())
	svc := NewService(store, programs, gw, f, nil, "http://localhost:3000", slog.Default())
	return svc, store, programs
}

func successTx() *paystack.Transaction {
	return &paystack.Transaction{
		ID:      987654,
		Status:  "success",
		Channel: "card",
		PaidAt:  "2026-08-01T10:30:00Z",
	}
}

func TestCheckoutComputesTotalsAndCreatesPendingRecord(t *testing.T) {
	gw := &fakeGateway{}
	svc, store, _ := newTestService(t, gw, &countingFulfiller{})

	session, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(40000), session.Amount)
	require.Equal(t, int64(3000), session.Tax)
	require.Equal(t, int64(43000), session.TotalAmount)
	require.NotEmpty(t, session.AuthorizationURL)

	rec, err := store.GetByReference(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusPending, rec.Status)
	require.Equal(t, int64(43000), rec.TotalAmount)

	// The gateway sees the total in the minor unit.
	require.Equal(t, int64(4300000), gw.lastInit.AmountKobo)
	require.Equal(t, session.Reference, gw.lastInit.Reference)
}

func TestCheckoutGatewayFailureMarksRecordFailed(t *testing.T) {
	gw := &fakeGateway{initErr: errors.New("connection refused")}
	svc, store, _ := newTestService(t, gw, &countingFulfiller{})

	_, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.ErrorIs(t, err, ErrGateway)

	// The attempt is still recorded, as failed.
	var failed *Record
	memStore := store.(*MemoryStore)
	memStore.mu.Lock()
	for _, rec := range memStore.records {
		failed = rec
	}
	memStore.mu.Unlock()
	require.NotNil(t, failed)
	require.Equal(t, StatusFailed, failed.Status)
}

func TestCheckoutRejectsFullProgram(t *testing.T) {
	gw := &fakeGateway{}
	svc, _, programs := newTestService(t, gw, &countingFulfiller{})

	p, err := programs.Create(context.Background(), &program.Program{Name: "Robotics", SpotsTotal: 1})
	require.NoError(t, err)
	require.NoError(t, programs.Reserve(context.Background(), p.ID))

	_, err = svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items:     []LineItem{{Type: ItemEnrollment, Amount: 30000}},
		ChildName: "Ada",
		ChildAge:  9,
		ProgramID: p.ID,
	})
	require.ErrorIs(t, err, program.ErrFull)
	require.Equal(t, 0, gw.initCalls)
}

func TestCheckoutValidation(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGateway{}, &countingFulfiller{})

	_, err := svc.Checkout(context.Background(), uuid.New(), "", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemEnrollment, Amount: 30000}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestVerifySettlesOnce(t *testing.T) {
	gw := &fakeGateway{verifyTx: successTx()}
	fulfiller := &countingFulfiller{}
	svc, _, _ := newTestService(t, gw, fulfiller)

	session, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, VerifySuccess, result.Status)
	require.Equal(t, StatusSuccess, result.Payment.Status)
	require.EqualValues(t, 1, fulfiller.calls.Load())

	// A second poll short-circuits without touching the gateway again.
	before := gw.verifyCalls
	result, err = svc.Verify(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, VerifyAlreadyProcessed, result.Status)
	require.Equal(t, before, gw.verifyCalls)
	require.EqualValues(t, 1, fulfiller.calls.Load())
}

func TestVerifyNonSuccessDoesNotSettle(t *testing.T) {
	gw := &fakeGateway{verifyTx: &paystack.Transaction{Status: "abandoned"}}
	fulfiller := &countingFulfiller{}
	svc, store, _ := newTestService(t, gw, fulfiller)

	session, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, "abandoned", result.Status)
	require.EqualValues(t, 0, fulfiller.calls.Load())

	rec, err := store.GetByReference(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusPending, rec.Status)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	fulfiller := &countingFulfiller{}
	svc, _, _ := newTestService(t, &fakeGateway{}, fulfiller)

	session, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.NoError(t, err)

	event := WebhookEvent{
		Event: "charge.success",
		Data: WebhookData{
			ID:        987654,
			Reference: session.Reference,
			Status:    "success",
			Channel:   "card",
			PaidAt:    "2026-08-01T10:30:00Z",
		},
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.HandleWebhookEvent(context.Background(), event))
	}
	require.EqualValues(t, 1, fulfiller.calls.Load())
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	fulfiller := &countingFulfiller{}
	svc, _, _ := newTestService(t, &fakeGateway{}, fulfiller)

	err := svc.HandleWebhookEvent(context.Background(), WebhookEvent{
		Event: "transfer.success",
		Data:  WebhookData{Reference: "CHK_WHATEVER"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, fulfiller.calls.Load())
}

func TestConcurrentVerifyAndWebhookSettleExactlyOnce(t *testing.T) {
	gw := &fakeGateway{verifyTx: successTx()}
	fulfiller := &countingFulfiller{}
	svc, store, _ := newTestService(t, gw, fulfiller)

	session, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.NoError(t, err)

	event := WebhookEvent{
		Event: "charge.success",
		Data: WebhookData{
			ID:        987654,
			Reference: session.Reference,
			Status:    "success",
			Channel:   "card",
			PaidAt:    "2026-08-01T10:30:00Z",
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Verify(context.Background(), session.Reference)
		}()
		go func() {
			defer wg.Done()
			_ = svc.HandleWebhookEvent(context.Background(), event)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, fulfiller.calls.Load())
	rec, err := store.GetByReference(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, rec.Status)
	require.NotNil(t, rec.PaidAt)
}

func TestRefundOnlySucceededPayments(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGateway{verifyTx: successTx()}, &countingFulfiller{})

	session, err := svc.Checkout(context.Background(), uuid.New(), "parent@example.com", CheckoutRequest{
		Items: []LineItem{{Type: ItemMembership, Amount: 40000}},
	})
	require.NoError(t, err)

	// Pending payments cannot be refunded.
	require.ErrorIs(t, svc.Refund(context.Background(), session.Reference), ErrValidation)

	_, err = svc.Verify(context.Background(), session.Reference)
	require.NoError(t, err)
	require.NoError(t, svc.Refund(context.Background(), session.Reference))

	rec, err := svc.GetByReference(context.Background(), session.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusRefunded, rec.Status)

	require.ErrorIs(t, svc.Refund(context.Background(), session.Reference), ErrValidation)
}
