// internal/notify/notify_test.go
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"skillpadi/internal/users"
)

type captureSink struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (s *captureSink) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.err
}

func (s *captureSink) all() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	d := NewDispatcher(16, 2, slog.Default(), first, second)

	d.Enqueue(Message{Kind: "payment.received", Text: "hello"})
	d.Close()

	require.Len(t, first.all(), 1)
	require.Len(t, second.all(), 1)
}

func TestDispatcherSinkFailureIsolated(t *testing.T) {
	broken := &captureSink{err: errors.New("broker down")}
	healthy := &captureSink{}
	d := NewDispatcher(16, 1, slog.Default(), broken, healthy)

	d.Enqueue(Message{Kind: "payment.received", Text: "hello"})
	d.Close()

	require.Len(t, healthy.all(), 1)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// No workers draining, capacity one: the second message must be
	// dropped rather than block the caller.
	d := NewDispatcher(1, 0, slog.Default(), &captureSink{})
	require.True(t, d.Enqueue(Message{Kind: "a"}))
	require.False(t, d.Enqueue(Message{Kind: "b"}))
}

func TestServiceResolvesRecipientPhone(t *testing.T) {
	store := users.NewMemoryStore()
	userID := uuid.New()
	require.NoError(t, store.Upsert(context.Background(), &users.User{
		ID: userID, Email: "parent@example.com", Phone: "08031234567",
	}))

	sink := &captureSink{}
	d := NewDispatcher(16, 1, slog.Default(), sink)
	svc := NewService(store, d, slog.Default())

	svc.PaymentReceived(userID, 43000, "Annual membership")
	svc.EnrollmentConfirmed(userID, "Ada", "Robotics Foundations", "Sundays 2pm")
	d.Close()

	messages := sink.all()
	require.Len(t, messages, 2)
	for _, msg := range messages {
		require.Equal(t, "08031234567", msg.Phone)
		require.NotEmpty(t, msg.Text)
	}
}

func TestServiceUnknownUserStillEnqueues(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(16, 1, slog.Default(), sink)
	svc := NewService(users.NewMemoryStore(), d, slog.Default())

	svc.PaymentReceived(uuid.New(), 43000, "")
	d.Close()

	messages := sink.all()
	require.Len(t, messages, 1)
	require.Empty(t, messages[0].Phone)
}

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "2348031234567", normalizePhone("08031234567"))
	require.Equal(t, "2348031234567", normalizePhone("+234 803 123 4567"))
	require.Equal(t, "2348031234567", normalizePhone("0803-123-4567"))
	require.Equal(t, "2348031234567", normalizePhone("2348031234567"))
}
