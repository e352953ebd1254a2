// Package notify delivers fire-and-forget confirmations. Messages go
// through a bounded in-process queue; when the queue is full they are
// dropped and logged, never allowed to block a settlement.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"skillpadi/internal/users"
)

// Message is one outbound notification.
type Message struct {
	Kind  string `json:"kind"`
	Phone string `json:"phone,omitempty"`
	Text  string `json:"text"`
}

// Sink delivers a message over one channel (WhatsApp, message broker).
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans messages out to its sinks from a fixed worker pool.
type Dispatcher struct {
	sinks  []Sink
	queue  chan Message
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

func NewDispatcher(queueSize, workers int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		sinks:  sinks,
		queue:  make(chan Message, queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		for _, sink := range d.sinks {
			if err := sink.Send(context.Background(), msg); err != nil {
				d.logger.Error("notification send failed",
					"kind", msg.Kind, "sink", fmt.Sprintf("%T", sink), "error", err)
			}
		}
	}
}

// Enqueue hands a message to the worker pool. Returns false when the
// queue is full and the message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("notification queue full, dropping", "kind", msg.Kind)
		return false
	}
}

// Close drains the queue and stops the workers.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.queue) })
	d.wg.Wait()
}

// Service resolves a user's contact details and formats the standard
// confirmations. It satisfies the notifier interfaces of the payment,
// enrollment and fulfillment packages.
type Service struct {
	users      users.Store
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewService(store users.Store, dispatcher *Dispatcher, logger *slog.Logger) *Service {
	return &Service{users: store, dispatcher: dispatcher, logger: logger}
}

func (s *Service) PaymentReceived(userID uuid.UUID, total int64, description string) {
	s.send(userID, Message{
		Kind: "payment.received",
		Text: paymentReceivedText(total, description),
	})
}

func (s *Service) EnrollmentConfirmed(userID uuid.UUID, childName, programName, schedule string) {
	s.send(userID, Message{
		Kind: "enrollment.confirmed",
		Text: enrollmentConfirmedText(childName, programName, schedule),
	})
}

func (s *Service) send(userID uuid.UUID, msg Message) {
	u, err := s.users.GetByID(context.Background(), userID)
	if err == nil && u.Phone != "" {
		msg.Phone = u.Phone
	} else if err != nil {
		s.logger.Debug("no profile for notification recipient", "user_id", userID)
	}
	s.dispatcher.Enqueue(msg)
}

func paymentReceivedText(total int64, description string) string {
	if description == "" {
		return fmt.Sprintf("Payment of NGN %d received. Thank you!", total)
	}
	return fmt.Sprintf("Payment of NGN %d received for %s. Thank you!", total, description)
}

func enrollmentConfirmedText(childName, programName, schedule string) string {
	text := fmt.Sprintf("%s is enrolled in %s.", childName, programName)
	if schedule != "" {
		text += " Sessions: " + schedule + "."
	}
	return text
}
