// Package notify delivers best-effort email notifications. Delivery runs on
// a background worker fed by a buffered queue: enqueueing never blocks the
// request path and a failed send is logged, never surfaced.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/pkg/logger"
)

// Mailer is the transport notifications are handed to.
type Mailer interface {
	SendRegistrationConfirmation(ctx context.Context, email, name, ticketNumber, artifactFile string) error
	SendEventCreated(ctx context.Context, email string, event *model.Event) error
}

// Service owns the notification queue and worker.
type Service struct {
	mailer Mailer
	log    logger.Logger
	queue  chan func(context.Context)
	wg     sync.WaitGroup
}

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 30 * time.Second

// NewService constructs a notification Service with the given queue depth.
func NewService(mailer Mailer, log logger.Logger, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Service{
		mailer: mailer,
		log:    log,
		queue:  make(chan func(context.Context), queueSize),
	}
}

// Start launches the delivery worker. It drains the queue until Close.
func (s *Service) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for task := range s.queue {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			task(ctx)
			cancel()
		}
	}()
}

// Close stops accepting notifications and waits for in-flight deliveries.
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// enqueue hands a task to the worker without ever blocking the caller. A
// full queue drops the notification with a warning.
func (s *Service) enqueue(kind string, task func(context.Context)) {
	select {
	case s.queue <- task:
	default:
		s.log.Warn("notification queue full, dropping", "kind", kind)
	}
}

// RegistrationConfirmed schedules a confirmation mail for a new
// registration. The registration has already succeeded by the time this is
// called; nothing here can fail it.
func (s *Service) RegistrationConfirmed(email, name, ticketNumber, artifactFile string) {
	s.enqueue("registration_confirmed", func(ctx context.Context) {
		if err := s.mailer.SendRegistrationConfirmation(ctx, email, name, ticketNumber, artifactFile); err != nil {
			s.log.Warn("send registration confirmation failed",
				"email", email, "ticket", ticketNumber, "error", err)
			return
		}
		s.log.Info("registration confirmation sent", "email", email, "ticket", ticketNumber)
	})
}

// EventCreated schedules a mail to the organizer of a newly created event.
func (s *Service) EventCreated(email string, event *model.Event) {
	s.enqueue("event_created", func(ctx context.Context) {
		if err := s.mailer.SendEventCreated(ctx, email, event); err != nil {
			s.log.Warn("send event created mail failed",
				"email", email, "event_id", event.ID, "error", err)
			return
		}
		s.log.Info("event created mail sent", "email", email, "event_id", event.ID)
	})
}
