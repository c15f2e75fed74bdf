package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventtix/eventtix/internal/auth"
	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/internal/repository"
	"github.com/eventtix/eventtix/pkg/logger"
)

// maxTotalSeats caps event capacity at creation.
const maxTotalSeats = 100_000

// EventService handles event CRUD. Updates are last-write-wins; deletes do
// not cascade to registrations.
type EventService struct {
	events   EventStore
	notifier Notifier
	log      logger.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, notifier Notifier, log logger.Logger) *EventService {
	return &EventService{events: events, notifier: notifier, log: log}
}

// Create validates the request, persists the event, and schedules an
// organizer notification.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest, caller auth.Identity) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if req.Venue == "" {
		return nil, fmt.Errorf("event venue is required")
	}
	if req.Date == "" || req.Time == "" {
		return nil, fmt.Errorf("event date and time are required")
	}
	if req.TotalSeats <= 0 {
		return nil, fmt.Errorf("total_seats must be a positive integer")
	}
	if req.TotalSeats > maxTotalSeats {
		return nil, fmt.Errorf("total_seats cannot exceed %d", maxTotalSeats)
	}

	event, err := s.events.Create(ctx, req, caller.UserID)
	if err != nil {
		return nil, err
	}
	s.notifier.EventCreated(caller.Email, event)
	return event, nil
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if !isUUID(id) {
		return nil, repository.ErrInvalidID
	}
	return s.events.GetByID(ctx, id)
}

// Update applies a partial event update.
func (s *EventService) Update(ctx context.Context, id string, req model.UpdateEventRequest) error {
	if !isUUID(id) {
		return repository.ErrInvalidID
	}
	if req.TotalSeats != nil && *req.TotalSeats <= 0 {
		return fmt.Errorf("total_seats must be a positive integer")
	}
	if req.AvailableSeats != nil && *req.AvailableSeats < 0 {
		return fmt.Errorf("available_seats cannot be negative")
	}
	return s.events.Update(ctx, id, req)
}

// Delete removes an event. Registrations referencing it are retained and
// show placeholder event fields on read.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return repository.ErrInvalidID
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("event deleted", "event_id", id)
	return nil
}
