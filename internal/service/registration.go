package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eventtix/eventtix/internal/artifact"
	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/internal/repository"
	"github.com/eventtix/eventtix/internal/ticket"
	"github.com/eventtix/eventtix/pkg/logger"
)

// placeholder substitutes display fields whose join target is missing.
const placeholder = "Unknown"

// RegistrationService orchestrates seat reservation, ticket issuance,
// artifact generation and notification as one logical operation.
type RegistrationService struct {
	events        EventStore
	registrations RegistrationStore
	users         UserStore
	artifacts     ArtifactStore
	notifier      Notifier
	log           logger.Logger

	// render is swappable in tests; production uses artifact.Render.
	render func(payload string) ([]byte, error)
}

// NewRegistrationService constructs a RegistrationService with its dependencies.
func NewRegistrationService(
	events EventStore,
	registrations RegistrationStore,
	users UserStore,
	artifacts ArtifactStore,
	notifier Notifier,
	log logger.Logger,
) *RegistrationService {
	return &RegistrationService{
		events:        events,
		registrations: registrations,
		users:         users,
		artifacts:     artifacts,
		notifier:      notifier,
		log:           log,
		render:        artifact.Render,
	}
}

// Register books one seat on an event for a user and issues a ticket.
//
// The seat is reserved through the ledger's atomic conditional decrement
// before the registration record is inserted, so a registration is never
// visible for a seat that was not taken. If the insert fails after the seat
// was reserved (including a duplicate that slipped past the pre-check), the
// seat is released again to bound leakage. A failed artifact write is logged
// and does not fail the registration; the read path heals it later.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	if !isUUID(userID) || !isUUID(eventID) {
		return nil, repository.ErrInvalidID
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique constraint is the real guard.
	exists, err := s.registrations.Exists(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrAlreadyRegistered
	}

	if err := s.events.ReserveSeat(ctx, eventID); err != nil {
		return nil, err
	}

	ticketNumber := ticket.New()
	key := ticket.ArtifactKey(ticketNumber)
	s.writeArtifact(ticketNumber, user.Email, eventID)

	reg := &model.Registration{
		ID:           uuid.New().String(),
		UserID:       userID,
		EventID:      eventID,
		TicketNumber: ticketNumber,
		TicketPath:   s.artifacts.PublicPath(key),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		if relErr := s.events.ReleaseSeat(ctx, eventID); relErr != nil {
			s.log.Error("compensating seat release failed",
				"event_id", eventID, "error", relErr)
		}
		return nil, err
	}

	s.notifier.RegistrationConfirmed(user.Email, user.Name, ticketNumber, s.artifacts.FilePath(key))
	return reg, nil
}

// writeArtifact renders and stores the ticket's QR image. Failures degrade:
// the registration proceeds and the reconciler regenerates on the next read.
func (s *RegistrationService) writeArtifact(ticketNumber, userEmail, eventID string) bool {
	payload := ticket.Payload(ticketNumber, userEmail, eventID)
	png, err := s.render(payload)
	if err != nil {
		s.log.Warn("render ticket artifact failed", "ticket", ticketNumber, "error", err)
		return false
	}
	if err := s.artifacts.Write(ticket.ArtifactKey(ticketNumber), png); err != nil {
		s.log.Warn("write ticket artifact failed", "ticket", ticketNumber, "error", err)
		return false
	}
	return true
}

// ensureArtifact verifies the ticket's artifact exists and regenerates it
// from durable fields if not. The returned path is derived from the ticket
// number alone and is valid either way; pending reports that the artifact
// still does not exist.
func (s *RegistrationService) ensureArtifact(reg *model.Registration, userEmail string) (path string, pending bool) {
	key := ticket.ArtifactKey(reg.TicketNumber)
	path = s.artifacts.PublicPath(key)
	if s.artifacts.Exists(key) {
		return path, false
	}
	return path, !s.writeArtifact(reg.TicketNumber, userEmail, reg.EventID)
}

// ListMyRegistrations returns a user's tickets with event display fields
// joined in. Each item passes through the artifact reconciler; a missing
// event (deleted after registration) yields placeholder fields, never a
// failed read.
func (s *RegistrationService) ListMyRegistrations(ctx context.Context, userID string) ([]model.RegistrationView, error) {
	if !isUUID(userID) {
		return nil, repository.ErrInvalidID
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]model.RegistrationView, 0, len(regs))
	for i := range regs {
		reg := &regs[i]
		path, pending := s.ensureArtifact(reg, user.Email)

		view := model.RegistrationView{
			ID:              reg.ID,
			EventID:         reg.EventID,
			EventTitle:      placeholder,
			TicketNumber:    reg.TicketNumber,
			TicketPath:      path,
			ArtifactPending: pending,
			CreatedAt:       reg.CreatedAt,
		}
		if event, err := s.events.GetByID(ctx, reg.EventID); err == nil {
			view.EventTitle = event.Title
			view.EventDate = event.Date
			view.EventTime = event.Time
			view.EventVenue = event.Venue
		} else if !errors.Is(err, repository.ErrEventNotFound) {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ListAllRegistrations returns every registration with user and event
// display fields joined in. Admin surface.
func (s *RegistrationService) ListAllRegistrations(ctx context.Context) ([]model.AdminRegistrationView, error) {
	regs, err := s.registrations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.adminViews(ctx, regs)
}

// ListEventRegistrations returns all registrations for one event with user
// display fields joined in. Admin surface.
func (s *RegistrationService) ListEventRegistrations(ctx context.Context, eventID string) ([]model.AdminRegistrationView, error) {
	if !isUUID(eventID) {
		return nil, repository.ErrInvalidID
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.adminViews(ctx, regs)
}

func (s *RegistrationService) adminViews(ctx context.Context, regs []model.Registration) ([]model.AdminRegistrationView, error) {
	views := make([]model.AdminRegistrationView, 0, len(regs))
	for i := range regs {
		reg := &regs[i]
		view := model.AdminRegistrationView{
			ID:           reg.ID,
			UserName:     placeholder,
			UserEmail:    placeholder,
			EventID:      reg.EventID,
			EventTitle:   placeholder,
			TicketNumber: reg.TicketNumber,
			TicketPath:   reg.TicketPath,
			CreatedAt:    reg.CreatedAt,
		}
		if user, err := s.users.GetByID(ctx, reg.UserID); err == nil {
			view.UserName = user.Name
			view.UserEmail = user.Email
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		if event, err := s.events.GetByID(ctx, reg.EventID); err == nil {
			view.EventTitle = event.Title
		} else if !errors.Is(err, repository.ErrEventNotFound) {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
