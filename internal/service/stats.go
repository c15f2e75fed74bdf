package service

import (
	"context"
	"errors"

	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/internal/repository"
)

// StatsService derives read-only rollups from the same durable records the
// registration path writes. It never mutates anything.
type StatsService struct {
	events        EventStore
	registrations RegistrationStore
	users         UserStore
}

// NewStatsService constructs a StatsService.
func NewStatsService(events EventStore, registrations RegistrationStore, users UserStore) *StatsService {
	return &StatsService{events: events, registrations: registrations, users: users}
}

// EventStats returns seat totals and the attendee list for one event.
// A registration whose user record is missing shows placeholder display
// fields rather than failing the whole query.
func (s *StatsService) EventStats(ctx context.Context, eventID string) (*model.EventStats, error) {
	if !isUUID(eventID) {
		return nil, repository.ErrInvalidID
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	attendees := make([]model.Attendee, 0, len(regs))
	for i := range regs {
		reg := &regs[i]
		attendee := model.Attendee{
			Name:         placeholder,
			Email:        placeholder,
			TicketNumber: reg.TicketNumber,
			RegisteredAt: reg.CreatedAt,
		}
		if user, err := s.users.GetByID(ctx, reg.UserID); err == nil {
			attendee.Name = user.Name
			attendee.Email = user.Email
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		attendees = append(attendees, attendee)
	}

	return &model.EventStats{
		EventTitle:     event.Title,
		EventDate:      event.Date,
		EventTime:      event.Time,
		EventVenue:     event.Venue,
		TotalSeats:     event.TotalSeats,
		AvailableSeats: event.AvailableSeats,
		BookedSeats:    event.BookedSeats(),
		Registrations:  len(regs),
		Attendees:      attendees,
	}, nil
}

// DashboardStats sums seat and registration counts across all events owned
// by one organizer.
func (s *StatsService) DashboardStats(ctx context.Context, ownerID string) (*model.DashboardStats, error) {
	if !isUUID(ownerID) {
		return nil, repository.ErrInvalidID
	}
	events, err := s.events.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	count, err := s.registrations.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalEvents:        len(events),
		TotalRegistrations: count,
		Events:             make([]model.EventSummary, 0, len(events)),
	}
	for i := range events {
		e := &events[i]
		stats.TotalSeatsAvailable += e.AvailableSeats
		stats.TotalSeatsBooked += e.BookedSeats()
		stats.Events = append(stats.Events, model.EventSummary{
			ID:             e.ID,
			Title:          e.Title,
			Date:           e.Date,
			AvailableSeats: e.AvailableSeats,
			TotalSeats:     e.TotalSeats,
		})
	}
	return stats, nil
}
