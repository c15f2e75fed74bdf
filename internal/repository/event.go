package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventtix/eventtix/internal/model"
)

// EventRepository handles persistence for events, including the seat
// counter. It is the capacity ledger: the only code that mutates
// available_seats, always through single conditional statements.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, event_date, event_time, venue,
	total_seats, available_seats, created_by, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Venue,
		&e.TotalSeats, &e.AvailableSeats, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event. available_seats starts equal to total_seats.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest, createdBy string) (*model.Event, error) {
	event := &model.Event{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		Time:           req.Time,
		Venue:          req.Venue,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, event_date, event_time, venue,
			total_seats, available_seats, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Title, event.Description, event.Date, event.Time, event.Venue,
		event.TotalSeats, event.AvailableSeats, event.CreatedBy, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events ordered by creation time descending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByOwner returns all events created by one organizer.
func (r *EventRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE created_by = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by owner: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update applies a partial, last-write-wins update. Nil fields keep their
// current value.
func (r *EventRepository) Update(ctx context.Context, id string, req model.UpdateEventRequest) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET
			title           = COALESCE($2::text, title),
			description     = COALESCE($3::text, description),
			event_date      = COALESCE($4::text, event_date),
			event_time      = COALESCE($5::text, event_time),
			venue           = COALESCE($6::text, venue),
			total_seats     = COALESCE($7::int, total_seats),
			available_seats = COALESCE($8::int, available_seats)
		 WHERE id = $1`,
		id, req.Title, req.Description, req.Date, req.Time, req.Venue,
		req.TotalSeats, req.AvailableSeats,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event. Existing registrations are retained; they keep
// their ticket numbers and artifacts and show placeholder event fields.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ReserveSeat atomically takes one seat. The check and the decrement are a
// single conditional UPDATE so concurrent reservations can never drive the
// counter below zero, with or without horizontal replicas of this service.
func (r *EventRepository) ReserveSeat(ctx context.Context, eventID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET available_seats = available_seats - 1
		 WHERE id = $1 AND available_seats > 0`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either a full event or a missing one.
		if _, err := r.GetByID(ctx, eventID); err != nil {
			return err
		}
		return ErrNoSeatsAvailable
	}
	return nil
}

// ReleaseSeat returns one seat, capped at total_seats. It is the compensating
// half of ReserveSeat: at most one release per successful reservation.
func (r *EventRepository) ReleaseSeat(ctx context.Context, eventID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET available_seats = available_seats + 1
		 WHERE id = $1 AND available_seats < total_seats`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, eventID); err != nil {
			return err
		}
		// Counter already at capacity; the release is absorbed by the cap.
	}
	return nil
}
