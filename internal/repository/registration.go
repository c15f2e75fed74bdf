package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventtix/eventtix/internal/model"
)

// uniqueViolation is the Postgres SQLSTATE for unique-constraint failures.
const uniqueViolation = "23505"

// RegistrationRepository handles persistence for registrations. The
// (user_id, event_id) unique constraint is the real duplicate guard; the
// service-level pre-check merely produces a friendlier error sooner.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a registration record. A duplicate (user, event) pair,
// including one that raced past the service pre-check, comes back as
// ErrAlreadyRegistered.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO registrations (id, user_id, event_id, ticket_number, ticket_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.UserID, reg.EventID, reg.TicketNumber, reg.TicketPath, reg.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
			pgErr.ConstraintName != "registrations_ticket_number_key" {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Exists reports whether the (user, event) pair already has a registration.
func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return n > 0, nil
}

const registrationColumns = `id, user_id, event_id, ticket_number, ticket_path, created_at`

func collectRegistrations(rows pgx.Rows) ([]model.Registration, error) {
	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID,
			&reg.TicketNumber, &reg.TicketPath, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// ListByUser returns all registrations held by one user, oldest first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by user: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

// ListByEvent returns all registrations for one event, oldest first.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = $1 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by event: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

// ListAll returns every registration in the system, oldest first.
func (r *RegistrationRepository) ListAll(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

// CountByOwner returns the number of registrations across all events created
// by one organizer.
func (r *RegistrationRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM registrations r
		 JOIN events e ON e.id = r.event_id
		 WHERE e.created_by = $1`,
		ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations by owner: %w", err)
	}
	return n, nil
}
