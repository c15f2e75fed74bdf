// Package repository implements all database access for the platform.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import "errors"

// Sentinel domain errors. Services and handlers route on these with
// errors.Is; anything else is an infrastructure failure.
var (
	// ErrInvalidID is returned when an identifier is not a well-formed UUID.
	ErrInvalidID = errors.New("invalid id")

	// ErrEventNotFound is returned when a referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoSeatsAvailable is returned when an event has no remaining seats.
	// It is terminal: retrying the same event cannot succeed.
	ErrNoSeatsAvailable = errors.New("no seats available for this event")

	// ErrAlreadyRegistered is returned when the same user registers twice
	// for one event.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrEmailTaken is returned when signing up with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already in use")
)
