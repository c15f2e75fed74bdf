// Package model defines the core domain types for the event registration platform.
package model

import "time"

// Event represents a bookable event created by an organizer.
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Venue          string    `json:"venue"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookedSeats returns the number of seats already taken.
func (e *Event) BookedSeats() int {
	return e.TotalSeats - e.AvailableSeats
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.AvailableSeats <= 0
}

// User is an account in the platform. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration ties a user to an event. It is immutable after creation;
// the ticket artifact can be regenerated from TicketNumber plus the linked
// user and event records, so TicketPath is purely informational.
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	TicketNumber string    `json:"ticket_number"`
	TicketPath   string    `json:"ticket_qr_path"`
	CreatedAt    time.Time `json:"registration_date"`
}

// ─── Request payloads ─────────────────────────────────────────────────────────

// SignupRequest is the payload for creating a new account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for obtaining a session token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	TotalSeats  int    `json:"total_seats"`
}

// UpdateEventRequest carries a partial event update; nil fields are left
// untouched. Updates are last-write-wins.
type UpdateEventRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Date           *string `json:"date"`
	Time           *string `json:"time"`
	Venue          *string `json:"venue"`
	TotalSeats     *int    `json:"total_seats"`
	AvailableSeats *int    `json:"available_seats"`
}

// ─── Read-side views ──────────────────────────────────────────────────────────

// RegistrationView is one row of a user's ticket listing, with event display
// fields joined in. ArtifactPending is set when the QR image could not be
// (re)generated; the path is still the canonical location it will appear at.
type RegistrationView struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	EventTitle      string    `json:"event_title"`
	EventDate       string    `json:"event_date"`
	EventTime       string    `json:"event_time"`
	EventVenue      string    `json:"event_venue"`
	TicketNumber    string    `json:"ticket_number"`
	TicketPath      string    `json:"ticket_qr_path"`
	ArtifactPending bool      `json:"artifact_pending,omitempty"`
	CreatedAt       time.Time `json:"registration_date"`
}

// AdminRegistrationView is one row of the admin registration listings.
type AdminRegistrationView struct {
	ID           string    `json:"id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	EventID      string    `json:"event_id"`
	EventTitle   string    `json:"event_title"`
	TicketNumber string    `json:"ticket_number"`
	TicketPath   string    `json:"ticket_qr_path"`
	CreatedAt    time.Time `json:"registration_date"`
}

// Attendee is one registered user in an event's stats.
type Attendee struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	TicketNumber string    `json:"ticket_number"`
	RegisteredAt time.Time `json:"registration_date"`
}

// EventStats is the per-event rollup.
type EventStats struct {
	EventTitle     string     `json:"event_title"`
	EventDate      string     `json:"event_date"`
	EventTime      string     `json:"event_time"`
	EventVenue     string     `json:"event_venue"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	BookedSeats    int        `json:"booked_seats"`
	Registrations  int        `json:"total_registrations"`
	Attendees      []Attendee `json:"attendees"`
}

// EventSummary is one row of the organizer dashboard.
type EventSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	AvailableSeats int    `json:"available_seats"`
	TotalSeats     int    `json:"total_seats"`
}

// DashboardStats sums across all events owned by one organizer.
type DashboardStats struct {
	TotalEvents         int            `json:"total_events"`
	TotalRegistrations  int            `json:"total_registrations"`
	TotalSeatsAvailable int            `json:"total_seats_available"`
	TotalSeatsBooked    int            `json:"total_seats_booked"`
	Events              []EventSummary `json:"events"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
