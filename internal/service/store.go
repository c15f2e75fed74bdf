// Package service implements business logic and orchestration between HTTP
// handlers and the storage, artifact and notification layers.
package service

import (
	"context"

	"github.com/eventtix/eventtix/internal/model"
)

// EventStore is the event persistence surface services depend on.
// ReserveSeat and ReleaseSeat are the capacity ledger: implementations must
// perform the check-and-decrement as one atomic conditional update.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest, createdBy string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, req model.UpdateEventRequest) error
	Delete(ctx context.Context, id string) error
	ReserveSeat(ctx context.Context, eventID string) error
	ReleaseSeat(ctx context.Context, eventID string) error
}

// RegistrationStore is the registration persistence surface. Create must
// reject a duplicate (user, event) pair with repository.ErrAlreadyRegistered
// even when the caller's pre-check raced.
type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) error
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListAll(ctx context.Context) ([]model.Registration, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// UserStore is the read-only slice of user persistence services need.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// ArtifactStore holds rendered ticket images, keyed by artifact key.
type ArtifactStore interface {
	Write(key string, data []byte) error
	Exists(key string) bool
	PublicPath(key string) string
	FilePath(key string) string
}

// Notifier dispatches best-effort notifications. Calls never block and
// never fail.
type Notifier interface {
	RegistrationConfirmed(email, name, ticketNumber, artifactFile string)
	EventCreated(email string, event *model.Event)
}
