package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/internal/repository"
	"github.com/eventtix/eventtix/internal/ticket"
	"github.com/eventtix/eventtix/pkg/logger"
)

func newTestService(db *memDB) (*RegistrationService, *memArtifacts, *memNotifier) {
	artifacts := newMemArtifacts()
	notifier := &memNotifier{}
	svc := NewRegistrationService(db, regStore{db}, userStore{db}, artifacts, notifier, logger.NewNop())
	// Store the payload itself as the artifact body so tests can decode it.
	svc.render = func(payload string) ([]byte, error) { return []byte(payload), nil }
	return svc, artifacts, notifier
}

func TestRegisterScenario(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	svc, _, _ := newTestService(db)

	owner := db.addUser("Owner", "owner@example.com")
	event := db.addEvent("Launch Party", 2, owner.ID)
	userA := db.addUser("A", "a@example.com")
	userB := db.addUser("B", "b@example.com")
	userC := db.addUser("C", "c@example.com")

	if _, err := svc.Register(ctx, userA.ID, event.ID); err != nil {
		t.Fatalf("A register: %v", err)
	}
	if got := db.availableSeats(event.ID); got != 1 {
		t.Fatalf("after A: available_seats = %d, want 1", got)
	}

	if _, err := svc.Register(ctx, userB.ID, event.ID); err != nil {
		t.Fatalf("B register: %v", err)
	}
	if got := db.availableSeats(event.ID); got != 0 {
		t.Fatalf("after B: available_seats = %d, want 0", got)
	}

	if _, err := svc.Register(ctx, userC.ID, event.ID); !errors.Is(err, repository.ErrNoSeatsAvailable) {
		t.Fatalf("C register: got %v, want ErrNoSeatsAvailable", err)
	}
	if got := db.availableSeats(event.ID); got != 0 {
		t.Fatalf("after C: available_seats = %d, want 0", got)
	}

	if _, err := svc.Register(ctx, userA.ID, event.ID); !errors.Is(err, repository.ErrAlreadyRegistered) {
		t.Fatalf("A again: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	svc, _, _ := newTestService(db)

	user := db.addUser("A", "a@example.com")
	event := db.addEvent("Launch Party", 1, user.ID)

	if _, err := svc.Register(ctx, "not-a-uuid", event.ID); !errors.Is(err, repository.ErrInvalidID) {
		t.Fatalf("bad user id: got %v, want ErrInvalidID", err)
	}
	if _, err := svc.Register(ctx, user.ID, "not-a-uuid"); !errors.Is(err, repository.ErrInvalidID) {
		t.Fatalf("bad event id: got %v, want ErrInvalidID", err)
	}
	if _, err := svc.Register(ctx, user.ID, "b2c7a1de-0000-4000-8000-000000000000"); !errors.Is(err, repository.ErrEventNotFound) {
		t.Fatalf("missing event: got %v, want ErrEventNotFound", err)
	}
	if _, err := svc.Register(ctx, "b2c7a1de-0000-4000-8000-000000000000", event.ID); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("missing user: got %v, want ErrUserNotFound", err)
	}
}

func TestConcurrentRegistrations(t *testing.T) {
	const (
		capacity  = 5
		userCount = 20
	)

	ctx := context.Background()
	db := newMemDB()
	svc, _, notifier := newTestService(db)

	owner := db.addUser("Owner", "owner@example.com")
	event := db.addEvent("Sold Out Show", capacity, owner.ID)

	users := make([]model.User, userCount)
	for i := range users {
		users[i] = db.addUser("User", uniqueEmail(i))
	}

	var successCount, noSeatsCount int64
	var g errgroup.Group
	for i := 0; i < userCount; i++ {
		userID := users[i].ID
		g.Go(func() error {
			_, err := svc.Register(ctx, userID, event.ID)
			switch {
			case err == nil:
				atomic.AddInt64(&successCount, 1)
			case errors.Is(err, repository.ErrNoSeatsAvailable):
				atomic.AddInt64(&noSeatsCount, 1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}

	if successCount != capacity {
		t.Fatalf("successes = %d, want %d", successCount, capacity)
	}
	if noSeatsCount != userCount-capacity {
		t.Fatalf("rejections = %d, want %d", noSeatsCount, userCount-capacity)
	}
	if got := db.availableSeats(event.ID); got != 0 {
		t.Fatalf("final available_seats = %d, want 0", got)
	}

	regs, err := svc.registrations.ListByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(regs) != capacity {
		t.Fatalf("persisted registrations = %d, want %d", len(regs), capacity)
	}
	if notifier.confirmationCount() != capacity {
		t.Fatalf("confirmations = %d, want %d", notifier.confirmationCount(), capacity)
	}
}

func TestDuplicateRacePastPrecheck(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	db.blindPrecheck = true
	svc, _, _ := newTestService(db)

	user := db.addUser("A", "a@example.com")
	event := db.addEvent("Launch Party", 5, user.ID)

	if _, err := svc.Register(ctx, user.ID, event.ID); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// The pre-check reports no duplicate, so the insert itself must reject
	// and the reserved seat must be handed back.
	if _, err := svc.Register(ctx, user.ID, event.ID); !errors.Is(err, repository.ErrAlreadyRegistered) {
		t.Fatalf("second register: got %v, want ErrAlreadyRegistered", err)
	}
	if got := db.availableSeats(event.ID); got != 4 {
		t.Fatalf("available_seats = %d, want 4 (seat released after failed insert)", got)
	}
}

func TestCompensatingReleaseOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	svc, _, notifier := newTestService(db)

	user := db.addUser("A", "a@example.com")
	event := db.addEvent("Launch Party", 3, user.ID)

	insertErr := errors.New("storage unavailable")
	db.insertErr = insertErr

	if _, err := svc.Register(ctx, user.ID, event.ID); !errors.Is(err, insertErr) {
		t.Fatalf("got %v, want wrapped insert error", err)
	}
	if got := db.availableSeats(event.ID); got != 3 {
		t.Fatalf("available_seats = %d, want 3 (seat released)", got)
	}
	if notifier.confirmationCount() != 0 {
		t.Fatal("notification dispatched for failed registration")
	}

	// The whole operation is retryable once storage recovers.
	db.insertErr = nil
	if _, err := svc.Register(ctx, user.ID, event.ID); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if got := db.availableSeats(event.ID); got != 2 {
		t.Fatalf("available_seats = %d, want 2", got)
	}
}

func TestArtifactWriteFailureDoesNotFailRegistration(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	svc, artifacts, notifier := newTestService(db)
	artifacts.failWrites = true

	user := db.addUser("A", "a@example.com")
	event := db.addEvent("Launch Party", 1, user.ID)

	reg, err := svc.Register(ctx, user.ID, event.ID)
	if err != nil {
		t.Fatalf("register with failing artifact store: %v", err)
	}
	if reg.TicketPath != "/static/qrcodes/"+ticket.ArtifactKey(reg.TicketNumber) {
		t.Fatalf("ticket path = %q", reg.TicketPath)
	}
	if got := db.availableSeats(event.ID); got != 0 {
		t.Fatalf("available_seats = %d, want 0", got)
	}
	if notifier.confirmationCount() != 1 {
		t.Fatal("confirmation not dispatched")
	}
}

func TestCapacityBoundsUnderRegisterRelease(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	svc, _, _ := newTestService(db)

	owner := db.addUser("Owner", "owner@example.com")
	event := db.addEvent("Workshop", 2, owner.ID)

	check := func(step string) {
		got := db.availableSeats(event.ID)
		if got < 0 || got > event.TotalSeats {
			t.Fatalf("%s: available_seats = %d out of [0, %d]", step, got, event.TotalSeats)
		}
	}

	for i := 0; i < 5; i++ {
		u := db.addUser("U", uniqueEmail(i))
		_, err := svc.Register(ctx, u.ID, event.ID)
		if err != nil && !errors.Is(err, repository.ErrNoSeatsAvailable) {
			t.Fatalf("register %d: %v", i, err)
		}
		check("register")
	}
	// Releases beyond the number of reservations are absorbed by the cap.
	for i := 0; i < 5; i++ {
		if err := db.ReleaseSeat(ctx, event.ID); err != nil {
			t.Fatalf("release %d: %v", i, err)
		}
		check("release")
	}
	if got := db.availableSeats(event.ID); got != event.TotalSeats {
		t.Fatalf("after releases: available_seats = %d, want %d", got, event.TotalSeats)
	}
}
