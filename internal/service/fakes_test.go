package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventtix/eventtix/internal/auth"
	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/internal/repository"
)

// memDB is an in-memory stand-in for the pgx repositories. Its mutex models
// the storage layer's atomicity: ReserveSeat is a single conditional
// check-and-decrement, and Create enforces the (user, event) unique
// constraint regardless of what Exists reported earlier.
type memDB struct {
	mu     sync.Mutex
	events map[string]model.Event
	users  map[string]model.User
	regs   []model.Registration
	pairs  map[string]bool

	// blindPrecheck makes Exists always report false, simulating the
	// pre-check losing the race to a concurrent insert.
	blindPrecheck bool
	// insertErr forces registration inserts to fail.
	insertErr error
}

func newMemDB() *memDB {
	return &memDB{
		events: make(map[string]model.Event),
		users:  make(map[string]model.User),
		pairs:  make(map[string]bool),
	}
}

func (d *memDB) addEvent(title string, totalSeats int, ownerID string) model.Event {
	e := model.Event{
		ID:             uuid.New().String(),
		Title:          title,
		Date:           "2026-09-01",
		Time:           "19:00",
		Venue:          "Main Hall",
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		CreatedBy:      ownerID,
		CreatedAt:      time.Now().UTC(),
	}
	d.events[e.ID] = e
	return e
}

func (d *memDB) addUser(name, email string) model.User {
	u := model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	d.users[u.ID] = u
	return u
}

func (d *memDB) availableSeats(eventID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events[eventID].AvailableSeats
}

// ─── EventStore ───────────────────────────────────────────────────────────────

func (d *memDB) Create(_ context.Context, req model.CreateEventRequest, createdBy string) (*model.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := model.Event{
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
	d.events[e.ID] = e
	return &e, nil
}

func (d *memDB) List(_ context.Context) ([]model.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Event, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e)
	}
	return out, nil
}

func (d *memDB) ListByOwner(_ context.Context, ownerID string) ([]model.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Event
	for _, e := range d.events {
		if e.CreatedBy == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (d *memDB) GetByID(_ context.Context, id string) (*model.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &e, nil
}

func (d *memDB) Update(_ context.Context, id string, req model.UpdateEventRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.TotalSeats != nil {
		e.TotalSeats = *req.TotalSeats
	}
	if req.AvailableSeats != nil {
		e.AvailableSeats = *req.AvailableSeats
	}
	d.events[id] = e
	return nil
}

func (d *memDB) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(d.events, id)
	return nil
}

func (d *memDB) ReserveSeat(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if e.AvailableSeats <= 0 {
		return repository.ErrNoSeatsAvailable
	}
	e.AvailableSeats--
	d.events[eventID] = e
	return nil
}

func (d *memDB) ReleaseSeat(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if e.AvailableSeats < e.TotalSeats {
		e.AvailableSeats++
		d.events[eventID] = e
	}
	return nil
}

// ─── RegistrationStore ────────────────────────────────────────────────────────

func (d *memDB) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	return d.createReg(reg)
}

func (d *memDB) createReg(reg *model.Registration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.insertErr != nil {
		return d.insertErr
	}
	key := reg.UserID + "|" + reg.EventID
	if d.pairs[key] {
		return repository.ErrAlreadyRegistered
	}
	d.pairs[key] = true
	d.regs = append(d.regs, *reg)
	return nil
}

func (d *memDB) Exists(_ context.Context, userID, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.blindPrecheck {
		return false, nil
	}
	return d.pairs[userID+"|"+eventID], nil
}

func (d *memDB) ListByUser(_ context.Context, userID string) ([]model.Registration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Registration
	for _, r := range d.regs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *memDB) ListByEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Registration
	for _, r := range d.regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *memDB) ListAll(_ context.Context) ([]model.Registration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Registration, len(d.regs))
	copy(out, d.regs)
	return out, nil
}

func (d *memDB) CountByOwner(_ context.Context, ownerID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.regs {
		if e, ok := d.events[r.EventID]; ok && e.CreatedBy == ownerID {
			n++
		}
	}
	return n, nil
}

// ─── UserStore ────────────────────────────────────────────────────────────────

func (d *memDB) GetUserByID(_ context.Context, id string) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (d *memDB) ListUsers(_ context.Context) ([]model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	return out, nil
}

// regStore and userStore adapt memDB's prefixed methods to the store
// interfaces, which use the same method names across stores.
type regStore struct{ db *memDB }

func (s regStore) Create(ctx context.Context, reg *model.Registration) error {
	return s.db.CreateRegistration(ctx, reg)
}
func (s regStore) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	return s.db.Exists(ctx, userID, eventID)
}
func (s regStore) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return s.db.ListByUser(ctx, userID)
}
func (s regStore) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return s.db.ListByEvent(ctx, eventID)
}
func (s regStore) ListAll(ctx context.Context) ([]model.Registration, error) {
	return s.db.ListAll(ctx)
}
func (s regStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return s.db.CountByOwner(ctx, ownerID)
}

type userStore struct{ db *memDB }

func (s userStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.db.GetUserByID(ctx, id)
}
func (s userStore) List(ctx context.Context) ([]model.User, error) {
	return s.db.ListUsers(ctx)
}

var errFailedWrite = errors.New("artifact store write failed")

// memArtifacts is an in-memory artifact store that counts writes.
type memArtifacts struct {
	mu         sync.Mutex
	files      map[string][]byte
	writes     int
	failWrites bool
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{files: make(map[string][]byte)}
}

func (a *memArtifacts) Write(key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failWrites {
		return errFailedWrite
	}
	a.files[key] = data
	a.writes++
	return nil
}

func (a *memArtifacts) Exists(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.files[key]
	return ok
}

func (a *memArtifacts) PublicPath(key string) string { return "/static/qrcodes/" + key }
func (a *memArtifacts) FilePath(key string) string   { return "/tmp/qrcodes/" + key }

func (a *memArtifacts) delete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.files, key)
}

func (a *memArtifacts) writeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes
}

func (a *memArtifacts) content(key string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.files[key]
}

// memNotifier records dispatched notifications.
type memNotifier struct {
	mu            sync.Mutex
	confirmations []string
	created       []string
}

func (n *memNotifier) RegistrationConfirmed(_, _, ticketNumber, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, ticketNumber)
}

func (n *memNotifier) EventCreated(_ string, event *model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, event.ID)
}

func (n *memNotifier) confirmationCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmations)
}

func uniqueEmail(i int) string {
	return "user" + strconv.Itoa(i) + "@example.com"
}

func authIdentity(email string) auth.Identity {
	return auth.Identity{UserID: uuid.New().String(), Email: email, IsAdmin: true}
}

func eventRequest(title, venue, date, tm string, seats int) model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:      title,
		Venue:      venue,
		Date:       date,
		Time:       tm,
		TotalSeats: seats,
	}
}
