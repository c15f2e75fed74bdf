// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventtix/eventtix/internal/auth"
	"github.com/eventtix/eventtix/internal/model"
	"github.com/eventtix/eventtix/internal/repository"
	"github.com/eventtix/eventtix/internal/service"
	"github.com/eventtix/eventtix/pkg/logger"
)

// Handler holds all HTTP handlers for the platform API.
type Handler struct {
	auth           *auth.Service
	events         *service.EventService
	registrations  *service.RegistrationService
	stats          *service.StatsService
	users          service.UserStore
	masterPassword string
	tokenTTL       time.Duration
	log            logger.Logger
}

// New constructs a Handler.
func New(
	authSvc *auth.Service,
	events *service.EventService,
	registrations *service.RegistrationService,
	stats *service.StatsService,
	users service.UserStore,
	masterPassword string,
	tokenTTL time.Duration,
	log logger.Logger,
) *Handler {
	return &Handler{
		auth:           authSvc,
		events:         events,
		registrations:  registrations,
		stats:          stats,
		users:          users,
		masterPassword: masterPassword,
		tokenTTL:       tokenTTL,
		log:            log,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps domain errors to HTTP statuses so each rejection
// reaches the client as a distinct, displayable outcome.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "invalid id format")
	case errors.Is(err, repository.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrNoSeatsAvailable):
		writeError(w, http.StatusConflict, "no seats available for this event")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "you are already registered for this event")
	case errors.Is(err, repository.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already in use")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		h.log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			h.writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. The token is returned in the body and
// set as a cookie for browser clients.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, user, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CreateAdmin handles POST /api/auth/create-admin, gated by the master
// password. Bootstrap only; disabled when no master password is configured.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	if h.masterPassword == "" {
		writeError(w, http.StatusForbidden, "admin creation is disabled")
		return
	}
	var req struct {
		model.SignupRequest
		MasterPassword string `json:"master_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.MasterPassword != h.masterPassword {
		writeError(w, http.StatusForbidden, "invalid master password")
		return
	}

	user, err := h.auth.CreateAdmin(r.Context(), req.SignupRequest)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			h.writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ─── Events ───────────────────────────────────────────────────────────────────

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /api/events. Admin only.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.Create(r.Context(), req, identity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /api/events/{id}. Admin only, last-write-wins.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.events.Update(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event updated successfully"})
}

// DeleteEvent handles DELETE /api/events/{id}. Admin only.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted successfully"})
}

// ─── Registrations ────────────────────────────────────────────────────────────

// Register handles POST /api/events/{id}/register for the authenticated user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	reg, err := h.registrations.Register(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":         "successfully registered for event",
		"registration_id": reg.ID,
		"ticket_number":   reg.TicketNumber,
		"qr_code_path":    reg.TicketPath,
	})
}

// MyRegistrations handles GET /api/registrations/my for the authenticated
// user. Each item has passed through the artifact reconciler.
func (h *Handler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	views, err := h.registrations.ListMyRegistrations(r.Context(), identity.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if views == nil {
		views = []model.RegistrationView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// ─── Admin ────────────────────────────────────────────────────────────────────

// Dashboard handles GET /api/admin/dashboard for the calling organizer.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	stats, err := h.stats.DashboardStats(r.Context(), identity.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// EventStats handles GET /api/admin/events/{id}/stats.
func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.EventStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ListAllRegistrations handles GET /api/admin/registrations.
func (h *Handler) ListAllRegistrations(w http.ResponseWriter, r *http.Request) {
	views, err := h.registrations.ListAllRegistrations(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if views == nil {
		views = []model.AdminRegistrationView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// ListEventRegistrations handles GET /api/admin/registrations/event/{id}.
func (h *Handler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	views, err := h.registrations.ListEventRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if views == nil {
		views = []model.AdminRegistrationView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
