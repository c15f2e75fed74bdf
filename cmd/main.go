// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/eventtix/eventtix/internal/artifact"
	"github.com/eventtix/eventtix/internal/auth"
	"github.com/eventtix/eventtix/internal/config"
	"github.com/eventtix/eventtix/internal/database"
	"github.com/eventtix/eventtix/internal/handler"
	"github.com/eventtix/eventtix/internal/notify"
	"github.com/eventtix/eventtix/internal/repository"
	"github.com/eventtix/eventtix/internal/service"
	"github.com/eventtix/eventtix/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// ── 1. Connect to PostgreSQL and migrate ─────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("database connect failed", "error", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("database migrate failed", "error", err)
	}
	log.Info("connected to postgres", "host", cfg.Database.Host, "db", cfg.Database.Name)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	artifacts, err := artifact.NewFileStore(cfg.Artifact.Dir, cfg.Artifact.PublicPrefix)
	if err != nil {
		log.Fatal("artifact store init failed", "error", err)
	}

	var mailer notify.Mailer
	if cfg.SMTP.Enabled {
		mailer = notify.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = notify.NewLogMailer(log)
	}
	notifier := notify.NewService(mailer, log, 256)
	notifier.Start()
	defer notifier.Close()

	authSvc := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	eventSvc := service.NewEventService(eventRepo, notifier, log)
	regSvc := service.NewRegistrationService(eventRepo, regRepo, userRepo, artifacts, notifier, log)
	statsSvc := service.NewStatsService(eventRepo, regRepo, userRepo)

	h := handler.New(authSvc, eventSvc, regSvc, statsSvc, userRepo,
		cfg.Auth.MasterPassword, cfg.Auth.TokenTTL, log)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.HTTPLogger(log))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/create-admin", h.CreateAdmin)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Get("/{id}", h.GetEvent)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Post("/{id}/register", h.Register)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth, h.RequireAdmin)
				r.Post("/", h.CreateEvent)
				r.Put("/{id}", h.UpdateEvent)
				r.Delete("/{id}", h.DeleteEvent)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/registrations/my", h.MyRegistrations)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireAuth, h.RequireAdmin)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/events/{id}/stats", h.EventStats)
			r.Get("/users", h.ListUsers)
			r.Get("/registrations", h.ListAllRegistrations)
			r.Get("/registrations/event/{id}", h.ListEventRegistrations)
		})
	})

	// Ticket QR images are publicly readable at a stable path.
	r.Handle(cfg.Artifact.PublicPrefix+"/*",
		http.StripPrefix(cfg.Artifact.PublicPrefix+"/",
			http.FileServer(http.Dir(artifacts.Dir()))))

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "error", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
