// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sijgeria/community-portal/internal/config"
	"github.com/sijgeria/community-portal/internal/database"
	"github.com/sijgeria/community-portal/internal/handler"
	"github.com/sijgeria/community-portal/internal/mailer"
	"github.com/sijgeria/community-portal/internal/repository"
	"github.com/sijgeria/community-portal/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	var sender mailer.Sender
	if cfg.SMTPEnabled {
		sender = mailer.NewSMTPSender(cfg)
	} else {
		sender = &mailer.LogSender{Logf: log.Printf}
	}
	dispatcher := mailer.NewDispatcher(sender)

	eventRepo := repository.NewEventRepository(pool)
	participationRepo := repository.NewParticipationRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	eventSvc := service.NewEventService(eventRepo, userRepo, dispatcher)
	participationSvc := service.NewParticipationService(eventRepo, participationRepo, dispatcher)

	eventHandler := handler.NewEventHandler(eventSvc)
	participationHandler := handler.NewParticipationHandler(participationSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // access log
	r.Use(handler.CORS)            // permissive CORS

	r.Get("/health", handler.HealthCheck)

	r.Route("/api/participating-events", func(r chi.Router) {
		r.Post("/", eventHandler.CreateEvent)
		r.Get("/", eventHandler.ListMemberEvents)
		r.Get("/all", eventHandler.ListAllEvents)
		r.Get("/open", eventHandler.ListOpenEvents)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Put("/{id}", eventHandler.UpdateEvent)
		r.Delete("/{id}", eventHandler.DeleteEvent)
	})

	r.Route("/api/participations", func(r chi.Router) {
		r.Post("/", participationHandler.Register)
		r.Get("/my", participationHandler.ListMyParticipations)
		r.Get("/event/{eventID}/participants", participationHandler.EventParticipants)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
