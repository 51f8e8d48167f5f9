package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meet-app/internal/config"
	"meet-app/internal/database"
	"meet-app/internal/handlers"
	"meet-app/internal/registry"
	"meet-app/internal/services"
	"meet-app/internal/signaling"
	ws "meet-app/internal/websocket"
	"meet-app/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(context.Background()); err != nil {
		logger.Fatal("Failed to initialize schema: %v", err)
	}

	// Wire the signaling core: registry and store are injected so the
	// coordinator never touches ambient connection state.
	reg := registry.New()
	hub := ws.NewHub()
	coordinator := signaling.NewCoordinator(db, reg, hub, cfg.Database.StoreTimeout)
	meetingService := services.NewMeetingService(db, cfg.Meeting.CodeLength, cfg.Meeting.CodeMaxAttempts)

	// Initialize handlers
	meetingHandlers := handlers.NewMeetingHandlers(meetingService)
	wsHandlers := handlers.NewWebSocketHandlers(hub, coordinator)

	// Setup routes
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	handlers.MountRoutes(r, meetingHandlers, wsHandlers)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Reap meetings that have been inactive past the TTL
	go sweepInactiveMeetings(db, cfg.Meeting)

	// Start server
	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
}

func sweepInactiveMeetings(store database.MeetingStore, cfg config.MeetingConfig) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		deleted, err := store.DeleteInactive(ctx, time.Now().Add(-cfg.TTL))
		cancel()

		if err != nil {
			logger.Error("Inactivity sweep failed: %v", err)
			continue
		}
		if deleted > 0 {
			logger.Info("Cleaned up %d inactive meetings", deleted)
		}
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
