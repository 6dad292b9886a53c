package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinova/consult/internal/config"
	"github.com/clinova/consult/internal/database"
	"github.com/clinova/consult/internal/handler"
	"github.com/clinova/consult/internal/notify"
	"github.com/clinova/consult/internal/provider"
	"github.com/clinova/consult/internal/service"
	"github.com/clinova/consult/internal/sweeper"
	"github.com/clinova/consult/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load .env if present (local development); real deployments use the
	// environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting Consultation Meeting Service", "version", version)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	// Create indexes
	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	meetingRepo := database.NewMeetingRepository(db)
	appointmentRepo := database.NewAppointmentRepository(db)
	inviteLogRepo := database.NewInviteLogRepository(db)
	lockRepo := database.NewLockRepository(db)

	// Initialize video providers and invite dispatcher
	googleClient := provider.NewGoogleClient(cfg.MeetBrokerURL, cfg.MeetBrokerToken, cfg.ProviderTimeout)
	jitsiBuilder := provider.NewJitsiBuilder(cfg.JitsiBaseURL)
	selector := provider.NewSelector(googleClient, jitsiBuilder)
	dispatcher := notify.NewDispatcher(cfg.NotifyGatewayURL, cfg.NotifyTimeout)

	// Initialize services
	meetingService := service.NewMeetingService(
		meetingRepo,
		inviteLogRepo,
		selector,
		dispatcher,
		cfg.PreJoinWindow,
		cfg.MeetingDuration,
		cfg.MaxParticipants,
		cfg.ClinicLocation(),
	)
	inviteLogService := service.NewInviteLogService(inviteLogRepo)

	// Initialize sweeper
	sweep := sweeper.New(cfg, appointmentRepo, lockRepo)
	if err := sweep.Start(ctx); err != nil {
		slog.Error("Failed to start sweeper", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	meetingHandler := handler.NewMeetingHandler(meetingService)
	inviteHandler := handler.NewInviteHandler(inviteLogService)
	healthHandler := handler.NewHealthHandler(db, version)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	// Create router
	router := handler.NewRouter(
		meetingHandler,
		inviteHandler,
		healthHandler,
		corsConfig,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop sweeper first (wait for an in-flight sweep)
	slog.Info("Stopping sweeper...")
	sweep.Stop(shutdownCtx)

	// Shutdown HTTP server
	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Consultation Meeting Service stopped")
}
