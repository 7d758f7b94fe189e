package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bekarys01/unisport-system/config"
	"github.com/Bekarys01/unisport-system/db"
	"github.com/Bekarys01/unisport-system/handlers"
	"github.com/Bekarys01/unisport-system/realtime"
	"github.com/Bekarys01/unisport-system/repositories"
	api "github.com/Bekarys01/unisport-system/routes"
	"github.com/Bekarys01/unisport-system/services"
	"github.com/Bekarys01/unisport-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	hub := realtime.NewHub()
	go hub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	txRunner := repositories.NewTxRunner(dbConn)
	logger.Info("repositories initialized")

	var emailService *services.EmailService
	var inviteMailer services.InviteEmailSender
	if cfg.SMTPHost != "" {
		emailService = services.NewEmailService(cfg)
		inviteMailer = emailService
	}

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	eventService := services.NewEventService(eventRepo, teamRepo, inviteRepo, userRepo, uploader)
	formationService := services.NewFormationService(txRunner, eventRepo, teamRepo, inviteRepo, userRepo, hub, inviteMailer, logger)
	notificationService := services.NewNotificationService(inviteRepo)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	formationHandler := handlers.NewFormationHandler(formationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		eventHandler,
		formationHandler,
		notificationHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
