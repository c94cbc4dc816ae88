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

	"github.com/cyberarena/tournament-bot/bot"
	"github.com/cyberarena/tournament-bot/brackets"
	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/config"
	"github.com/cyberarena/tournament-bot/db"
	"github.com/cyberarena/tournament-bot/handlers"
	"github.com/cyberarena/tournament-bot/provider"
	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/routes"
	"github.com/cyberarena/tournament-bot/services"
	"github.com/cyberarena/tournament-bot/storage"
)

// reminderInterval is how often the scheduler checks for registration
// windows that have closed.
const reminderInterval = time.Minute

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
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn, logger); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewR2Uploader(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, logo mirroring disabled")
	}

	chatClient := chat.NewBotClient(cfg.BotToken)
	providerClient := provider.NewHTTPClient(provider.Config{
		BaseURL:      cfg.ProviderBaseURL,
		ClientID:     cfg.ProviderClientID,
		ClientSecret: cfg.ProviderClientSecret,
		Username:     cfg.ProviderUsername,
	})

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	userService := services.NewUserService(userRepo, cfg.AdminExternalIDs, cfg.DefaultRegion, logger)
	gameService := services.NewGameService(gameRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, gameRepo, userRepo, chatClient, uploader, logger)
	teamService := services.NewTeamService(teamRepo, playerRepo, userRepo, tournamentRepo, chatClient, logger)
	registrationService := services.NewRegistrationService(tournamentRepo, teamRepo, playerRepo, gameRepo, chatClient)
	syncService := services.NewSyncService(tournamentRepo, teamRepo, matchRepo, providerClient, wsHub, logger)
	bracketService := services.NewBracketService(tournamentRepo, teamRepo, providerClient, syncService, logger)
	resultService := services.NewResultService(tournamentRepo, teamRepo, matchRepo, providerClient, syncService, logger)
	broadcastService := services.NewBroadcastService(userRepo, chatClient, logger)
	logger.Info("services initialized")

	tgBot := bot.New(chatClient, bot.NewMemorySessionStore(), bot.Services{
		Users:        userService,
		Tournaments:  tournamentService,
		Teams:        teamService,
		Registration: registrationService,
		Brackets:     bracketService,
		Sync:         syncService,
		Results:      resultService,
		Broadcast:    broadcastService,
	}, logger)

	go func() {
		ticker := time.NewTicker(reminderInterval)
		defer ticker.Stop()
		logger.Info("registration reminder scheduler started", slog.Duration("interval", reminderInterval))
		for range ticker.C {
			if err := tournamentService.RemindClosedRegistrations(context.Background()); err != nil {
				logger.Error("reminder run failed", slog.Any("error", err))
			}
		}
	}()

	router := routes.InitRoutes(routes.Handlers{
		Webhook:   handlers.NewWebhookHandler(tgBot, cfg.BotToken, logger),
		Bracket:   handlers.NewBracketHandler(tournamentService, syncService),
		Game:      handlers.NewGameHandler(gameService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, logger),
	})
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
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			_ = server.Close()
		}
	}
	logger.Info("server stopped")
}
