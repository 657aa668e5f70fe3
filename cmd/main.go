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

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/league-standings/cache"
	"github.com/Dosada05/league-standings/config"
	"github.com/Dosada05/league-standings/db"
	"github.com/Dosada05/league-standings/handlers"
	"github.com/Dosada05/league-standings/notifications"
	"github.com/Dosada05/league-standings/realtime"
	"github.com/Dosada05/league-standings/repositories"
	api "github.com/Dosada05/league-standings/routes"
	"github.com/Dosada05/league-standings/services"
	"github.com/Dosada05/league-standings/standings"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("locale", cfg.CollationLocale.String()))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoMigrate {
		if err := db.ApplySchema(ctx, dbConn); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("schema applied")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable at startup, roster cache will fall back to the database", slog.Any("error", err))
		}
		pingCancel()
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close redis client", slog.Any("error", err))
			}
		}()
	} else {
		logger.Info("REDIS_ADDR not set, roster cache disabled")
	}

	var publisher notifications.Publisher
	if cfg.RabbitMQURL != "" {
		amqpPublisher := notifications.NewAMQPPublisher(cfg.RabbitMQURL, cfg.OpenMatchQueue)
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				logger.Error("failed to close rabbitmq connection", slog.Any("error", err))
			}
		}()
		publisher = amqpPublisher
	} else {
		logger.Info("RABBITMQ_URL not set, open match notifications are only logged")
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	matchSetRepo := repositories.NewPostgresMatchSetRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn, matchSetRepo)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	referenceRepo := repositories.NewPostgresReferenceRepository(dbConn)
	registry := cache.NewRegistryCache(repositories.NewPostgresRegistrationRepository(dbConn), rdb, cfg.RegistryCacheTTL, logger)
	logger.Info("Repositories initialized")

	matchService := services.NewMatchService(matchRepo, registry, logger)
	standingsService := services.NewStandingsService(registry, standingRepo, matchRepo, standings.NewEngine(cfg.CollationLocale), logger)
	referenceService := services.NewReferenceService(referenceRepo)
	logger.Info("Services initialized")

	dispatcher := notifications.NewDispatcher(notifications.NewFilter(cfg.DedupCapacity), publisher, logger)
	listener := notifications.NewListener(cfg.DatabaseURL, logger, wsHub.HandleEvent, dispatcher.Handle)
	go func() {
		if err := listener.Run(ctx); err != nil {
			logger.Error("match change listener stopped", slog.Any("error", err))
		}
	}()

	matchHandler := handlers.NewMatchHandler(matchService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	rosterHandler := handlers.NewRosterHandler(registry)
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, cfg.DedupCapacity, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:       []byte(cfg.JWTSecretKey),
			AllowedOrigins:  cfg.CORSAllowedOrigins,
			WritesPerMinute: cfg.WritesPerMinute,
		},
		matchHandler,
		standingsHandler,
		rosterHandler,
		referenceHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

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
			cancel()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server stopped gracefully")
		}
	}

	cancel()
}
