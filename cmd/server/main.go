// Package main is the entry point for the Scribe Connect Vision server.
//
// The service connects blind students with sighted writers for proctored
// exams: students publish exam requests, nearby available writers are
// notified in realtime, the first writer to accept is bound to the request,
// and the pair can chat over the same websocket channel.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: repository implementations, presence tracking
// - Interface: REST API handlers, websocket realtime channel
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/prasadk1999/scribe-connect-vision/config"

	// Application layer
	"github.com/prasadk1999/scribe-connect-vision/internal/application/command"
	"github.com/prasadk1999/scribe-connect-vision/internal/application/query"

	// Domain layer
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"

	// Infrastructure layer
	"github.com/prasadk1999/scribe-connect-vision/internal/infrastructure/persistence/postgres"
	"github.com/prasadk1999/scribe-connect-vision/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/prasadk1999/scribe-connect-vision/internal/interface/http"
	"github.com/prasadk1999/scribe-connect-vision/internal/interface/realtime"

	// Packages
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:       logger.ParseLevel(cfg.Observability.LogLevel),
		Development: cfg.IsDevelopment(),
		AddCaller:   true,
	})
	defer log.Sync()

	log.Info("starting Scribe Connect Vision",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnection(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Up(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			log.Info("migrations completed", logger.Int("total", len(status)))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS PRESENCE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var presence user.PresenceTracker
	var redisPinger httpserver.Pinger

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		tracker, err := redis.NewPresenceTracker(ctx, redis.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
			PresenceTTL: cfg.Redis.PresenceTTL,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, presence tracking disabled", logger.Err(err))
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = tracker.Close()
			}()
			presence = tracker
			redisPinger = tracker
			log.Info("Redis connection established")
		}
	} else {
		log.Info("Redis disabled, writers will appear offline in search results")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	requestRepo := postgres.NewRequestRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	messageRepo := postgres.NewMessageRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. REALTIME HUB
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing realtime hub...")
	hub := realtime.NewHub(log.With(logger.Component("realtime")))
	defer hub.Close()
	pusher := realtime.NewPusher(hub)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. AUTH PRIMITIVES
	// ─────────────────────────────────────────────────────────────────────────
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		// Allowed only outside production; tokens do not survive restarts.
		jwtSecret = "scribe-connect-dev-secret"
		log.Warn("JWT_SECRET not set, using development secret")
	}
	tokens := httpserver.NewJWTManager(jwtSecret, cfg.Auth.TokenTTL)
	hasher := httpserver.NewBcryptHasher(cfg.Auth.BcryptCost)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	registerUser := command.NewRegisterUserHandler(userRepo, hasher, tokens, log)
	loginUser := command.NewLoginUserHandler(userRepo, hasher, tokens, log)
	createRequest := command.NewCreateRequestHandler(userRepo, requestRepo, notificationRepo, pusher, cfg.Matching.RadiusDegrees, log)
	respondRequest := command.NewRespondRequestHandler(requestRepo, notificationRepo, pusher, log)
	setAvailability := command.NewSetAvailabilityHandler(userRepo, log)
	sendMessage := command.NewSendMessageHandler(requestRepo, messageRepo, notificationRepo, pusher, log)

	getRequests := query.NewGetRequestsHandler(requestRepo)
	getMessages := query.NewGetMessagesHandler(requestRepo, messageRepo)
	getNotifications := query.NewGetNotificationsHandler(notificationRepo)
	findWriters := query.NewFindWritersHandler(userRepo, presence, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. INTERFACE LAYER (websocket + REST)
	// ─────────────────────────────────────────────────────────────────────────
	wsHandler := realtime.NewHandler(hub, tokens, sendMessage, presence, log.With(logger.Component("realtime")))

	server := httpserver.NewServer(httpserver.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:     1 << 20,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	}, httpserver.Dependencies{
		RegisterUserHandler:     registerUser,
		LoginUserHandler:        loginUser,
		CreateRequestHandler:    createRequest,
		RespondRequestHandler:   respondRequest,
		SetAvailabilityHandler:  setAvailability,
		GetRequestsHandler:      getRequests,
		GetMessagesHandler:      getMessages,
		GetNotificationsHandler: getNotifications,
		FindWritersHandler:      findWriters,
		UserRepo:                userRepo,
		Tokens:                  tokens,
		WSHandler:               wsHandler,
		Database:                dbConn,
		Redis:                   redisPinger,
		Logger:                  log.With(logger.Component("http")),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 11. RUN UNTIL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting HTTP server", logger.String("address", server.Address()))
	errCh := server.StartAsync()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
