package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amora-backend/internal/clock"
	"amora-backend/internal/config"
	"amora-backend/internal/handlers"
	"amora-backend/internal/middleware"
	"amora-backend/internal/repository"
	"amora-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to redis (quick-access token store)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatal().Err(err).Msg("Failed to ping redis")
	}
	cancelPing()
	log.Info().Msg("Redis connection established")

	// Initialize repositories
	principalRepo := repository.NewPrincipalRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	tokenRepo := repository.NewTokenRepository(redisClient)

	// Initialize services
	clk := clock.System()
	notificationService := services.NewNotificationService(notificationRepo, clk, cfg.Presence.PageSize)
	lifecycleService := services.NewLifecycleService(messageRepo, conversationRepo, clk, cfg.Presence.GracePeriod.Std())
	presenceService := services.NewPresenceService(principalRepo, clk, cfg.Presence.StaleThreshold.Std(), cfg.Presence.PageSize)
	presenceService.SetLifecycle(lifecycleService)
	identityService := services.NewIdentityService(
		principalRepo, tokenRepo, presenceService,
		likeRepo, blockRepo, notificationRepo, conversationRepo,
		clk, cfg.JWT.Secret, cfg.Presence.QuickTokenTTL.Std(),
	)
	blockService := services.NewBlockService(blockRepo, likeRepo, principalRepo, clk)
	likeService := services.NewLikeService(likeRepo, blockRepo, principalRepo, notificationService, clk)
	conversationService := services.NewConversationService(
		conversationRepo, messageRepo, blockRepo, principalRepo, notificationService,
		clk, cfg.Presence.MaxMessageLength, cfg.Presence.PageSize,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(identityService)
	presenceHandler := handlers.NewPresenceHandler(presenceService)
	likeHandler := handlers.NewLikeHandler(likeService)
	blockHandler := handlers.NewBlockHandler(blockService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	sweepHandler := handlers.NewSweepHandler(presenceService, lifecycleService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/quick", authHandler.QuickAccess)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(identityService))
			r.Get("/me", authHandler.Me)
			r.Delete("/me", authHandler.DeleteAccount)
			r.Post("/heartbeat", presenceHandler.Heartbeat)
			r.Post("/logout", authHandler.Logout)
			r.Get("/users/online", presenceHandler.ListOnline)
			r.Post("/users/{id}/like", likeHandler.Like)
			r.Delete("/users/{id}/like", likeHandler.Unlike)
			r.Post("/users/{id}/block", blockHandler.Block)
			r.Delete("/users/{id}/block", blockHandler.Unblock)
			r.Get("/blocks", blockHandler.ListBlocked)
			r.Post("/conversations/with/{id}", conversationHandler.GetOrCreate)
			r.Get("/conversations", conversationHandler.List)
			r.Delete("/conversations/{id}", conversationHandler.Archive)
			r.Post("/conversations/{id}/messages", conversationHandler.SendMessage)
			r.Get("/conversations/{id}/messages", conversationHandler.ListMessages)
			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/read", notificationHandler.MarkAllRead)
		})
	})

	// Scheduler routes, guarded by the shared sweep secret
	r.Route("/internal/sweep", func(r chi.Router) {
		r.Use(middleware.SweepMiddleware(cfg.Sweep.Secret))
		r.Post("/presence", sweepHandler.SweepPresence)
		r.Post("/messages", sweepHandler.SweepMessages)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Sweep-Secret")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
