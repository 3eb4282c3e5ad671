package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barhop-backend/internal/config"
	"barhop-backend/internal/handlers"
	"barhop-backend/internal/middleware"
	"barhop-backend/internal/repository"
	"barhop-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
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

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	eventRepo := repository.NewEventRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	pictureRepo := repository.NewEventPictureRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Push delivery is optional; without an APNs key the dispatcher
	// drops notifications.
	var push services.PushSender
	if cfg.APNs.KeyFile != "" {
		apns, err := services.NewAPNsSender(cfg.APNs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs sender")
		}
		push = apns
	} else {
		log.Warn().Msg("APNs not configured, push delivery disabled")
		push = services.NopPushSender{}
	}

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	feedService := services.NewFeedService(userRepo, friendshipRepo, pictureRepo, reviewRepo)
	fanoutService := services.NewFanoutService(friendshipRepo, attendanceRepo, userRepo)
	notifier := services.NewFeedNotifier(fanoutService, wsHub, push, userRepo)
	pictureService, err := services.NewPictureService(pictureRepo, eventRepo, notifier, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create picture service")
	}
	reviewService := services.NewReviewService(reviewRepo, notifier)
	attendanceService := services.NewAttendanceService(attendanceRepo, eventRepo, eventRepo, userRepo, friendshipRepo, push)
	friendshipService := services.NewFriendshipService(friendshipRepo, userRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	feedHandler := handlers.NewFeedHandler(feedService)
	pictureHandler := handlers.NewPictureHandler(pictureService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, pictureService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)
		r.Get("/feed", feedHandler.GetFeed)
		r.Get("/feed/friends", feedHandler.GetFriends)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Put("/users/push_token", userHandler.UpdatePushToken)
			r.Post("/users/{user_id}/friendships", friendshipHandler.CreateFriendship)
			r.Get("/users/{user_id}/friendships", friendshipHandler.ListFriendships)
			r.Post("/events/{event_id}/attendances", attendanceHandler.CheckIn)
			r.Get("/events/{event_id}/attendances", attendanceHandler.ListAttendees)
			r.Post("/events/{event_id}/pictures", pictureHandler.CreatePicture)
			r.Post("/beers/{beer_id}/reviews", reviewHandler.CreateReview)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

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

	// Shutdown HTTP server; live WebSocket connections are closed
	// as their handlers unwind.
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
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
