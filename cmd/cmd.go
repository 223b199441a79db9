package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clsh-backend/internal/cache"
	"clsh-backend/internal/config"
	"clsh-backend/internal/handlers"
	"clsh-backend/internal/middleware"
	"clsh-backend/internal/repository"
	"clsh-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
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

	// Optional redis cache for public slug lookups
	var clashCache services.ClashCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, running without cache")
		} else {
			clashCache = cache.NewRedisCache(redisClient)
			log.Info().Msg("Redis cache enabled")
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	clashRepo := repository.NewClashRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	viewRepo := repository.NewViewRepository(db)
	nutritionRepo := repository.NewNutritionRepository(db)

	// Initialize services
	resultsHub := services.NewResultsHub()
	userService := services.NewUserService(userRepo, nutritionRepo, cfg.JWT.Secret)
	clashService := services.NewClashService(clashRepo, clashCache)
	voteService := services.NewVoteService(clashRepo, voteRepo, viewRepo, resultsHub)
	analyticsService := services.NewAnalyticsService(clashRepo, voteRepo, viewRepo)
	nutritionService := services.NewNutritionService(nutritionRepo, cfg.LLM.Endpoint, cfg.LLM.APIKey)

	var uploadService *services.UploadService
	if cfg.AWS.S3Bucket != "" {
		uploadService, err = services.NewUploadService(
			clashService,
			cfg.AWS.Region,
			cfg.AWS.S3Bucket,
			cfg.AWS.AccessKey,
			cfg.AWS.SecretKey,
			cfg.AWS.Endpoint,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create upload service")
		}
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	clashHandler := handlers.NewClashHandler(clashService, analyticsService, uploadService)
	voteHandler := handlers.NewVoteHandler(clashService, voteService)
	nutritionHandler := handlers.NewNutritionHandler(nutritionService)
	wsHandler := handlers.NewWebSocketHandler(resultsHub, clashService)

	// Embed voting limiter: per-IP sliding window, process-local
	embedLimiter := middleware.NewSlidingWindow(
		cfg.RateLimit.Limit,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
	)

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
		r.Post("/auth/session", userHandler.StartSession)
		r.Get("/vote/{slug}", voteHandler.GetClash)
		r.Post("/vote/{slug}", voteHandler.SubmitVote)
		r.Post("/track-view", voteHandler.TrackView)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(embedLimiter))
			r.Post("/embed/vote/{slug}", voteHandler.SubmitEmbedVote)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Get("/clashes", clashHandler.List)
			r.Post("/clashes", clashHandler.Create)
			r.Get("/clashes/{clash_id}", clashHandler.Get)
			r.Put("/clashes/{clash_id}", clashHandler.Update)
			r.Delete("/clashes/{clash_id}", clashHandler.Delete)
			r.Get("/clashes/{clash_id}/analytics", clashHandler.Analytics)
			r.Post("/clashes/{clash_id}/options/{option_id}/upload-url", clashHandler.OptionUploadURL)

			r.Post("/nutrition/parse", nutritionHandler.ParseFood)
			r.Get("/nutrition/logs", nutritionHandler.ListLogs)
			r.Post("/nutrition/logs", nutritionHandler.CreateLog)
			r.Get("/nutrition/goals", nutritionHandler.GetGoals)
			r.Put("/nutrition/goals", nutritionHandler.UpdateGoals)
		})
	})

	// WebSocket route
	r.Get("/ws/results", wsHandler.HandleResults)

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
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
