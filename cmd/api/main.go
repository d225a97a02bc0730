// Command api serves the dating history, stats and wrapped endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/database"
	"github.com/imadgeboyega/datewrapped/internal/common/logger"
	"github.com/imadgeboyega/datewrapped/internal/common/middleware"
	"github.com/imadgeboyega/datewrapped/internal/config"
	"github.com/imadgeboyega/datewrapped/internal/dating"
	"github.com/imadgeboyega/datewrapped/internal/stats"
	"github.com/imadgeboyega/datewrapped/internal/wrapped"
)

var startTime = time.Now()

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if envErr != nil {
		log.Info("no .env file, using environment", zap.Error(envErr))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := database.NewPostgresDB(ctx, &database.PostgresConfig{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		MaxLifetime:  cfg.DBConnLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected")

	if err := database.Migrate(ctx, db.DB); err != nil {
		return err
	}

	// Redis is optional. Without it sign-in attempts are not limited and
	// wrapped sessions live in process memory.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("redis connected")
		}
	}

	var google auth.GoogleVerifier
	if cfg.EnableGoogleAuth {
		google, err = auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			return err
		}
	}

	authService := auth.NewService(
		auth.NewPostgresRepository(db),
		auth.NewAttemptLimiter(redisClient, cfg.LoginAttemptsMax, cfg.LoginAttemptsWindow),
		google,
		&auth.Config{
			JWTSecret:          cfg.JWTSecret,
			AccessTokenExpiry:  cfg.AccessTokenExpiry,
			RefreshTokenExpiry: cfg.RefreshTokenExpiry,
			BCryptCost:         cfg.BCryptCost,
		},
		log,
	)
	authMiddleware := auth.NewMiddleware(authService)
	authHandler := auth.NewHandler(authService, authMiddleware)

	datingService := dating.NewService(dating.NewPostgresRepository(db), log)
	statsService := stats.NewService(datingService)

	sessions := wrapped.NewMemoryStore()
	if redisClient != nil {
		sessions = wrapped.NewRedisStore(redisClient, cfg.WrappedSessionTTL)
	}
	completer := wrapped.NewOpenAICompleter(wrapped.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
	})
	generator := wrapped.NewGenerator(completer, cfg.GenerationTimeout, log)
	wrappedService := wrapped.NewService(sessions, datingService, generator, log)

	router := mux.NewRouter()
	router.Use(middleware.Logging(log))

	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	authHandler.RegisterRoutes(router)
	dating.RegisterRoutes(router, dating.NewHandler(datingService), authMiddleware)
	stats.RegisterRoutes(router, stats.NewHandler(statsService), authMiddleware)
	wrapped.RegisterRoutes(router, wrapped.NewHandler(wrappedService), authMiddleware)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      middleware.CORS(cfg.CORSAllowedOrigin)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		auth.NewCleanupService(authService, cfg.SessionCleanupInterval, log).Start(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	})
}
