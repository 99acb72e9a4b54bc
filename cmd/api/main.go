package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"persona-studio/internal/config"
	"persona-studio/internal/db"
	apihttp "persona-studio/internal/http"
	"persona-studio/internal/llm"
	"persona-studio/internal/repository"
	"persona-studio/internal/service"
	"persona-studio/internal/wizard"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	personaRepo, closeStore, err := openPersonaStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("persona store", zap.Error(err))
	}
	defer closeStore()

	llmClient, err := llm.NewFromConfig(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	if err != nil {
		logger.Fatal("llm client", zap.Error(err))
	}
	if llmClient == nil {
		logger.Warn("llm api key not configured, previews will be simulated")
	}

	commitLimiter := service.NewMemoryCommitLimiter(cfg.CommitLimitWindow, cfg.CommitLimitMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory commit limiter", zap.Error(err))
		} else {
			commitLimiter = service.NewRedisCommitLimiter(redisClient, logger, cfg.CommitLimitWindow, cfg.CommitLimitMax)
		}
		cancel()
	}

	catalog := wizard.DefaultCatalog()
	wizardSvc := service.NewWizardService(personaRepo, commitLimiter, logger, service.WizardOptions{
		TickInterval: cfg.TrainingTickInterval,
		Catalog:      &catalog,
	})
	defer wizardSvc.CloseAll()
	wizardSvc.StartIdleSweeper(ctx, cfg.WizardSweepInterval, cfg.WizardIdleTTL)

	previewSvc := service.NewPreviewService(llmClient, logger)
	wizardHandler := apihttp.NewWizardHandler(logger, wizardSvc, &catalog)
	personaHandler := apihttp.NewPersonaHandler(logger, personaRepo, previewSvc)
	router := apihttp.NewRouter(logger, wizardHandler, personaHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openPersonaStore usa Postgres si hay DATABASE_URL y SQLite local si no.
func openPersonaStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.PersonaRepository, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo := repository.NewPgPersonaRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("using postgres persona store")
		return repo, pool.Close, nil
	}

	conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.NewSQLitePersonaRepository(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	logger.Info("using sqlite persona store", zap.String("path", cfg.SQLitePath))
	return repo, func() { _ = conn.Close() }, nil
}
