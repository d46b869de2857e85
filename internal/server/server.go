// Package server assembles the HTTP application from configuration.
package server

import (
	"context"
	"fmt"
	"quiz-forge/internal/adapter"
	"quiz-forge/internal/adapter/extractor"
	"quiz-forge/internal/adapter/llm"
	"quiz-forge/internal/cache"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/handler"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/metrics"
	"quiz-forge/internal/middleware"
	"quiz-forge/internal/render"
	"quiz-forge/internal/service"
	"quiz-forge/internal/tracing"
	"quiz-forge/internal/upload"
	"quiz-forge/internal/validation"
	"strconv"
	"time"

	_ "quiz-forge/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Handlers are the route targets of the application.
type Handlers struct {
	Generate *handler.GenerateHandler
	Session  *handler.SessionHandler
	Health   *handler.HealthHandler
	Page     *handler.PageHandler
}

// NewApp creates the fiber app with middleware and every route registered.
// Generation routes share limiter.
func NewApp(cfg config.ServerConfig, h Handlers, limiter fiber.Handler, withTracing bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID", MaxAge: 300}))
	app.Use(recover.New())
	app.Use(metrics.Middleware())
	if withTracing {
		app.Use(tracing.Middleware())
	}

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", metrics.Handler())

	// API group
	apiGroup := app.Group("/api")
	apiGroup.Get("/health", h.Health.Health)
	apiGroup.Post("/generate-quiz", limiter, h.Generate.GenerateQuiz)
	apiGroup.Get("/sessions/:id", h.Session.GetSession)
	apiGroup.Put("/sessions/:id/answers/:questionId", h.Session.PutAnswer)
	apiGroup.Post("/sessions/:id/reset", h.Session.ResetSession)
	apiGroup.Post("/sessions/:id/score", h.Session.ScoreSession)

	// Pages
	app.Get("/", h.Page.Index)
	app.Post("/generate", limiter, h.Page.Generate)
	app.Get("/sessions/:id", h.Page.ShowSession)
	app.Post("/sessions/:id/submit", h.Page.Submit)
	app.Post("/sessions/:id/reset", h.Page.Reset)

	return app
}

// NewHandlers wires services and handlers around a provider and a session cache.
func NewHandlers(cfg *config.Config, provider domain.ModelProvider, sessionCache domain.Cache, uploads *upload.Store) Handlers {
	generator := service.NewQuizGenerationService(provider, extractor.New())
	sessions := service.NewSessionService(sessionCache, cfg.Redis.SessionTTL)
	validator := validation.NewValidator(cfg.Upload)

	maxFiles := cfg.Upload.MaxFiles
	if maxFiles <= 0 {
		maxFiles = config.DefaultMaxFiles
	}
	maxFileBytes := cfg.Upload.MaxFileBytes
	if maxFileBytes <= 0 {
		maxFileBytes = config.DefaultMaxFileSize
	}

	generateHandler := handler.NewGenerateHandler(generator, sessions, uploads, validator)
	return Handlers{
		Generate: generateHandler,
		Session:  handler.NewSessionHandler(sessions, validator),
		Health:   handler.NewHealthHandler(sessionCache),
		Page: handler.NewPageHandler(generateHandler, sessions, validator, render.UploadView{
			MaxFiles:  maxFiles,
			MaxFileMB: int(maxFileBytes / (1024 * 1024)),
		}),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	appLogger := logger.Get()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		var err error
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return fmt.Errorf("initialize tracing: %w", err)
		}
		appLogger.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.CollectorEndpoint))
	}
	metrics.Init()

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}
	appLogger.Info("LLM provider initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", provider.ModelID()))

	var sessionCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		sessionCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	} else {
		sessionCache = adapter.NewMemoryCacheAdapter()
		appLogger.Warn("REDIS_ADDRESS not set; sessions are kept in memory")
	}

	uploads, err := upload.NewStore(cfg.Upload.Dir)
	if err != nil {
		return err
	}

	limiter := middleware.RateLimiter(ctx, cfg.RateLimit)
	app := NewApp(cfg.Server, NewHandlers(cfg, provider, sessionCache, uploads), limiter, cfg.Tracing.Enabled)

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		errCh <- app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		appLogger.Warn("Failed to flush traces", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
	return nil
}
