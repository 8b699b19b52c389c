package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"wikiquiz/internal/adapter"
	"wikiquiz/internal/adapter/quizgen"
	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/database"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/handler"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/middleware"
	"wikiquiz/internal/repository"
	"wikiquiz/internal/service"
	"wikiquiz/internal/wiki"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("request_id", requestIDFromCtx(c)),
		)

		return err
	}
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.LocalRequestID).(string); ok {
		return id
	}
	return ""
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Postgres")

	// Initialize repository
	quizRepository := repository.NewQuizDatabaseAdapter(db)

	// Initialize Redis (optional; the service degrades to DB-only reads)
	var redisClient *redis.Client
	var cacheAdapter domain.Cache
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis")
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
	} else {
		appLogger.Info("Redis disabled; quiz document caching is off")
	}
	quizCacheService := service.NewQuizCacheService(cacheAdapter, cfg.Cache.QuizTTL)

	// Initialize article extractor and quiz generator
	extractor := wiki.NewExtractor(cfg.Scraper, appLogger)

	generator, err := quizgen.NewGeminiQuizGenerator(context.Background(), cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini quiz generator", zap.Error(err))
	}
	appLogger.Info("Gemini quiz generator initialized", zap.String("model", cfg.Gemini.Model))

	// URL -> quiz id recency cache
	urlCache, err := cache.NewURLCache(cfg.Cache.URLCacheSize)
	if err != nil {
		appLogger.Fatal("Failed to create URL cache", zap.Error(err))
	}

	// Initialize services and handlers
	quizService := service.NewQuizService(quizRepository, extractor, generator, urlCache, quizCacheService, cfg)
	quizHandler := handler.NewQuizHandler(quizService)
	vm := middleware.NewValidationMiddleware()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID", MaxAge: 300}))
	app.Use(recover.New())

	// Routes
	app.Get("/", quizHandler.Root)

	apiGroup := app.Group("/api")
	apiGroup.Post("/generate-quiz-from-url", vm.ValidateGenerateQuizRequest(), quizHandler.GenerateQuiz)
	apiGroup.Get("/quiz-history", vm.ValidatePagination(), quizHandler.GetHistory)
	apiGroup.Get("/quiz/:id", vm.ValidateQuizID(), quizHandler.GetQuizByID)
	apiGroup.Get("/health", quizHandler.Health)
	apiGroup.Get("/info", quizHandler.APIInfo)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			appLogger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		appLogger.Warn("Failed to close database", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
