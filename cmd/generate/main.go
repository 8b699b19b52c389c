// Command generate runs the scrape-and-generate pipeline once for a
// single article URL and prints the stored quiz as JSON. Useful for
// smoke-testing credentials and prompt changes without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wikiquiz/internal/adapter/quizgen"
	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/database"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/repository"
	"wikiquiz/internal/service"
	"wikiquiz/internal/wiki"

	"go.uber.org/zap"
)

func main() {
	timeout := flag.Duration("timeout", 3*time.Minute, "overall pipeline timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <wikipedia-article-url>\n", os.Args[0])
		os.Exit(2)
	}
	url := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	generator, err := quizgen.NewGeminiQuizGenerator(ctx, cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini quiz generator", zap.Error(err))
	}

	urlCache, err := cache.NewURLCache(cfg.Cache.URLCacheSize)
	if err != nil {
		appLogger.Fatal("Failed to create URL cache", zap.Error(err))
	}

	quizService := service.NewQuizService(
		repository.NewQuizDatabaseAdapter(db),
		wiki.NewExtractor(cfg.Scraper, appLogger),
		generator,
		urlCache,
		service.NewQuizCacheService(nil, cfg.Cache.QuizTTL),
		cfg,
	)

	quiz, err := quizService.GenerateQuizFromURL(ctx, url)
	if err != nil {
		appLogger.Fatal("Quiz generation failed", zap.String("url", url), zap.Error(err))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(quiz); err != nil {
		appLogger.Fatal("Failed to print quiz", zap.Error(err))
	}
}
