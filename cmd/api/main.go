package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"isec-extract/internal/config"
	apihttp "isec-extract/internal/http"
	"isec-extract/internal/llm"
	"isec-extract/internal/pdf"
	"isec-extract/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var limiter service.ExtractionRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, rate limiting disabled", zap.Error(err))
		} else {
			limiter = service.NewRedisExtractionRateLimiter(
				redisClient,
				time.Duration(cfg.RateLimitWindowMinutes)*time.Minute,
				cfg.RateLimitMaxRequests,
			)
		}
		cancel()
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, logger)
	reducer := pdf.NewReducer(cfg.PDFKeepFirstPages, cfg.PDFKeepLastPages, logger)
	extractionSvc := service.NewExtractionService(llmClient, reducer, logger, service.ExtractionOptions{
		Model:            cfg.LLMModel,
		FallbackModel:    cfg.LLMFallbackModel,
		MaxTokens:        cfg.LLMMaxTokens,
		Temperature:      cfg.LLMTemperature,
		MaxPromptTokens:  cfg.MaxPromptTokens,
		ReductionEnabled: cfg.PDFReductionEnabled,
		MaxFileSizeMB:    cfg.PDFMaxFileSizeMB,
	})

	extractHandler := apihttp.NewExtractHandler(logger, extractionSvc, limiter, cfg.MaxUploadSizeMB)
	router := apihttp.NewRouter(logger, extractHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("model", cfg.LLMModel))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
