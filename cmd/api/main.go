package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-resume-matcher/config"
	_ "go-resume-matcher/docs" // Important for Swagger
	v1 "go-resume-matcher/internal/delivery/http/v1"
	"go-resume-matcher/internal/domain"
	"go-resume-matcher/internal/repository/cache"
	eventrepo "go-resume-matcher/internal/repository/events"
	"go-resume-matcher/internal/repository/postgres"
	"go-resume-matcher/internal/usecase"
	"go-resume-matcher/pkg/atsscore"
	"go-resume-matcher/pkg/database"
	"go-resume-matcher/pkg/events"
	"go-resume-matcher/pkg/logger"
	"go-resume-matcher/pkg/redis"
	"go-resume-matcher/pkg/security"
	"go-resume-matcher/pkg/security/antivirus"
	"go-resume-matcher/pkg/storage"

	"github.com/gin-gonic/gin"
)

// @title           Resume Matcher API
// @version         1.0
// @description     Keyword-based ATS scoring of resumes against job descriptions.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting resume matcher", "port", cfg.Port)
	gin.SetMode(cfg.GinMode)

	environment := "development"
	if cfg.IsProduction() {
		environment = "production"
	}
	secLog := security.InitSecurityLogger(cfg.ServiceName, environment)
	defer secLog.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Engine
	engine := atsscore.NewEngine()
	if cfg.StopWordsFile != "" {
		sw, err := atsscore.LoadStopWords(cfg.StopWordsFile)
		if err != nil {
			logger.Log.Error("Failed to load stop words", "file", cfg.StopWordsFile, "error", err)
			os.Exit(1)
		}
		engine = atsscore.NewEngine(atsscore.WithStopWords(sw))
	}

	checks := map[string]usecase.Pinger{"redis": nil, "database": nil, "storage": nil}

	// 4. Setup Redis (cache L2 and rate limits)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable - using in-memory cache and rate limits", "error", err)
		} else {
			checks["redis"] = redis.HealthCheck
			defer redis.Close()
		}
	} else {
		logger.Log.Warn("UPSTASH_REDIS_URL not set - using in-memory cache and rate limits")
	}

	resultCache := cache.NewAnalysisCache(redis.Client(), cfg.CacheTTL, cfg.CacheMaxEntries)
	go resultCache.Run(ctx, time.Minute)

	// 5. Setup Database (analysis history)
	var analysisRepo domain.AnalysisRepository
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := database.EnsureSchema(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
		analysisRepo = postgres.NewAnalysisRepository(dbPool)
		checks["database"] = dbPool.Ping
	} else {
		logger.Log.Warn("DATABASE_URL not set - analysis history disabled")
	}

	// 6. Setup Object Storage
	var documentStore domain.DocumentStore
	if cfg.StorageConfigured() {
		store, err := storage.NewS3Store(ctx, storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			MaxObjectBytes:  cfg.MaxUploadBytes,
		})
		if err != nil {
			logger.Log.Error("Failed to configure object storage", "error", err)
			os.Exit(1)
		}
		documentStore = store
		checks["storage"] = store.Ping
	} else {
		logger.Log.Warn("S3 storage not configured - stored resume analysis disabled")
	}

	// 7. Setup Event Publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logger.Log.Warn("RabbitMQ unavailable - analysis events disabled", "error", err)
		} else {
			publisher = amqpPub
		}
	} else {
		logger.Log.Warn("RABBITMQ_URL not set - analysis events disabled")
	}
	defer publisher.Close()

	// 8. Setup Antivirus
	scanner := antivirus.New(cfg.ClamAVAddress)
	if !scanner.Available(ctx) {
		logger.Log.Warn("Malware scanner not reachable - uploads will be rejected", "scanner", scanner.Name())
	}

	// 9. Setup UseCases
	analysisUC := usecase.NewAnalysisUsecase(engine, analysisRepo, resultCache, eventrepo.NewAnalysisPublisher(publisher))
	documentUC := usecase.NewDocumentUsecase(documentStore, scanner, secLog, cfg.MaxUploadBytes)
	healthUC := usecase.NewHealthUsecase(checks)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AnalysisUC:     analysisUC,
		DocumentUC:     documentUC,
		HealthUC:       healthUC,
		SecurityLogger: secLog,
		UploadLimiter:  security.NewUploadLimiter(cfg.UploadsPerMinute, cfg.UploadsPerDay),
		Config:         cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
