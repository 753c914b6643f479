package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bryanwahyu/aicomply/internal/application"
	appanalyst "github.com/bryanwahyu/aicomply/internal/application/analyst"
	appscans "github.com/bryanwahyu/aicomply/internal/application/scans"
	"github.com/bryanwahyu/aicomply/internal/config"
	domai "github.com/bryanwahyu/aicomply/internal/domain/ai"
	domanalyst "github.com/bryanwahyu/aicomply/internal/domain/analyst"
	"github.com/bryanwahyu/aicomply/internal/domain/controls"
	domain "github.com/bryanwahyu/aicomply/internal/domain/scans"
	"github.com/bryanwahyu/aicomply/internal/domain/scanerrors"
	aiLocal "github.com/bryanwahyu/aicomply/internal/infra/ai/local"
	aiOpenAI "github.com/bryanwahyu/aicomply/internal/infra/ai/openai"
	"github.com/bryanwahyu/aicomply/internal/infra/bundle"
	mysqlp "github.com/bryanwahyu/aicomply/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/aicomply/internal/infra/db/postgres"
	"github.com/bryanwahyu/aicomply/internal/infra/executor/cli"
	"github.com/bryanwahyu/aicomply/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/aicomply/internal/infra/storage"
	"github.com/bryanwahyu/aicomply/internal/middleware"
)

func newLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return zcfg.Build()
}

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database
	var repo domain.Repository
	var analystRepo domanalyst.Repository
	var errorsRepo scanerrors.Repository
	var health = map[string]middleware.HealthChecker{}

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer db.Close()
		repo = postgresp.NewScanRepository(db)
		analystRepo = postgresp.NewAnalystRepository(db)
		errorsRepo = postgresp.NewAnalyzerErrorRepository(db)
		health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect", zap.Error(err))
		}
		defer db.Close()
		repo = mysqlp.NewScanRepository(db)
		analystRepo = mysqlp.NewAnalystRepository(db)
		errorsRepo = mysqlp.NewAnalyzerErrorRepository(db)
		health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init", zap.Error(err))
	}

	// control catalog
	registry, err := controls.DefaultRegistry()
	if err != nil {
		logger.Fatal("control registry", zap.Error(err))
	}

	extractor := &bundle.ZipExtractor{}
	runner := cli.NewRunner(store, extractor)

	scansSvc := appscans.NewService(repo, store, extractor, registry, runner.Adapters(),
		errorsRepo, application.SystemClock{}, logger, appscans.Options{
			Workers:        cfg.Analyzers.Workers,
			MaxAttempts:    cfg.Analyzers.MaxAttempts,
			AttemptTimeout: time.Duration(cfg.Analyzers.TimeoutSeconds) * time.Second,
		})

	var aiClient domai.Client
	if cfg.AI.APIKey != "" {
		aiClient = aiOpenAI.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	} else {
		aiClient = aiLocal.NewClient()
	}
	analystSvc := appanalyst.NewService(aiClient, analystRepo, scansSvc, application.SystemClock{})

	// router + middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.RequestLogger(logger))
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	mux.Mount("/", httpserver.NewRouter(scansSvc, analystSvc, health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
