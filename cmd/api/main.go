package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/threatlens/internal/application"
	appthreats "github.com/bryanwahyu/threatlens/internal/application/threats"
	"github.com/bryanwahyu/threatlens/internal/config"
	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/ai"
	"github.com/bryanwahyu/threatlens/internal/infra/db"
	"github.com/bryanwahyu/threatlens/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/threatlens/internal/infra/storage"
	"github.com/bryanwahyu/threatlens/internal/logging"
	"github.com/bryanwahyu/threatlens/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// .env first so it can feed the env overrides
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "dotenv error: %v\n", err)
		os.Exit(1)
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.Init(cfg.Debug)
	defer log.Sync()

	ctx := context.Background()

	// connect database (postgres, mysql or sqlite)
	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("database open error", "error", err)
	}
	defer store.Close()
	log.Infow("database ready", "driver", store.Driver)

	svc := &appthreats.Service{
		Repo:       store.Repo,
		AI:         ai.NewFromConfig(cfg),
		Normalizer: domain.NewNormalizer(),
		Tagger:     domain.NewTagger(),
		Clock:      application.SystemClock{},
		Log:        log,
	}

	// init minio (optional)
	if cfg.MinioEnabled() {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalw("minio init error", "error", err)
		}
		svc.Archive = archive
	}

	// init router
	handler, stopRouter := httpserver.NewRouter(svc, httpserver.Options{
		Metrics:        middleware.NewMetrics(),
		Checks:         map[string]middleware.HealthChecker{"database": &middleware.DatabaseHealthChecker{DB: store.DB}},
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateCapacity:   cfg.RateLimit.Capacity,
		RateRefill:     cfg.RateLimit.RefillRate,
		Log:            log,
	})
	defer stopRouter()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second, // analyze waits on the model
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Infow("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorw("shutdown error", "error", err)
	}
}
