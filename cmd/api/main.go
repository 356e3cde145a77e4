package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lessonloop/ingest-ms-go/internal/cache"
	"github.com/lessonloop/ingest-ms-go/internal/config"
	"github.com/lessonloop/ingest-ms-go/internal/db"
	"github.com/lessonloop/ingest-ms-go/internal/handler/api"
	"github.com/lessonloop/ingest-ms-go/internal/logger"
	cMiddleware "github.com/lessonloop/ingest-ms-go/internal/middleware"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	repo "github.com/lessonloop/ingest-ms-go/internal/repository/mysql"
	"github.com/lessonloop/ingest-ms-go/internal/storage"
	"github.com/lessonloop/ingest-ms-go/internal/task"
	artifactSvc "github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)

	r := initRouter(ctx)

	strg := initStorage(ctx, cfg)
	initBuckets(ctx, strg, cfg)

	artifactRepo := repo.NewArtifactRepository(database.DB)
	var ca port.Cache
	var dispatcher port.TaskDispatcher
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		dispatcher = task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		dispatcher = task.NewNoopDispatcher()
		logger.Warn(ctx, "⚠️  Redis not configured — caching and job dispatch are disabled")
	}

	submitSvc := artifactSvc.NewIngestionSubmitter(artifactRepo, dispatcher, cfg.StagingDir)
	r.With(cMiddleware.WithOwnerID()).
		Post("/artifacts", api.SubmitArtifactHandler(submitSvc))

	listSvc := artifactSvc.NewArtifactLister(artifactRepo)
	r.With(cMiddleware.WithOwnerID()).
		Get("/artifacts", api.ListArtifactsHandler(listSvc))

	getSvc := artifactSvc.NewArtifactGetter(artifactRepo, strg, ca, cfg.Bucket)
	r.With(cMiddleware.WithArtifactID()).
		Get("/artifacts/{id}", api.GetArtifactHandler(getSvc))

	deleteSvc := artifactSvc.NewArtifactDeleter(artifactRepo, strg, ca, cfg.Bucket)
	r.With(cMiddleware.WithArtifactID()).
		Delete("/artifacts/{id}", api.DeleteArtifactHandler(deleteSvc))

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MySQLDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func initBuckets(ctx context.Context, strg port.Storage, cfg *config.Settings) {
	// artifacts are link-shareable, backups never are
	if err := strg.InitBucket(cfg.Bucket, true); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.Bucket, err)
		os.Exit(1)
	}
	if err := strg.InitBucket(cfg.BackupsBucket, false); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.BackupsBucket, err)
		os.Exit(1)
	}
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
