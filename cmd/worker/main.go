package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lessonloop/ingest-ms-go/internal/cache"
	"github.com/lessonloop/ingest-ms-go/internal/config"
	"github.com/lessonloop/ingest-ms-go/internal/db"
	workerHandler "github.com/lessonloop/ingest-ms-go/internal/handler/worker"
	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	repo "github.com/lessonloop/ingest-ms-go/internal/repository/mysql"
	"github.com/lessonloop/ingest-ms-go/internal/storage"
	"github.com/lessonloop/ingest-ms-go/internal/task"
	"github.com/lessonloop/ingest-ms-go/internal/transcoder"
	artifactSvc "github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
	lifecycleSvc "github.com/lessonloop/ingest-ms-go/internal/usecase/lifecycle"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	database := initDb(cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	strg := initStorage(cfg)
	initBuckets(strg, cfg)

	artifactRepo := repo.NewArtifactRepository(database.DB)
	ffmpeg := transcoder.NewFFmpeg(cfg.FfmpegBin, cfg.FfprobeBin)
	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
	ca := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)

	uploadSvc := artifactSvc.NewObjectUploader(artifactRepo, strg, cfg.Bucket)
	transcodeSvc := artifactSvc.NewTranscoder(artifactRepo, strg, ffmpeg, dispatcher, cfg.Bucket, cfg.StagingDir)
	metadataSvc := artifactSvc.NewMetadataExtractor(artifactRepo, strg, ffmpeg, ca, cfg.Bucket, cfg.StagingDir)
	optimiseSvc := artifactSvc.NewOptimiser(artifactRepo, strg, ffmpeg, ca, cfg.Bucket, cfg.StagingDir)
	failureSvc := artifactSvc.NewFailureRecorder(artifactRepo, ca)

	purgeSvc := lifecycleSvc.NewOriginalsPurger(artifactRepo, strg, cfg.Bucket, cfg.PurgeOriginalsAfter)
	archiveSvc := lifecycleSvc.NewColdArchiver(artifactRepo, strg, cfg.Bucket, cfg.ArchiveColdAfter)
	reapSvc := lifecycleSvc.NewTempReaper(cfg.StagingDir, cfg.TempMaxAge)
	backlogSvc := lifecycleSvc.NewBacklogOptimiser(artifactRepo, dispatcher, cfg.OptimiseAfter)

	events := task.NewEvents()
	go logEvents(ctx, events.Subscribe())

	mux := asynq.NewServeMux()
	mux.Use(events.Middleware())
	mux.HandleFunc(task.TypeUploadObject, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseUploadObjectPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.UploadObjectHandler(ctx, p, uploadSvc, failureSvc)
	})
	mux.HandleFunc(task.TypeTranscodeArtifact, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseTranscodeArtifactPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.TranscodeArtifactHandler(ctx, p, transcodeSvc, failureSvc)
	})
	mux.HandleFunc(task.TypeExtractMetadata, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseExtractMetadataPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.ExtractMetadataHandler(ctx, p, metadataSvc)
	})
	mux.HandleFunc(task.TypeOptimiseArtifact, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseOptimiseArtifactPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.OptimiseArtifactHandler(ctx, p, optimiseSvc)
	})
	// analysis:handoff is produce-only here: the downstream analysis service
	// consumes that queue, this worker never registers a handler for it.
	mux.HandleFunc(task.TypePurgeOriginals, func(ctx context.Context, t *asynq.Task) error {
		return workerHandler.PurgeOriginalsHandler(ctx, purgeSvc)
	})
	mux.HandleFunc(task.TypeArchiveCold, func(ctx context.Context, t *asynq.Task) error {
		return workerHandler.ArchiveColdHandler(ctx, archiveSvc)
	})
	mux.HandleFunc(task.TypeReapTemp, func(ctx context.Context, t *asynq.Task) error {
		return workerHandler.ReapTempHandler(ctx, reapSvc)
	})
	mux.HandleFunc(task.TypeOptimiseBacklog, func(ctx context.Context, t *asynq.Task) error {
		return workerHandler.OptimiseBacklogHandler(ctx, backlogSvc)
	})

	scheduler := initScheduler(ctx, cfg)

	runWorker(ctx, mux, scheduler, cfg, events)
}

func initDb(cfg *config.Settings) *db.Database {
	ctx := context.Background()
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MySQLDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initStorage(cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func initBuckets(strg port.Storage, cfg *config.Settings) {
	// artifacts are link-shareable, backups never are
	if err := strg.InitBucket(cfg.Bucket, true); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize bucket %q: %v", cfg.Bucket, err)
		os.Exit(1)
	}
	if err := strg.InitBucket(cfg.BackupsBucket, false); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize bucket %q: %v", cfg.BackupsBucket, err)
		os.Exit(1)
	}
}

func initScheduler(ctx context.Context, cfg *config.Settings) *asynq.Scheduler {
	scheduler, err := task.NewScheduler(cfg.RedisAddr, cfg.RedisPassword, []task.SweepSchedule{
		{Cron: cfg.PurgeCron, TaskType: task.TypePurgeOriginals},
		{Cron: cfg.ArchiveCron, TaskType: task.TypeArchiveCold},
		{Cron: cfg.ReapCron, TaskType: task.TypeReapTemp},
		{Cron: cfg.BacklogCron, TaskType: task.TypeOptimiseBacklog},
	})
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to build sweep scheduler: %v", err)
		os.Exit(1)
	}
	return scheduler
}

// logEvents turns delivery outcomes into log lines. Failed events fire once a
// job's retry budget is spent; stalled events fire when a handler overruns its
// queue's expected runtime.
func logEvents(ctx context.Context, events <-chan task.Event) {
	for ev := range events {
		switch ev.Kind {
		case task.EventCompleted:
			logger.Debugf(ctx, "task %s succeeded on queue %q (attempt %d, %s)", ev.TaskType, ev.Queue, ev.Attempt, ev.Elapsed)
		case task.EventFailed:
			logger.Errorf(ctx, "❌  Task %s exhausted its retries on queue %q: %s", ev.TaskType, ev.Queue, ev.Err)
		case task.EventStalled:
			logger.Warnf(ctx, "⚠️  Task %s on queue %q still running after %s", ev.TaskType, ev.Queue, ev.Elapsed)
		}
	}
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, scheduler *asynq.Scheduler, cfg *config.Settings, events *task.Events) {
	srv := task.NewServer(cfg.RedisAddr, cfg.RedisPassword, cfg.WorkerConcurrency, events)

	// Run server and scheduler in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Errorf(context.Background(), "❌  Scheduler failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// Give Asynq up to 30 sec to finish tasks
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Shutdown()
	srv.Shutdown()       // stop accepting new tasks, finish in-flight
	<-shutdownCtx.Done() // either timeout or done

	logger.Info(ctx, "✅  Worker gracefully stopped")
}
