package main

import (
	"context"
	"log"
	"os"

	"github.com/lessonloop/ingest-ms-go/internal/config"
	"github.com/lessonloop/ingest-ms-go/internal/db"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	repo "github.com/lessonloop/ingest-ms-go/internal/repository/mysql"
	"github.com/lessonloop/ingest-ms-go/internal/storage"
	"github.com/lessonloop/ingest-ms-go/internal/task"
	lifecycleSvc "github.com/lessonloop/ingest-ms-go/internal/usecase/lifecycle"
)

// sweep runs a single lifecycle sweep once and exits. The worker normally
// schedules these on cron; this command exists for manual runs and catch-ups.
func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s purge-originals|archive-cold|reap-temp|optimise-backlog", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌  Configuration error: %v", err)
	}

	database := initDb(cfg)
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("DB close error: %v", err)
		}
	}()

	artifactRepo := repo.NewArtifactRepository(database.DB)
	ctx := context.Background()

	var report lifecycleSvc.SweepReport
	switch os.Args[1] {
	case "purge-originals":
		strg := initStorage(cfg)
		report, err = lifecycleSvc.NewOriginalsPurger(artifactRepo, strg, cfg.Bucket, cfg.PurgeOriginalsAfter).PurgeOriginals(ctx)
	case "archive-cold":
		strg := initStorage(cfg)
		report, err = lifecycleSvc.NewColdArchiver(artifactRepo, strg, cfg.Bucket, cfg.ArchiveColdAfter).ArchiveCold(ctx)
	case "reap-temp":
		report, err = lifecycleSvc.NewTempReaper(cfg.StagingDir, cfg.TempMaxAge).ReapTemp(ctx)
	case "optimise-backlog":
		report, err = lifecycleSvc.NewBacklogOptimiser(artifactRepo, initDispatcher(cfg), cfg.OptimiseAfter).OptimiseBacklog(ctx)
	default:
		log.Fatalf("❌  Unknown sweep %q", os.Args[1])
	}

	if err != nil {
		log.Fatalf("❌  Sweep %q failed: %v", os.Args[1], err)
	}
	log.Printf("✅  Sweep %q completed: %d processed, %d errors", os.Args[1], report.Processed, len(report.Errors))
	for _, e := range report.Errors {
		log.Printf("❌  %s: %v", e.Item, e.Err)
	}
}

func initDb(cfg *config.Settings) *db.Database {
	log.Println("initialising database...")
	database, err := db.NewFromConfig(db.Config{
		DSN:             cfg.MySQLDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("❌  Failed to connect to db: %v", err)
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
		log.Fatalf("❌  Failed to initialize MinIO client: %v", err)
	}
	return strg
}

func initDispatcher(cfg *config.Settings) port.TaskDispatcher {
	if cfg.RedisAddr == "" {
		log.Fatalf("❌  Redis not configured: this command requires a running Redis instance")
	}
	return task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
}
