package main

import (
	"context"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/lessonloop/ingest-ms-go/internal/config"
	"github.com/lessonloop/ingest-ms-go/internal/db"
	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/migration"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	database, err := initDb(cfg)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func(database *db.Database) {
		err := database.Close()
		if err != nil {
			return
		}
	}(database)

	if err := migration.MigrateUp(database.DB); err != nil {
		logger.Errorf(ctx, "❌  Migration up failed: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "✅  Migrations applied successfully")
}

func initDb(cfg *config.Settings) (*db.Database, error) {
	// golang-migrate needs multiStatements to run multi-query files
	dsn := cfg.MySQLDSN
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	database, err := db.New(dsn+sep+"multiStatements=true", cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		return nil, err
	}

	return database, nil
}
