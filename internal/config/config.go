package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	MySQLDSN        string
	DatabaseName    string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	Bucket         string
	BackupsBucket  string

	StagingDir string

	FfmpegBin    string
	FfprobeBin   string
	MysqldumpBin string
	MysqlBin     string

	PurgeOriginalsAfter time.Duration
	ArchiveColdAfter    time.Duration
	TempMaxAge          time.Duration
	OptimiseAfter       time.Duration

	PurgeCron         string
	ArchiveCron       string
	ReapCron          string
	BacklogCron       string
	WorkerConcurrency int

	BackupRetentionDays int
	BackupKeepMin       int
	BackupLockPath      string
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range []string{
		"MYSQL_DSN",
		"MINIO_ENDPOINT",
		"MINIO_ACCESS_KEY",
		"MINIO_SECRET_KEY",
	} {
		if !viper.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	viper.SetDefault("MYSQL_MAX_OPEN_CONNS", 25)
	viper.SetDefault("MYSQL_MAX_IDLE_CONNS", 5)
	viper.SetDefault("MYSQL_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("ARTIFACTS_BUCKET", "artifacts")
	viper.SetDefault("BACKUPS_BUCKET", "backups")
	viper.SetDefault("STAGING_DIR", "/var/lib/ingest-ms/staging")
	viper.SetDefault("FFMPEG_BIN", "ffmpeg")
	viper.SetDefault("FFPROBE_BIN", "ffprobe")
	viper.SetDefault("MYSQLDUMP_BIN", "mysqldump")
	viper.SetDefault("MYSQL_BIN", "mysql")
	viper.SetDefault("PURGE_ORIGINALS_AFTER_DAYS", 7)
	viper.SetDefault("ARCHIVE_COLD_AFTER_DAYS", 30)
	viper.SetDefault("TEMP_MAX_AGE_HOURS", 24)
	viper.SetDefault("OPTIMISE_AFTER_HOURS", 1)
	viper.SetDefault("PURGE_CRON", "0 3 * * *")
	viper.SetDefault("ARCHIVE_CRON", "30 3 * * *")
	viper.SetDefault("REAP_CRON", "0 * * * *")
	viper.SetDefault("BACKLOG_CRON", "15 * * * *")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("BACKUP_RETENTION_DAYS", 30)
	viper.SetDefault("BACKUP_KEEP_MIN", 1)
	viper.SetDefault("BACKUP_LOCK_PATH", "/var/lock/ingest-ms-backup.lock")

	dsn := viper.GetString("MYSQL_DSN")
	dbName, err := databaseNameFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	return &Settings{
		MySQLDSN:        dsn,
		DatabaseName:    dbName,
		MaxOpenConns:    viper.GetInt("MYSQL_MAX_OPEN_CONNS"),
		MaxIdleConns:    viper.GetInt("MYSQL_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(viper.GetInt("MYSQL_CONN_MAX_LIFETIME")) * time.Second,
		ServerPort:      viper.GetInt("SERVER_PORT"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		Bucket:         viper.GetString("ARTIFACTS_BUCKET"),
		BackupsBucket:  viper.GetString("BACKUPS_BUCKET"),

		StagingDir: viper.GetString("STAGING_DIR"),

		FfmpegBin:    viper.GetString("FFMPEG_BIN"),
		FfprobeBin:   viper.GetString("FFPROBE_BIN"),
		MysqldumpBin: viper.GetString("MYSQLDUMP_BIN"),
		MysqlBin:     viper.GetString("MYSQL_BIN"),

		PurgeOriginalsAfter: time.Duration(viper.GetInt("PURGE_ORIGINALS_AFTER_DAYS")) * 24 * time.Hour,
		ArchiveColdAfter:    time.Duration(viper.GetInt("ARCHIVE_COLD_AFTER_DAYS")) * 24 * time.Hour,
		TempMaxAge:          time.Duration(viper.GetInt("TEMP_MAX_AGE_HOURS")) * time.Hour,
		OptimiseAfter:       time.Duration(viper.GetInt("OPTIMISE_AFTER_HOURS")) * time.Hour,

		PurgeCron:         viper.GetString("PURGE_CRON"),
		ArchiveCron:       viper.GetString("ARCHIVE_CRON"),
		ReapCron:          viper.GetString("REAP_CRON"),
		BacklogCron:       viper.GetString("BACKLOG_CRON"),
		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),

		BackupRetentionDays: viper.GetInt("BACKUP_RETENTION_DAYS"),
		BackupKeepMin:       viper.GetInt("BACKUP_KEEP_MIN"),
		BackupLockPath:      viper.GetString("BACKUP_LOCK_PATH"),
	}, nil
}

func databaseNameFromDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("MYSQL_DSN is not a valid DSN: %w", err)
	}
	if parsed.DBName == "" {
		return "", fmt.Errorf("MYSQL_DSN must name a database")
	}
	return parsed.DBName, nil
}
