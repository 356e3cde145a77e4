package audit

import (
	"context"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// Logger emits structured audit events through the service logger. The
// audit sink is write-only from this core's perspective.
type Logger struct{}

// compile-time check: *Logger must satisfy port.AuditLogger
var _ port.AuditLogger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) BackupCreated(ctx context.Context, key string, sizeBytes int64) {
	logger.Info(ctx, "audit event",
		"event", "backup_created",
		"backup_key", key,
		"size_bytes", sizeBytes,
	)
}

func (l *Logger) BackupRestored(ctx context.Context, key, safetyKey string) {
	logger.Info(ctx, "audit event",
		"event", "backup_restored",
		"backup_key", key,
		"safety_backup_key", safetyKey,
	)
}

func (l *Logger) BackupsCleaned(ctx context.Context, deleted, retentionDays int) {
	logger.Info(ctx, "audit event",
		"event", "backups_cleaned",
		"deleted", deleted,
		"retention_days", retentionDays,
	)
}
