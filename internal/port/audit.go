package port

import "context"

// AuditLogger records durability-affecting operations for operators.
// It is write-only from this core's perspective.
type AuditLogger interface {
	BackupCreated(ctx context.Context, key string, sizeBytes int64)
	BackupRestored(ctx context.Context, key, safetyKey string)
	BackupsCleaned(ctx context.Context, deleted, retentionDays int)
}
