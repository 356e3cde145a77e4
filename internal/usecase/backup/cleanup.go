package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// Cleaner applies the retention policy to stored backups.
type Cleaner interface {
	CleanupOldBackups(ctx context.Context, retentionDays int) (CleanupReport, error)
}

type backupCleanerSrv struct {
	strg    port.Storage
	audit   port.AuditLogger
	bucket  string
	keepMin int
}

// NewBackupCleaner constructs a Cleaner implementation. keepMin is the
// number of newest backups that survive regardless of age; it is floored
// at 1 so retention can never delete the last remaining backup.
func NewBackupCleaner(strg port.Storage, audit port.AuditLogger, bucket string, keepMin int) Cleaner {
	if keepMin < 1 {
		keepMin = 1
	}
	return &backupCleanerSrv{strg: strg, audit: audit, bucket: bucket, keepMin: keepMin}
}

// CleanupOldBackups deletes backups older than the retention cutoff and
// returns how many went. One failed deletion never aborts the sweep: errors
// accumulate per item and the rest keep going.
func (s *backupCleanerSrv) CleanupOldBackups(ctx context.Context, retentionDays int) (CleanupReport, error) {
	if retentionDays <= 0 {
		return CleanupReport{}, fmt.Errorf("retention must be positive, got %d days", retentionDays)
	}

	// newest first
	files, err := s.strg.ListFiles(ctx, s.bucket, "")
	if err != nil {
		return CleanupReport{}, fmt.Errorf("failed listing bucket %q: %w", s.bucket, err)
	}

	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	var report CleanupReport
	for i, f := range files {
		if i < s.keepMin {
			continue
		}
		if f.LastModified.After(cutoff) {
			continue
		}
		if err := s.strg.RemoveFile(ctx, s.bucket, f.Key); err != nil {
			logger.Warnf(ctx, "failed deleting backup %q: %v", f.Key, err)
			report.Errors = append(report.Errors, CleanupError{Key: f.Key, Err: err})
			continue
		}
		logger.Infof(ctx, "deleted aged backup %q", f.Key)
		report.Deleted++
	}

	s.audit.BackupsCleaned(ctx, report.Deleted, retentionDays)
	return report, nil
}
