package backup

import (
	"context"
	"fmt"

	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// Lister enumerates the stored backups.
type Lister interface {
	ListBackups(ctx context.Context) ([]BackupInfo, error)
}

type backupListerSrv struct {
	strg   port.Storage
	bucket string
}

// NewBackupLister constructs a Lister implementation.
func NewBackupLister(strg port.Storage, bucket string) Lister {
	return &backupListerSrv{strg: strg, bucket: bucket}
}

// ListBackups returns every archive in the backups bucket, newest first.
func (s *backupListerSrv) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	files, err := s.strg.ListFiles(ctx, s.bucket, "")
	if err != nil {
		return nil, fmt.Errorf("failed listing bucket %q: %w", s.bucket, err)
	}

	backups := make([]BackupInfo, 0, len(files))
	for _, f := range files {
		backups = append(backups, BackupInfo{
			Key:          f.Key,
			SizeBytes:    f.SizeBytes,
			LastModified: f.LastModified,
		})
	}
	return backups, nil
}
