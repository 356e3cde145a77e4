package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

const backupTimeLayout = "20060102-150405"

// Creator snapshots the primary datastore into the backups bucket.
type Creator interface {
	CreateBackup(ctx context.Context) (string, error)
}

type backupCreatorSrv struct {
	dumper port.Dumper
	strg   port.Storage
	audit  port.AuditLogger
	lock   Locker
	bucket string
	dbName string
}

// NewBackupCreator constructs a Creator implementation.
func NewBackupCreator(dumper port.Dumper, strg port.Storage, audit port.AuditLogger, lock Locker, bucket, dbName string) Creator {
	return &backupCreatorSrv{dumper: dumper, strg: strg, audit: audit, lock: lock, bucket: bucket, dbName: dbName}
}

// CreateBackup dumps the datastore, gzips the stream on the fly and uploads
// it under a timestamped key tagged with the database name. Runs are
// serialized against restores through the shared lock.
func (s *backupCreatorSrv) CreateBackup(ctx context.Context) (string, error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrBackupInProgress
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			logger.Warnf(ctx, "failed releasing backup lock: %v", err)
		}
	}()

	key := fmt.Sprintf("%s-%s.sql.gz", s.dbName, time.Now().UTC().Format(backupTimeLayout))
	size, err := dumpToStorage(ctx, s.dumper, s.strg, s.bucket, key, s.dbName)
	if err != nil {
		return "", err
	}

	logger.Infof(ctx, "created backup %q (%d bytes)", key, size)
	s.audit.BackupCreated(ctx, key, size)
	return key, nil
}

// dumpToStorage streams dump -> gzip -> blob store without buffering the
// whole archive in memory. Returns the compressed byte count.
func dumpToStorage(ctx context.Context, dumper port.Dumper, strg port.Storage, bucket, key, dbName string) (int64, error) {
	pr, pw := io.Pipe()
	go func() {
		gz := gzip.NewWriter(pw)
		if err := dumper.Dump(ctx, gz); err != nil {
			_ = pw.CloseWithError(fmt.Errorf("dump failed: %w", err))
			return
		}
		if err := gz.Close(); err != nil {
			_ = pw.CloseWithError(fmt.Errorf("failed finishing gzip stream: %w", err))
			return
		}
		_ = pw.Close()
	}()

	counter := &countingReader{r: pr}
	if err := strg.SaveFile(ctx, bucket, key, counter, -1, map[string]string{
		"Content-Type": "application/gzip",
		"Database":     dbName,
	}); err != nil {
		_ = pr.CloseWithError(err)
		return 0, fmt.Errorf("failed uploading backup %q to bucket %q: %w", key, bucket, err)
	}
	return counter.n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
