package backup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// Restorer replaces the primary datastore's contents from a stored backup.
type Restorer interface {
	RestoreBackup(ctx context.Context, key string) (string, error)
}

type backupRestorerSrv struct {
	dumper    port.Dumper
	strg      port.Storage
	validator Validator
	audit     port.AuditLogger
	lock      Locker
	bucket    string
	dbName    string
}

// NewBackupRestorer constructs a Restorer implementation.
func NewBackupRestorer(dumper port.Dumper, strg port.Storage, validator Validator, audit port.AuditLogger, lock Locker, bucket, dbName string) Restorer {
	return &backupRestorerSrv{dumper: dumper, strg: strg, validator: validator, audit: audit, lock: lock, bucket: bucket, dbName: dbName}
}

// RestoreBackup validates the archive, takes an unconditional safety backup
// of the current state, then performs the destructive restore. The safety
// backup key is returned so an operator can roll back a bad restore. Runs
// are serialized against other backups and restores through the shared lock.
func (s *backupRestorerSrv) RestoreBackup(ctx context.Context, key string) (string, error) {
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

	valid, err := s.validator.ValidateBackup(ctx, key)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", fmt.Errorf("%w: %q", ErrBackupCorrupt, key)
	}

	safetyKey := fmt.Sprintf("safety-%s-%s.sql.gz", s.dbName, time.Now().UTC().Format(backupTimeLayout))
	if _, err := dumpToStorage(ctx, s.dumper, s.strg, s.bucket, safetyKey, s.dbName); err != nil {
		return "", fmt.Errorf("failed taking safety backup before restore: %w", err)
	}
	logger.Infof(ctx, "safety backup %q taken, restoring %q", safetyKey, key)

	if err := s.applyRestore(ctx, key); err != nil {
		return "", err
	}

	logger.Infof(ctx, "restored backup %q", key)
	s.audit.BackupRestored(ctx, key, safetyKey)
	return safetyKey, nil
}

func (s *backupRestorerSrv) applyRestore(ctx context.Context, key string) error {
	reader, err := s.strg.GetFile(ctx, s.bucket, key)
	if err != nil {
		return fmt.Errorf("failed downloading backup %q: %w", key, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close reader for %q: %v", key, err)
		}
	}()

	gz, err := gzip.NewReader(reader)
	if err != nil {
		return fmt.Errorf("%w: %q: %s", ErrBackupCorrupt, key, err)
	}
	defer func() {
		if err := gz.Close(); err != nil {
			log.Printf("failed to close gzip reader for %q: %v", key, err)
		}
	}()

	if err := s.dumper.Restore(ctx, gz); err != nil {
		return fmt.Errorf("restore of %q failed: %w", key, err)
	}
	return nil
}
