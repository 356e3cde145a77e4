package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// gzip magic number
var gzipMagic = [2]byte{0x1f, 0x8b}

// Validator sanity-checks a stored backup archive.
type Validator interface {
	ValidateBackup(ctx context.Context, key string) (bool, error)
}

type backupValidatorSrv struct {
	strg   port.Storage
	bucket string
}

// NewBackupValidator constructs a Validator implementation.
func NewBackupValidator(strg port.Storage, bucket string) Validator {
	return &backupValidatorSrv{strg: strg, bucket: bucket}
}

// ValidateBackup checks that the archive is non-empty and starts with the
// gzip magic number. It deliberately does not decompress the whole archive:
// this is a cheap pre-restore gate, not full integrity verification.
func (s *backupValidatorSrv) ValidateBackup(ctx context.Context, key string) (bool, error) {
	info, err := s.strg.StatFile(ctx, s.bucket, key)
	if err != nil {
		if errors.Is(err, port.ErrObjectNotFound) {
			return false, fmt.Errorf("%w: %q", ErrBackupNotFound, key)
		}
		return false, fmt.Errorf("failed to stat backup %q: %w", key, err)
	}
	if info.SizeBytes == 0 {
		return false, nil
	}

	reader, err := s.strg.GetFile(ctx, s.bucket, key)
	if err != nil {
		return false, fmt.Errorf("failed opening backup %q: %w", key, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close reader for %q: %v", key, err)
		}
	}()

	var header [2]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return false, nil
	}
	return header == gzipMagic, nil
}
