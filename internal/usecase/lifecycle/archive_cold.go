package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// ColdArchiver demotes cold audio artifacts to the archive storage class.
type ColdArchiver interface {
	ArchiveCold(ctx context.Context) (SweepReport, error)
}

type coldArchiverSrv struct {
	repo   port.ArtifactRepository
	strg   port.Storage
	bucket string
	maxAge time.Duration
}

// NewColdArchiver constructs a ColdArchiver implementation.
func NewColdArchiver(repo port.ArtifactRepository, strg port.Storage, bucket string, maxAge time.Duration) ColdArchiver {
	return &coldArchiverSrv{repo: repo, strg: strg, bucket: bucket, maxAge: maxAge}
}

// ArchiveCold moves processed audio older than the configured horizon into
// the coldest storage class. The mutation is a copy-in-place on the same
// object key, so presigned links handed out earlier keep resolving.
func (s *coldArchiverSrv) ArchiveCold(ctx context.Context) (SweepReport, error) {
	cutoff := time.Now().Add(-s.maxAge)
	artifacts, err := s.repo.ListArchivableAudioBefore(ctx, cutoff)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed listing archivable audio: %w", err)
	}
	if len(artifacts) == 0 {
		logger.Info(ctx, "no cold audio artifacts to archive")
		return SweepReport{}, nil
	}

	var report SweepReport
	for i := range artifacts {
		a := &artifacts[i]
		if a.ObjectKey == nil {
			report.addError(a.ID.String(), fmt.Errorf("no object key"))
			continue
		}
		if err := s.strg.SetStorageClass(ctx, s.bucket, *a.ObjectKey, model.StorageClassArchive); err != nil {
			logger.Warnf(ctx, "failed archiving artifact #%s: %v", a.ID, err)
			report.addError(a.ID.String(), err)
			continue
		}
		a.StorageClass = model.StorageClassArchive
		if err := s.repo.Update(ctx, a); err != nil {
			logger.Warnf(ctx, "failed recording storage class for artifact #%s: %v", a.ID, err)
			report.addError(a.ID.String(), err)
			continue
		}
		logger.Infof(ctx, "archived cold audio artifact #%s", a.ID)
		report.Processed++
	}
	return report, nil
}
