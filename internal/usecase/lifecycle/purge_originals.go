package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// OriginalsPurger removes aged processed videos whose derived audio is the
// surviving representation.
type OriginalsPurger interface {
	PurgeOriginals(ctx context.Context) (SweepReport, error)
}

type originalsPurgerSrv struct {
	repo   port.ArtifactRepository
	strg   port.Storage
	bucket string
	maxAge time.Duration
}

// NewOriginalsPurger constructs an OriginalsPurger implementation.
func NewOriginalsPurger(repo port.ArtifactRepository, strg port.Storage, bucket string, maxAge time.Duration) OriginalsPurger {
	return &originalsPurgerSrv{repo: repo, strg: strg, bucket: bucket, maxAge: maxAge}
}

// PurgeOriginals soft-deletes processed videos older than the configured
// horizon: the staged local file goes first, then the stored object, then the
// registry record flips to `deleted` with its pointers cleared. Clearing the
// local path before touching remote state means a crash mid-item can never
// leave the record pointing at a file that is already gone.
func (s *originalsPurgerSrv) PurgeOriginals(ctx context.Context) (SweepReport, error) {
	cutoff := time.Now().Add(-s.maxAge)
	artifacts, err := s.repo.ListProcessedVideosBefore(ctx, cutoff)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed listing purgeable videos: %w", err)
	}
	if len(artifacts) == 0 {
		logger.Info(ctx, "no aged video originals to purge")
		return SweepReport{}, nil
	}

	var report SweepReport
	for i := range artifacts {
		a := &artifacts[i]
		if err := s.purgeOne(ctx, a); err != nil {
			logger.Warnf(ctx, "failed purging artifact #%s: %v", a.ID, err)
			report.addError(a.ID.String(), err)
			continue
		}
		logger.Infof(ctx, "purged aged video original #%s", a.ID)
		report.Processed++
	}
	return report, nil
}

func (s *originalsPurgerSrv) purgeOne(ctx context.Context, a *model.Artifact) error {
	if a.LocalPath != nil {
		staged := *a.LocalPath
		a.LocalPath = nil
		if err := s.repo.Update(ctx, a); err != nil {
			return fmt.Errorf("failed clearing local path: %w", err)
		}
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			logger.Warnf(ctx, "failed removing staged file %q: %v", staged, err)
		}
	}

	if a.ObjectKey != nil {
		if err := s.strg.RemoveFile(ctx, s.bucket, *a.ObjectKey); err != nil && !errors.Is(err, port.ErrObjectNotFound) {
			return fmt.Errorf("failed removing object %q: %w", *a.ObjectKey, err)
		}
	}

	a.ObjectKey = nil
	a.RemoteURL = nil
	if err := s.repo.Update(ctx, a); err != nil {
		return fmt.Errorf("failed clearing storage pointers: %w", err)
	}
	if err := s.repo.Transition(ctx, a.ID, model.StatusDeleted, nil); err != nil {
		return fmt.Errorf("failed transitioning to deleted: %w", err)
	}
	return nil
}
