package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// FailureRecorder marks an artifact as terminally failed once the queue has
// exhausted its retry budget. Retry accounting stays with the queue; this
// only records the outcome.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, id uuid.UUID, reason string) error
}

type failureRecorderSrv struct {
	repo  port.ArtifactRepository
	cache port.Cache
}

// NewFailureRecorder constructs a FailureRecorder implementation.
func NewFailureRecorder(repo port.ArtifactRepository, cache port.Cache) FailureRecorder {
	return &failureRecorderSrv{repo: repo, cache: cache}
}

// RecordFailure transitions the artifact to `failed` with the operator-facing
// message attached. An artifact that has already reached a later state keeps
// it: a stalled delivery whose work actually completed must not be clobbered.
func (s *failureRecorderSrv) RecordFailure(ctx context.Context, id uuid.UUID, reason string) error {
	if err := s.repo.Transition(ctx, id, model.StatusFailed, &reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, id)
		}
		if errors.Is(err, model.ErrInvalidTransition) {
			log.Printf("skipping failure record for artifact %q: %v", id, err)
			return nil
		}
		return fmt.Errorf("failed transitioning artifact %q to failed: %w", id, err)
	}

	if err := s.cache.DeleteArtifactDetails(ctx, id); err != nil {
		log.Printf("failed deleting cache for artifact %q: %v", id, err)
	}

	return nil
}
