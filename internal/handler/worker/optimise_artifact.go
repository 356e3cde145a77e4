package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/lessonloop/ingest-ms-go/internal/task"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// OptimiseArtifactHandler handles an optimise task. A failed optimisation
// leaves the artifact processed and authoritative, so there is no terminal
// failure to record here.
func OptimiseArtifactHandler(ctx context.Context, p task.OptimiseArtifactPayload, svc artifact.Optimiser) error {
	id, err := uuid.Parse(p.ArtifactID)
	if err != nil {
		log.Printf("❌  Invalid artifact ID %q: %v", p.ArtifactID, err)
		return fmt.Errorf("invalid artifact ID %q: %v: %w", p.ArtifactID, err, asynq.SkipRetry)
	}

	report, err := svc.OptimiseArtifact(ctx, artifact.OptimiseArtifactInput{ID: id})
	if err != nil {
		log.Printf("❌  Failed to optimise artifact #%s: %v", id, err)
		if errors.Is(err, artifact.ErrValidation) || errors.Is(err, artifact.ErrArtifactNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Printf("✅  Optimised artifact #%s: %d -> %d bytes (ratio %.2f)", id, report.OriginalSizeBytes, report.OptimisedSizeBytes, report.CompressionRatio)
	return nil
}
