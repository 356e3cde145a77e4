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

// ExtractMetadataHandler handles the metadata-extraction sub-job. Probe
// failures never reach here (the use case records them on the artifact), so
// any error left is infrastructure and worth retrying — except bad input,
// which never improves.
func ExtractMetadataHandler(ctx context.Context, p task.ExtractMetadataPayload, svc artifact.MetadataExtractor) error {
	id, err := uuid.Parse(p.ArtifactID)
	if err != nil {
		log.Printf("❌  Invalid artifact ID %q: %v", p.ArtifactID, err)
		return fmt.Errorf("invalid artifact ID %q: %v: %w", p.ArtifactID, err, asynq.SkipRetry)
	}

	if err := svc.ExtractMetadata(ctx, artifact.ExtractMetadataInput{ID: id}); err != nil {
		log.Printf("❌  Failed to extract metadata for artifact #%s: %v", id, err)
		if errors.Is(err, artifact.ErrValidation) || errors.Is(err, artifact.ErrArtifactNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Printf("✅  Successfully extracted metadata for artifact #%s", id)
	return nil
}
