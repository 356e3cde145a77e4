package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/lessonloop/ingest-ms-go/internal/task"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// UploadObjectHandler handles an object-upload task.
func UploadObjectHandler(ctx context.Context, p task.UploadObjectPayload, svc artifact.ObjectUploader, rec artifact.FailureRecorder) error {
	id, err := uuid.Parse(p.ArtifactID)
	if err != nil {
		log.Printf("❌  Invalid artifact ID %q: %v", p.ArtifactID, err)
		return fmt.Errorf("invalid artifact ID %q: %v: %w", p.ArtifactID, err, asynq.SkipRetry)
	}

	if err := svc.UploadObject(ctx, artifact.UploadObjectInput{ID: id}); err != nil {
		log.Printf("❌  Failed to upload artifact #%s: %v", id, err)
		return closeOut(ctx, rec, id, err)
	}

	log.Printf("✅  Successfully uploaded artifact #%s", id)
	return nil
}
