package port

import (
	"context"

	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// TaskDispatcher enqueues asynchronous jobs onto the named queues.
type TaskDispatcher interface {
	EnqueueTranscodeArtifact(ctx context.Context, id, ownerID uuid.UUID) error
	EnqueueUploadObject(ctx context.Context, id, ownerID uuid.UUID) error
	EnqueueExtractMetadata(ctx context.Context, id uuid.UUID) error
	EnqueueAnalyseArtifact(ctx context.Context, audioID, parentID, ownerID uuid.UUID) error
	EnqueueOptimiseArtifact(ctx context.Context, id uuid.UUID) error
}
