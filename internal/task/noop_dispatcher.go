package task

import (
	"context"

	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type NoopDispatcher struct{}

var _ port.TaskDispatcher = (*NoopDispatcher)(nil)

func NewNoopDispatcher() *NoopDispatcher { return &NoopDispatcher{} }

func (d *NoopDispatcher) EnqueueTranscodeArtifact(ctx context.Context, id, ownerID uuid.UUID) error {
	return nil
}

func (d *NoopDispatcher) EnqueueUploadObject(ctx context.Context, id, ownerID uuid.UUID) error {
	return nil
}

func (d *NoopDispatcher) EnqueueExtractMetadata(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (d *NoopDispatcher) EnqueueAnalyseArtifact(ctx context.Context, audioID, parentID, ownerID uuid.UUID) error {
	return nil
}

func (d *NoopDispatcher) EnqueueOptimiseArtifact(ctx context.Context, id uuid.UUID) error {
	return nil
}
