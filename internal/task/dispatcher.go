package task

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// Dispatcher is the one producer handle for every named queue. It is built
// once at process start and passed to whatever needs to enqueue work.
type Dispatcher struct {
	client *asynq.Client
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

func NewDispatcher(addr, password string) *Dispatcher {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})
	return &Dispatcher{client: c}
}

func (d *Dispatcher) EnqueueTranscodeArtifact(ctx context.Context, id, ownerID uuid.UUID) error {
	t, err := NewTranscodeArtifactTask(id.String(), ownerID.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) EnqueueUploadObject(ctx context.Context, id, ownerID uuid.UUID) error {
	t, err := NewUploadObjectTask(id.String(), ownerID.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) EnqueueExtractMetadata(ctx context.Context, id uuid.UUID) error {
	t, err := NewExtractMetadataTask(id.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) EnqueueAnalyseArtifact(ctx context.Context, audioID, parentID, ownerID uuid.UUID) error {
	t, err := NewAnalyseArtifactTask(audioID.String(), parentID.String(), ownerID.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) EnqueueOptimiseArtifact(ctx context.Context, id uuid.UUID) error {
	t, err := NewOptimiseArtifactTask(id.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) enqueue(ctx context.Context, t *asynq.Task) error {
	if _, err := d.client.EnqueueContext(ctx, t, enqueueOptions(t.Type())...); err != nil {
		return err
	}
	return nil
}
