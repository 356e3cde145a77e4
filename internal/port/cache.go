package port

import (
	"context"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// Cache stores serialized artifact status responses.
type Cache interface {
	GetArtifactDetails(ctx context.Context, id uuid.UUID) ([]byte, error)
	SetArtifactDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time)
	DeleteArtifactDetails(ctx context.Context, id uuid.UUID) error
}
