package api_context

import (
	"context"

	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type ctxKey string

const (
	ArtifactIDKey ctxKey = "artifactID"
	OwnerIDKey    ctxKey = "ownerID"
)

func ArtifactIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ArtifactIDKey).(uuid.UUID)
	return id, ok
}

func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(OwnerIDKey).(uuid.UUID)
	return id, ok
}
