package port

import (
	"context"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// ArtifactFilter narrows and pages owner-scoped listings.
type ArtifactFilter struct {
	Kind   *model.ArtifactKind
	Status *model.ArtifactStatus
	Limit  int
	Offset int
}

// ArtifactRepository defines persistence operations for the artifact registry.
type ArtifactRepository interface {
	Create(ctx context.Context, a *model.Artifact) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Artifact, error)
	// GetChildByParentID returns the derived artifact whose metadata links it
	// to the given parent, or sql.ErrNoRows.
	GetChildByParentID(ctx context.Context, parentID uuid.UUID) (*model.Artifact, error)
	// Update persists the mutable columns of a, except status and
	// failure_message: those only move through Transition so a stale
	// snapshot can never overwrite a concurrent status change.
	Update(ctx context.Context, a *model.Artifact) error
	// Transition atomically moves an artifact to newStatus, enforcing the
	// monotonic state machine. Re-asserting the current status is a no-op.
	Transition(ctx context.Context, id uuid.UUID, newStatus model.ArtifactStatus, failureMessage *string) error
	// MergeMetadata overlays the non-zero fields of patch onto the stored
	// metadata without clobbering unspecified ones.
	MergeMetadata(ctx context.Context, id uuid.UUID, patch model.Metadata) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, f ArtifactFilter) ([]model.Artifact, error)

	// sweep queries
	ListProcessedVideosBefore(ctx context.Context, before time.Time) ([]model.Artifact, error)
	ListArchivableAudioBefore(ctx context.Context, before time.Time) ([]model.Artifact, error)
	ListUnoptimisedAudioBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}
