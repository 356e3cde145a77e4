package artifact

import (
	"context"
	"fmt"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// Lister pages through one owner's artifacts.
type Lister interface {
	ListArtifacts(ctx context.Context, in ListArtifactsInput) ([]model.Artifact, error)
}

type artifactListerSrv struct {
	repo port.ArtifactRepository
}

// NewArtifactLister constructs a Lister implementation.
func NewArtifactLister(repo port.ArtifactRepository) Lister {
	return &artifactListerSrv{repo: repo}
}

// ListArtifactsInput represents the filters for an owner-scoped listing.
type ListArtifactsInput struct {
	OwnerID uuid.UUID
	Kind    *model.ArtifactKind
	Status  *model.ArtifactStatus
	Limit   int
	Offset  int
}

// ListArtifacts returns the owner's artifacts, newest first.
func (s *artifactListerSrv) ListArtifacts(ctx context.Context, in ListArtifactsInput) ([]model.Artifact, error) {
	if in.OwnerID.IsZero() {
		return nil, fmt.Errorf("%w: missing owner id", ErrValidation)
	}
	if in.Kind != nil {
		switch *in.Kind {
		case model.KindVideo, model.KindAudio, model.KindImage:
		default:
			return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, *in.Kind)
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case model.StatusUploaded, model.StatusProcessing, model.StatusProcessed, model.StatusFailed, model.StatusDeleted:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
	}

	return s.repo.ListByOwner(ctx, in.OwnerID, port.ArtifactFilter{
		Kind:   in.Kind,
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
}
