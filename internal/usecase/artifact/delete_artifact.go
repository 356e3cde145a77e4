package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// Deleter removes an artifact and its stored object.
type Deleter interface {
	DeleteArtifact(ctx context.Context, in DeleteArtifactInput) error
}

type deleteArtifactSrv struct {
	repo   port.ArtifactRepository
	strg   port.Storage
	cache  port.Cache
	bucket string
}

// NewArtifactDeleter constructs a Deleter implementation.
func NewArtifactDeleter(repo port.ArtifactRepository, strg port.Storage, cache port.Cache, bucket string) Deleter {
	return &deleteArtifactSrv{repo: repo, strg: strg, cache: cache, bucket: bucket}
}

// DeleteArtifactInput represents the input for deleting an artifact.
type DeleteArtifactInput struct {
	ID uuid.UUID
}

// DeleteArtifact removes the stored object (when one exists), any staged
// local file, the registry record and the cached response. Deleting an
// artifact that is already gone is a no-op.
func (s *deleteArtifactSrv) DeleteArtifact(ctx context.Context, in DeleteArtifactInput) error {
	a, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if a.ObjectKey != nil {
		if err := s.strg.RemoveFile(ctx, s.bucket, *a.ObjectKey); err != nil && !errors.Is(err, port.ErrObjectNotFound) {
			return fmt.Errorf("failed removing object %q from bucket %q: %w", *a.ObjectKey, s.bucket, err)
		}
	}
	if a.LocalPath != nil {
		if err := os.Remove(*a.LocalPath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove staged file %q: %v", *a.LocalPath, err)
		}
	}

	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return fmt.Errorf("failed deleting artifact %q: %w", a.ID, err)
	}

	if err := s.cache.DeleteArtifactDetails(ctx, a.ID); err != nil {
		log.Printf("failed deleting cache for artifact %q: %v", a.ID, err)
	}

	return nil
}
