package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// Getter answers status queries for a single artifact.
type Getter interface {
	GetArtifact(ctx context.Context, in GetArtifactInput) (GetArtifactOutput, error)
}

type artifactGetterSrv struct {
	repo   port.ArtifactRepository
	strg   port.Storage
	cache  port.Cache
	bucket string
}

// NewArtifactGetter constructs a Getter implementation.
func NewArtifactGetter(repo port.ArtifactRepository, strg port.Storage, cache port.Cache, bucket string) Getter {
	return &artifactGetterSrv{repo: repo, strg: strg, cache: cache, bucket: bucket}
}

// GetArtifactInput represents the input for querying an artifact.
type GetArtifactInput struct {
	ID uuid.UUID
}

// GetArtifact returns the artifact's status, metadata and, once processed, a
// presigned download link. Responses are cached until the link expires.
func (s *artifactGetterSrv) GetArtifact(ctx context.Context, in GetArtifactInput) (GetArtifactOutput, error) {
	if cached, err := s.cache.GetArtifactDetails(ctx, in.ID); err == nil && cached != nil {
		var out GetArtifactOutput
		if err := json.Unmarshal(cached, &out); err == nil && time.Now().Before(out.ValidUntil) {
			return out, nil
		}
	}

	a, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetArtifactOutput{}, fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, in.ID)
		}
		return GetArtifactOutput{}, err
	}
	if a.Status == model.StatusDeleted {
		return GetArtifactOutput{}, fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, in.ID)
	}

	out := GetArtifactOutput{
		Status:         a.Status,
		StorageClass:   a.StorageClass,
		Optimised:      a.Optimised,
		RemoteURL:      a.RemoteURL,
		FailureMessage: a.FailureMessage,
		Metadata: MetadataOutput{
			Metadata:  a.Metadata,
			SizeBytes: a.SizeBytes,
			MimeType:  a.MimeType,
		},
	}

	if a.Status == model.StatusProcessed && a.ObjectKey != nil {
		url, err := s.strg.GeneratePresignedDownloadURL(ctx, s.bucket, *a.ObjectKey, DownloadURLTTL)
		if err != nil {
			return GetArtifactOutput{}, fmt.Errorf("failed generating download link for artifact %q: %w", a.ID, err)
		}
		out.URL = url
		out.ValidUntil = time.Now().Add(DownloadURLTTL)

		if data, err := json.Marshal(out); err == nil {
			s.cache.SetArtifactDetails(ctx, a.ID, data, out.ValidUntil)
		} else {
			log.Printf("failed marshalling cache entry for artifact %q: %v", a.ID, err)
		}
	}

	return out, nil
}
