package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// MetadataExtractor probes stream facts out of a stored audio artifact.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, in ExtractMetadataInput) error
}

type metadataExtractorSrv struct {
	repo       port.ArtifactRepository
	strg       port.Storage
	prober     port.MediaProber
	cache      port.Cache
	bucket     string
	stagingDir string
}

// NewMetadataExtractor constructs a MetadataExtractor implementation.
func NewMetadataExtractor(repo port.ArtifactRepository, strg port.Storage, prober port.MediaProber, cache port.Cache, bucket, stagingDir string) MetadataExtractor {
	return &metadataExtractorSrv{repo: repo, strg: strg, prober: prober, cache: cache, bucket: bucket, stagingDir: stagingDir}
}

// ExtractMetadataInput represents the payload of a metadata-extraction
// sub-job.
type ExtractMetadataInput struct {
	ID uuid.UUID
}

// ExtractMetadata downloads the stored audio, probes duration/bitrate/codec
// and merges the result into the artifact's metadata. Metadata completeness
// is best-effort: a probe failure is recorded on the artifact instead of
// failing the job, so the parent's processed status is never at risk here.
func (s *metadataExtractorSrv) ExtractMetadata(ctx context.Context, in ExtractMetadataInput) error {
	a, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, in.ID)
		}
		return err
	}
	if a.ObjectKey == nil {
		return fmt.Errorf("%w: artifact %q has no stored object to probe", ErrValidation, in.ID)
	}

	localPath, err := s.downloadForProbe(ctx, a)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove probe temp file %q: %v", localPath, err)
		}
	}()

	result, probeErr := s.prober.Probe(ctx, localPath)
	if probeErr != nil {
		patch := model.Metadata{ProbeError: probeErr.Error()}
		if err := s.repo.MergeMetadata(ctx, a.ID, patch); err != nil {
			return fmt.Errorf("failed recording probe error for artifact %q: %w", a.ID, err)
		}
		log.Printf("probe failed for artifact %q: %v", a.ID, probeErr)
		return nil
	}

	patch := model.Metadata{
		DurationSeconds: result.DurationSeconds,
		BitrateKbps:     result.BitrateKbps,
		Codec:           result.Codec,
		Format:          result.Format,
		Width:           result.Width,
		Height:          result.Height,
	}
	if err := s.repo.MergeMetadata(ctx, a.ID, patch); err != nil {
		return fmt.Errorf("failed merging metadata for artifact %q: %w", a.ID, err)
	}

	if err := s.cache.DeleteArtifactDetails(ctx, a.ID); err != nil {
		log.Printf("failed deleting cache for artifact %q: %v", a.ID, err)
	}

	return nil
}

func (s *metadataExtractorSrv) downloadForProbe(ctx context.Context, a *model.Artifact) (string, error) {
	reader, err := s.strg.GetFile(ctx, s.bucket, *a.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("failed downloading %q from bucket %q: %w", *a.ObjectKey, s.bucket, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close reader for %q: %v", *a.ObjectKey, err)
		}
	}()

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.stagingDir, "probe-"+a.StorageFilename)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed writing probe temp file %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
