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

// Optimiser re-encodes an audio artifact into a smaller mono representation.
type Optimiser interface {
	OptimiseArtifact(ctx context.Context, in OptimiseArtifactInput) (OptimiseReport, error)
}

type optimiserSrv struct {
	repo       port.ArtifactRepository
	strg       port.Storage
	extractor  port.AudioExtractor
	cache      port.Cache
	bucket     string
	stagingDir string
}

// NewOptimiser constructs an Optimiser implementation.
func NewOptimiser(repo port.ArtifactRepository, strg port.Storage, extractor port.AudioExtractor, cache port.Cache, bucket, stagingDir string) Optimiser {
	return &optimiserSrv{repo: repo, strg: strg, extractor: extractor, cache: cache, bucket: bucket, stagingDir: stagingDir}
}

// OptimiseArtifactInput represents the payload of an optimise job.
type OptimiseArtifactInput struct {
	ID uuid.UUID
}

// OptimiseArtifact re-encodes the stored audio with the low-bitrate mono
// policy and swaps it in under the same object key so external links keep
// working. The swap goes through a temp key first: a crash mid-write never
// corrupts the authoritative object.
func (s *optimiserSrv) OptimiseArtifact(ctx context.Context, in OptimiseArtifactInput) (OptimiseReport, error) {
	a, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OptimiseReport{}, fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, in.ID)
		}
		return OptimiseReport{}, err
	}
	if a.Kind != model.KindAudio {
		return OptimiseReport{}, fmt.Errorf("%w: artifact %q is %q, only audio is optimised", ErrValidation, a.ID, a.Kind)
	}
	if a.Status != model.StatusProcessed {
		return OptimiseReport{}, fmt.Errorf("%w: artifact %q status is %q, should be processed", ErrValidation, a.ID, a.Status)
	}
	if a.ObjectKey == nil {
		return OptimiseReport{}, fmt.Errorf("%w: artifact %q has no stored object", ErrValidation, a.ID)
	}
	if a.Optimised {
		return OptimiseReport{
			OriginalSizeBytes:  a.Metadata.OriginalSizeBytes,
			OptimisedSizeBytes: a.SizeBytes,
			CompressionRatio:   a.Metadata.CompressionRatio,
		}, nil
	}

	originalSize := a.SizeBytes

	srcPath, outPath, err := s.reencode(ctx, a)
	if err != nil {
		return OptimiseReport{}, err
	}
	defer func() {
		for _, p := range []string{srcPath, outPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				log.Printf("failed to remove optimise temp file %q: %v", p, err)
			}
		}
	}()

	newSize, err := s.swapIn(ctx, *a.ObjectKey, outPath)
	if err != nil {
		return OptimiseReport{}, err
	}

	ratio := 1.0
	if originalSize > 0 {
		ratio = float64(newSize) / float64(originalSize)
	}

	a.Optimised = true
	a.SizeBytes = newSize
	a.Metadata.Merge(model.Metadata{
		OriginalSizeBytes: originalSize,
		CompressionRatio:  ratio,
	})
	if err := s.repo.Update(ctx, a); err != nil {
		return OptimiseReport{}, fmt.Errorf("failed updating artifact %q: %w", a.ID, err)
	}

	if err := s.cache.DeleteArtifactDetails(ctx, a.ID); err != nil {
		log.Printf("failed deleting cache for artifact %q: %v", a.ID, err)
	}

	return OptimiseReport{
		OriginalSizeBytes:  originalSize,
		OptimisedSizeBytes: newSize,
		CompressionRatio:   ratio,
	}, nil
}

func (s *optimiserSrv) reencode(ctx context.Context, a *model.Artifact) (srcPath, outPath string, err error) {
	reader, err := s.strg.GetFile(ctx, s.bucket, *a.ObjectKey)
	if err != nil {
		return "", "", fmt.Errorf("failed downloading %q from bucket %q: %w", *a.ObjectKey, s.bucket, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close reader for %q: %v", *a.ObjectKey, err)
		}
	}()

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", "", err
	}
	srcPath = filepath.Join(s.stagingDir, "optimise-src-"+a.StorageFilename)
	f, err := os.Create(srcPath)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		_ = os.Remove(srcPath)
		return "", "", fmt.Errorf("failed writing optimise source %q: %w", srcPath, err)
	}
	if err := f.Close(); err != nil {
		return "", "", err
	}

	outPath = filepath.Join(s.stagingDir, "optimise-out-"+a.StorageFilename)
	if err := s.extractor.ExtractAudio(ctx, srcPath, outPath, OptimiseAudioPolicy); err != nil {
		_ = os.Remove(srcPath)
		return "", "", fmt.Errorf("%w: artifact %q: %s", ErrTranscodeFailure, a.ID, err)
	}
	return srcPath, outPath, nil
}

// swapIn uploads the re-encoded file under a temp key, copies it over the
// authoritative key and removes the temp object.
func (s *optimiserSrv) swapIn(ctx context.Context, objectKey, outPath string) (int64, error) {
	f, err := os.Open(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed opening optimise output %q: %w", outPath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close optimise output %q: %v", outPath, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat optimise output %q: %w", outPath, err)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: optimise produced an empty audio stream", ErrTranscodeFailure)
	}

	tempKey := objectKey + ".tmp"
	if err := s.strg.SaveFile(ctx, s.bucket, tempKey, f, info.Size(), map[string]string{
		"Content-Type": AudioMimeType,
	}); err != nil {
		return 0, fmt.Errorf("failed saving temp file %q to bucket %q: %w", tempKey, s.bucket, err)
	}

	if err := s.strg.CopyFile(ctx, s.bucket, tempKey, objectKey); err != nil {
		return 0, fmt.Errorf("failed copying %q to %q inside bucket %q: %w", tempKey, objectKey, s.bucket, err)
	}

	if err := s.strg.RemoveFile(ctx, s.bucket, tempKey); err != nil {
		log.Printf("failed to remove temp file %q from bucket %q: %v", tempKey, s.bucket, err)
	}

	return info.Size(), nil
}
