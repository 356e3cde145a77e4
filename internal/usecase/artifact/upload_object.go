package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// ObjectUploader moves a staged file into durable storage.
type ObjectUploader interface {
	UploadObject(ctx context.Context, in UploadObjectInput) error
}

type objectUploaderSrv struct {
	repo   port.ArtifactRepository
	strg   port.Storage
	bucket string
}

// NewObjectUploader constructs an ObjectUploader implementation.
func NewObjectUploader(repo port.ArtifactRepository, strg port.Storage, bucket string) ObjectUploader {
	return &objectUploaderSrv{repo: repo, strg: strg, bucket: bucket}
}

// UploadObjectInput represents the payload of an object-upload job.
type UploadObjectInput struct {
	ID uuid.UUID
}

// UploadObject streams the staged file to the blob store, records the object
// key and public URL, clears the local staging path and removes the staged
// file. Non-video artifacts skip transcoding so they reach `processed` here.
// Re-delivering the job for an artifact that already has an object key is a
// no-op.
func (s *objectUploaderSrv) UploadObject(ctx context.Context, in UploadObjectInput) error {
	a, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, in.ID)
		}
		return err
	}
	if a.Status == model.StatusDeleted {
		return fmt.Errorf("%w: artifact %q is deleted", ErrValidation, in.ID)
	}
	if a.ObjectKey != nil {
		return nil
	}
	if a.LocalPath == nil {
		return fmt.Errorf("%w: artifact %q has no staged file to upload", ErrValidation, in.ID)
	}

	f, err := os.Open(*a.LocalPath)
	if err != nil {
		return fmt.Errorf("failed opening staged file %q: %w", *a.LocalPath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close staged file %q: %v", *a.LocalPath, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat staged file %q: %w", *a.LocalPath, err)
	}

	objectKey := a.StorageFilename
	if err := s.strg.SaveFile(ctx, s.bucket, objectKey, f, info.Size(), map[string]string{
		"Content-Type": a.MimeType,
	}); err != nil {
		return fmt.Errorf("failed saving file %q to bucket %q: %w", objectKey, s.bucket, err)
	}

	staged := *a.LocalPath
	remoteURL := s.strg.PublicURL(s.bucket, objectKey)
	a.ObjectKey = &objectKey
	a.RemoteURL = &remoteURL
	a.SizeBytes = info.Size()
	// Videos still need their staged source for transcoding; the transcode
	// job clears the path and removes the file once a durable copy exists.
	if a.Kind != model.KindVideo {
		a.LocalPath = nil
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return fmt.Errorf("failed updating artifact %q after upload: %w", a.ID, err)
	}

	if a.Kind != model.KindVideo {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove staged file %q: %v", staged, err)
		}
		if err := s.repo.Transition(ctx, a.ID, model.StatusProcessed, nil); err != nil {
			return fmt.Errorf("failed transitioning artifact %q to processed: %w", a.ID, err)
		}
		a.Status = model.StatusProcessed
	}

	return nil
}
