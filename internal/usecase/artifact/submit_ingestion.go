package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// IngestionSubmitter accepts a new upload into the pipeline.
type IngestionSubmitter interface {
	SubmitIngestion(ctx context.Context, in SubmitIngestionInput) (*model.Artifact, error)
}

type ingestionSubmitterSrv struct {
	repo       port.ArtifactRepository
	dispatcher port.TaskDispatcher
	stagingDir string
}

// NewIngestionSubmitter constructs an IngestionSubmitter implementation.
func NewIngestionSubmitter(repo port.ArtifactRepository, dispatcher port.TaskDispatcher, stagingDir string) IngestionSubmitter {
	return &ingestionSubmitterSrv{repo: repo, dispatcher: dispatcher, stagingDir: stagingDir}
}

// SubmitIngestionInput represents one file handed over by the API layer.
type SubmitIngestionInput struct {
	OwnerID          uuid.UUID
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	Reader           io.Reader
}

// SubmitIngestion stages the file locally, persists the registry record in
// `uploaded` status and enqueues the asynchronous jobs: object upload for
// every kind, transcoding for videos only.
func (s *ingestionSubmitterSrv) SubmitIngestion(ctx context.Context, in SubmitIngestionInput) (*model.Artifact, error) {
	if in.OwnerID.IsZero() {
		return nil, fmt.Errorf("%w: missing owner id", ErrValidation)
	}
	kind, ok := KindForMimeType(in.MimeType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported mime-type %q", ErrValidation, in.MimeType)
	}
	if in.SizeBytes < MinFileSize {
		return nil, fmt.Errorf("%w: file %q too small: %d bytes (min size: %d bytes)", ErrValidation, in.OriginalFilename, in.SizeBytes, MinFileSize)
	}
	if in.SizeBytes > MaxFileSize {
		return nil, fmt.Errorf("%w: file %q too large: %d bytes (max size: %d bytes)", ErrValidation, in.OriginalFilename, in.SizeBytes, MaxFileSize)
	}

	ext, err := MimeTypeToExtension(in.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	id := uuid.NewUUID()
	storageFilename := id.String() + ext
	localPath := filepath.Join(s.stagingDir, storageFilename)

	if err := s.stageFile(localPath, in.Reader); err != nil {
		return nil, fmt.Errorf("failed staging file %q: %w", in.OriginalFilename, err)
	}

	a := &model.Artifact{
		ID:               id,
		OwnerID:          in.OwnerID,
		OriginalFilename: in.OriginalFilename,
		StorageFilename:  storageFilename,
		MimeType:         in.MimeType,
		SizeBytes:        in.SizeBytes,
		LocalPath:        &localPath,
		Kind:             kind,
		Status:           model.StatusUploaded,
		StorageClass:     model.StorageClassStandard,
		Metadata:         ExtractFilenameMetadata(in.OriginalFilename),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("failed creating artifact (staging cleanup also failed: %v): %w", rmErr, err)
		}
		return nil, fmt.Errorf("failed creating artifact: %w", err)
	}

	if err := s.dispatcher.EnqueueUploadObject(ctx, a.ID, a.OwnerID); err != nil {
		return nil, fmt.Errorf("failed enqueueing upload for artifact %q: %w", a.ID, err)
	}
	if kind == model.KindVideo {
		if err := s.dispatcher.EnqueueTranscodeArtifact(ctx, a.ID, a.OwnerID); err != nil {
			return nil, fmt.Errorf("failed enqueueing transcode for artifact %q: %w", a.ID, err)
		}
	}

	return a, nil
}

func (s *ingestionSubmitterSrv) stageFile(localPath string, r io.Reader) error {
	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return err
	}
	return f.Close()
}
