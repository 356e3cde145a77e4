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

// Transcoder turns an uploaded video artifact into a derived audio artifact.
type Transcoder interface {
	TranscodeArtifact(ctx context.Context, in TranscodeArtifactInput) error
}

type transcoderSrv struct {
	repo       port.ArtifactRepository
	strg       port.Storage
	extractor  port.AudioExtractor
	dispatcher port.TaskDispatcher
	bucket     string
	stagingDir string
}

// NewTranscoder constructs a Transcoder implementation.
func NewTranscoder(repo port.ArtifactRepository, strg port.Storage, extractor port.AudioExtractor, dispatcher port.TaskDispatcher, bucket, stagingDir string) Transcoder {
	return &transcoderSrv{repo: repo, strg: strg, extractor: extractor, dispatcher: dispatcher, bucket: bucket, stagingDir: stagingDir}
}

// TranscodeArtifactInput represents the payload of a transcode job.
type TranscodeArtifactInput struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// TranscodeArtifact runs the full per-job state machine: validate, move the
// parent to `processing`, acquire the source bytes, extract the audio stream,
// persist the derived audio artifact, move the parent to `processed` and
// enqueue the downstream jobs. Errors propagate to the queue for retry
// accounting; this use case never retries on its own.
//
// Deliveries are at-least-once, so a parent already `processed` with an
// existing linked audio artifact short-circuits to success rather than
// producing a second derivative.
func (s *transcoderSrv) TranscodeArtifact(ctx context.Context, in TranscodeArtifactInput) error {
	a, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: artifact %q", ErrArtifactNotFound, in.ID)
		}
		return err
	}
	if a.Kind != model.KindVideo {
		return fmt.Errorf("%w: artifact %q is %q, only videos are transcoded", ErrValidation, a.ID, a.Kind)
	}
	if a.Status == model.StatusProcessed {
		if _, err := s.repo.GetChildByParentID(ctx, a.ID); err == nil {
			return nil
		}
		return fmt.Errorf("artifact %q is processed but has no derived audio artifact", a.ID)
	}
	if a.Status != model.StatusUploaded && a.Status != model.StatusProcessing {
		return fmt.Errorf("%w: artifact %q status is %q, cannot be transcoded", ErrValidation, a.ID, a.Status)
	}

	if err := s.repo.Transition(ctx, a.ID, model.StatusProcessing, nil); err != nil {
		return fmt.Errorf("failed transitioning artifact %q to processing: %w", a.ID, err)
	}
	a.Status = model.StatusProcessing

	srcPath, downloaded, err := s.acquireSource(ctx, a)
	if err != nil {
		return err
	}
	defer func() {
		if downloaded {
			if err := os.Remove(srcPath); err != nil && !os.IsNotExist(err) {
				log.Printf("failed to remove downloaded source %q: %v", srcPath, err)
			}
		}
	}()

	child := &model.Artifact{
		ID:               uuid.NewUUID(),
		OwnerID:          a.OwnerID,
		OriginalFilename: a.OriginalFilename,
		MimeType:         AudioMimeType,
		Kind:             model.KindAudio,
		Status:           model.StatusProcessed,
		StorageClass:     model.StorageClassStandard,
		Metadata: model.Metadata{
			SubjectName:           a.Metadata.SubjectName,
			LessonDate:            a.Metadata.LessonDate,
			ExtractedFromFilename: a.Metadata.ExtractedFromFilename,
			ParentArtifactID:      a.ID.String(),
		},
	}
	child.StorageFilename = child.ID.String() + AudioObjectExt

	destPath := filepath.Join(s.stagingDir, child.StorageFilename)
	defer func() {
		if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove transcode output %q: %v", destPath, err)
		}
	}()

	if err := s.extractor.ExtractAudio(ctx, srcPath, destPath, TranscodeAudioPolicy); err != nil {
		return fmt.Errorf("%w: artifact %q: %s", ErrTranscodeFailure, a.ID, err)
	}

	size, err := s.saveDerived(ctx, child, destPath)
	if err != nil {
		return err
	}
	child.SizeBytes = size

	if err := s.repo.Create(ctx, child); err != nil {
		return fmt.Errorf("failed creating derived audio artifact for %q: %w", a.ID, err)
	}

	if err := s.repo.Transition(ctx, a.ID, model.StatusProcessed, nil); err != nil {
		return fmt.Errorf("failed transitioning artifact %q to processed: %w", a.ID, err)
	}
	a.Status = model.StatusProcessed

	// Downstream jobs only go out after the processed transition committed,
	// so analysis consumers never see a pre-processed parent.
	if err := s.dispatcher.EnqueueExtractMetadata(ctx, child.ID); err != nil {
		return fmt.Errorf("failed enqueueing metadata extraction for artifact %q: %w", child.ID, err)
	}
	if err := s.dispatcher.EnqueueAnalyseArtifact(ctx, child.ID, a.ID, a.OwnerID); err != nil {
		return fmt.Errorf("failed enqueueing analysis handoff for artifact %q: %w", child.ID, err)
	}

	s.cleanupStagedSource(ctx, a)

	return nil
}

// acquireSource returns a readable path for the parent video: the staged
// local file when it is still around, otherwise a fresh download from the
// blob store.
func (s *transcoderSrv) acquireSource(ctx context.Context, a *model.Artifact) (path string, downloaded bool, err error) {
	if a.LocalPath != nil {
		if _, statErr := os.Stat(*a.LocalPath); statErr == nil {
			return *a.LocalPath, false, nil
		}
	}
	if a.ObjectKey == nil {
		return "", false, fmt.Errorf("artifact %q has neither a staged file nor an object key", a.ID)
	}

	reader, err := s.strg.GetFile(ctx, s.bucket, *a.ObjectKey)
	if err != nil {
		return "", false, fmt.Errorf("failed downloading source %q from bucket %q: %w", *a.ObjectKey, s.bucket, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close reader for %q: %v", *a.ObjectKey, err)
		}
	}()

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", false, err
	}
	path = filepath.Join(s.stagingDir, "download-"+a.StorageFilename)
	f, err := os.Create(path)
	if err != nil {
		return "", false, err
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", false, fmt.Errorf("failed writing downloaded source %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (s *transcoderSrv) saveDerived(ctx context.Context, child *model.Artifact, destPath string) (int64, error) {
	f, err := os.Open(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed opening transcode output %q: %w", destPath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close transcode output %q: %v", destPath, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat transcode output %q: %w", destPath, err)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: artifact %q produced an empty audio stream", ErrTranscodeFailure, child.Metadata.ParentArtifactID)
	}

	objectKey := child.StorageFilename
	if err := s.strg.SaveFile(ctx, s.bucket, objectKey, f, info.Size(), map[string]string{
		"Content-Type": AudioMimeType,
	}); err != nil {
		return 0, fmt.Errorf("failed saving derived audio %q to bucket %q: %w", objectKey, s.bucket, err)
	}

	remoteURL := s.strg.PublicURL(s.bucket, objectKey)
	child.ObjectKey = &objectKey
	child.RemoteURL = &remoteURL
	return info.Size(), nil
}

// cleanupStagedSource removes the original staged video once a durable copy
// exists in the blob store. Best-effort: the temp-file reaper mops up
// anything missed here.
func (s *transcoderSrv) cleanupStagedSource(ctx context.Context, a *model.Artifact) {
	if a.LocalPath == nil || a.ObjectKey == nil {
		return
	}
	if err := os.Remove(*a.LocalPath); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove staged source %q: %v", *a.LocalPath, err)
		return
	}
	a.LocalPath = nil
	if err := s.repo.Update(ctx, a); err != nil {
		log.Printf("failed clearing local path for artifact %q: %v", a.ID, err)
	}
}
