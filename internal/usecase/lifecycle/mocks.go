package lifecycle

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type mockRepo struct {
	videosBefore     []model.Artifact
	audiosBefore     []model.Artifact
	unoptimisedAudio []uuid.UUID

	listErr       error
	updateErr     error
	transitionErr error

	updated        []*model.Artifact
	transitionedTo []model.ArtifactStatus
}

func (m *mockRepo) Create(ctx context.Context, a *model.Artifact) error { return nil }
func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Artifact, error) {
	return nil, sql.ErrNoRows
}
func (m *mockRepo) GetChildByParentID(ctx context.Context, parentID uuid.UUID) (*model.Artifact, error) {
	return nil, sql.ErrNoRows
}
func (m *mockRepo) Update(ctx context.Context, a *model.Artifact) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, a)
	return nil
}
func (m *mockRepo) Transition(ctx context.Context, id uuid.UUID, newStatus model.ArtifactStatus, failureMessage *string) error {
	if m.transitionErr != nil {
		return m.transitionErr
	}
	m.transitionedTo = append(m.transitionedTo, newStatus)
	return nil
}
func (m *mockRepo) MergeMetadata(ctx context.Context, id uuid.UUID, patch model.Metadata) error {
	return nil
}
func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, f port.ArtifactFilter) ([]model.Artifact, error) {
	return nil, nil
}
func (m *mockRepo) ListProcessedVideosBefore(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.videosBefore, nil
}
func (m *mockRepo) ListArchivableAudioBefore(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.audiosBefore, nil
}
func (m *mockRepo) ListUnoptimisedAudioBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.unoptimisedAudio, nil
}

type mockStorage struct {
	removeErr   map[string]error
	setClassErr map[string]error

	removedKeys []string
	classSet    map[string]model.StorageClass
}

func (m *mockStorage) InitBucket(bucket string, public bool) error { return nil }
func (m *mockStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}
func (m *mockStorage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	return nil
}
func (m *mockStorage) GetFile(ctx context.Context, bucket, fileKey string) (io.ReadSeekCloser, error) {
	return nopReadSeekCloser{bytes.NewReader([]byte("dummy"))}, nil
}
func (m *mockStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	return port.FileInfo{}, nil
}
func (m *mockStorage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	if err := m.removeErr[fileKey]; err != nil {
		return err
	}
	m.removedKeys = append(m.removedKeys, fileKey)
	return nil
}
func (m *mockStorage) CopyFile(ctx context.Context, bucket, srcKey, destKey string) error {
	return nil
}
func (m *mockStorage) ListFiles(ctx context.Context, bucket, prefix string) ([]port.FileInfo, error) {
	return nil, nil
}
func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	return "https://example.com/download", nil
}
func (m *mockStorage) SetStorageClass(ctx context.Context, bucket, fileKey string, class model.StorageClass) error {
	if err := m.setClassErr[fileKey]; err != nil {
		return err
	}
	if m.classSet == nil {
		m.classSet = map[string]model.StorageClass{}
	}
	m.classSet[fileKey] = class
	return nil
}
func (m *mockStorage) PublicURL(bucket, fileKey string) string {
	return "https://minio.local/" + bucket + "/" + fileKey
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

type mockDispatcher struct {
	optimiseErr map[string]error

	optimisedIDs []uuid.UUID
}

func (m *mockDispatcher) EnqueueTranscodeArtifact(ctx context.Context, id, ownerID uuid.UUID) error {
	return nil
}
func (m *mockDispatcher) EnqueueUploadObject(ctx context.Context, id, ownerID uuid.UUID) error {
	return nil
}
func (m *mockDispatcher) EnqueueExtractMetadata(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (m *mockDispatcher) EnqueueAnalyseArtifact(ctx context.Context, audioID, parentID, ownerID uuid.UUID) error {
	return nil
}
func (m *mockDispatcher) EnqueueOptimiseArtifact(ctx context.Context, id uuid.UUID) error {
	if err := m.optimiseErr[id.String()]; err != nil {
		return err
	}
	m.optimisedIDs = append(m.optimisedIDs, id)
	return nil
}
