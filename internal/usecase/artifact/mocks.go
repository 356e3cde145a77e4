package artifact

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type mockRepo struct {
	artifactRecord *model.Artifact
	childRecord    *model.Artifact
	listed         []model.Artifact

	getErr        error
	getChildErr   error
	createErr     error
	updateErr     error
	transitionErr error
	mergeErr      error
	deleteErr     error
	listErr       error

	getCalled        bool
	getChildCalled   bool
	deleteCalled     bool
	created          *model.Artifact
	updated          *model.Artifact
	transitionedTo   []model.ArtifactStatus
	failureMessage   *string
	mergedPatch      *model.Metadata
	listFilter       port.ArtifactFilter
	listOwnerID      uuid.UUID
	videosBefore     []model.Artifact
	audiosBefore     []model.Artifact
	unoptimisedAudio []uuid.UUID
}

func (m *mockRepo) Create(ctx context.Context, a *model.Artifact) error {
	m.created = a
	return m.createErr
}
func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Artifact, error) {
	m.getCalled = true
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.artifactRecord == nil {
		return nil, sql.ErrNoRows
	}
	return m.artifactRecord, nil
}
func (m *mockRepo) GetChildByParentID(ctx context.Context, parentID uuid.UUID) (*model.Artifact, error) {
	m.getChildCalled = true
	if m.getChildErr != nil {
		return nil, m.getChildErr
	}
	if m.childRecord == nil {
		return nil, sql.ErrNoRows
	}
	return m.childRecord, nil
}
func (m *mockRepo) Update(ctx context.Context, a *model.Artifact) error {
	m.updated = a
	return m.updateErr
}
func (m *mockRepo) Transition(ctx context.Context, id uuid.UUID, newStatus model.ArtifactStatus, failureMessage *string) error {
	if m.transitionErr != nil {
		return m.transitionErr
	}
	m.transitionedTo = append(m.transitionedTo, newStatus)
	m.failureMessage = failureMessage
	if m.artifactRecord != nil {
		m.artifactRecord.Status = newStatus
	}
	return nil
}
func (m *mockRepo) MergeMetadata(ctx context.Context, id uuid.UUID, patch model.Metadata) error {
	m.mergedPatch = &patch
	return m.mergeErr
}
func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleteCalled = true
	return m.deleteErr
}
func (m *mockRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, f port.ArtifactFilter) ([]model.Artifact, error) {
	m.listOwnerID = ownerID
	m.listFilter = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}
func (m *mockRepo) ListProcessedVideosBefore(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	return m.videosBefore, m.listErr
}
func (m *mockRepo) ListArchivableAudioBefore(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	return m.audiosBefore, m.listErr
}
func (m *mockRepo) ListUnoptimisedAudioBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	return m.unoptimisedAudio, m.listErr
}

type mockStorage struct {
	reader   io.Reader
	statInfo port.FileInfo
	files    []port.FileInfo

	saveErr     error
	getErr      error
	statErr     error
	removeErr   error
	copyErr     error
	presignErr  error
	setClassErr error

	saveCalled     bool
	getCalled      bool
	statCalled     bool
	removeCalled   bool
	copyCalled     bool
	presignCalled  bool
	setClassCalled bool

	savedKeys   []string
	savedOpts   map[string]string
	removedKeys []string
	copiedSrc   string
	copiedDest  string
	classSet    model.StorageClass
	presignTTL  time.Duration
}

func (m *mockStorage) InitBucket(bucket string, public bool) error { return nil }
func (m *mockStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}
func (m *mockStorage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	m.saveCalled = true
	m.savedKeys = append(m.savedKeys, fileKey)
	m.savedOpts = opts
	if m.saveErr != nil {
		return m.saveErr
	}
	_, _ = io.Copy(io.Discard, reader)
	return nil
}
func (m *mockStorage) GetFile(ctx context.Context, bucket, fileKey string) (io.ReadSeekCloser, error) {
	m.getCalled = true
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.reader != nil {
		data, _ := io.ReadAll(m.reader)
		return nopReadSeekCloser{bytes.NewReader(data)}, nil
	}
	return nopReadSeekCloser{bytes.NewReader([]byte("dummy"))}, nil
}
func (m *mockStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	m.statCalled = true
	if m.statErr != nil {
		return port.FileInfo{}, m.statErr
	}
	return m.statInfo, nil
}
func (m *mockStorage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	m.removeCalled = true
	m.removedKeys = append(m.removedKeys, fileKey)
	return m.removeErr
}
func (m *mockStorage) CopyFile(ctx context.Context, bucket, srcKey, destKey string) error {
	m.copyCalled = true
	m.copiedSrc = srcKey
	m.copiedDest = destKey
	return m.copyErr
}
func (m *mockStorage) ListFiles(ctx context.Context, bucket, prefix string) ([]port.FileInfo, error) {
	return m.files, nil
}
func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	m.presignCalled = true
	m.presignTTL = expiry
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return "https://example.com/download/" + fileKey, nil
}
func (m *mockStorage) SetStorageClass(ctx context.Context, bucket, fileKey string, class model.StorageClass) error {
	m.setClassCalled = true
	m.classSet = class
	return m.setClassErr
}
func (m *mockStorage) PublicURL(bucket, fileKey string) string {
	return "https://minio.local/" + bucket + "/" + fileKey
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

type mockDispatcher struct {
	transcodeErr error
	uploadErr    error
	extractErr   error
	analyseErr   error
	optimiseErr  error

	transcodeCalled bool
	uploadCalled    bool
	extractCalled   bool
	analyseCalled   bool
	optimiseCalled  bool

	transcodeID uuid.UUID
	uploadID    uuid.UUID
	extractID   uuid.UUID
	analysedID  uuid.UUID
	parentID    uuid.UUID
	optimiseID  uuid.UUID
}

func (m *mockDispatcher) EnqueueTranscodeArtifact(ctx context.Context, id, ownerID uuid.UUID) error {
	m.transcodeCalled = true
	m.transcodeID = id
	return m.transcodeErr
}
func (m *mockDispatcher) EnqueueUploadObject(ctx context.Context, id, ownerID uuid.UUID) error {
	m.uploadCalled = true
	m.uploadID = id
	return m.uploadErr
}
func (m *mockDispatcher) EnqueueExtractMetadata(ctx context.Context, id uuid.UUID) error {
	m.extractCalled = true
	m.extractID = id
	return m.extractErr
}
func (m *mockDispatcher) EnqueueAnalyseArtifact(ctx context.Context, audioID, parentID, ownerID uuid.UUID) error {
	m.analyseCalled = true
	m.analysedID = audioID
	m.parentID = parentID
	return m.analyseErr
}
func (m *mockDispatcher) EnqueueOptimiseArtifact(ctx context.Context, id uuid.UUID) error {
	m.optimiseCalled = true
	m.optimiseID = id
	return m.optimiseErr
}

type mockCache struct {
	data   []byte
	getErr error

	getCalled    bool
	setCalled    bool
	deleteCalled bool
	setData      []byte
	validUntil   time.Time
}

func (m *mockCache) GetArtifactDetails(ctx context.Context, id uuid.UUID) ([]byte, error) {
	m.getCalled = true
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data, nil
}
func (m *mockCache) SetArtifactDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time) {
	m.setCalled = true
	m.setData = data
	m.validUntil = validUntil
}
func (m *mockCache) DeleteArtifactDetails(ctx context.Context, id uuid.UUID) error {
	m.deleteCalled = true
	return nil
}

type mockExtractor struct {
	extractErr error

	extractCalled bool
	srcPath       string
	destPath      string
	policy        port.AudioEncodePolicy
	output        []byte
}

func (m *mockExtractor) ExtractAudio(ctx context.Context, srcPath, destPath string, policy port.AudioEncodePolicy) error {
	m.extractCalled = true
	m.srcPath = srcPath
	m.destPath = destPath
	m.policy = policy
	if m.extractErr != nil {
		return m.extractErr
	}
	out := m.output
	if out == nil {
		out = []byte("encoded audio")
	}
	return writeTestFile(destPath, out)
}

func writeTestFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

type mockProber struct {
	result   port.ProbeResult
	probeErr error

	probeCalled bool
	probedPath  string
}

func (m *mockProber) Probe(ctx context.Context, path string) (port.ProbeResult, error) {
	m.probeCalled = true
	m.probedPath = path
	if m.probeErr != nil {
		return port.ProbeResult{}, m.probeErr
	}
	return m.result, nil
}
