package backup

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

type mockDumper struct {
	dumpData   string
	dumpErr    error
	restoreErr error

	dumpCalled    bool
	restoreCalled bool
	restored      []byte
}

func (m *mockDumper) Dump(ctx context.Context, w io.Writer) error {
	m.dumpCalled = true
	if m.dumpErr != nil {
		return m.dumpErr
	}
	data := m.dumpData
	if data == "" {
		data = "-- dump\nCREATE TABLE artifacts (id BINARY(16));\n"
	}
	_, err := io.WriteString(w, data)
	return err
}
func (m *mockDumper) Restore(ctx context.Context, r io.Reader) error {
	m.restoreCalled = true
	if m.restoreErr != nil {
		return m.restoreErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.restored = data
	return nil
}

// mockStorage keeps objects in memory so saved archives can be read back.
type mockStorage struct {
	objects map[string][]byte
	files   []port.FileInfo

	saveErr   error
	getErr    error
	statErr   error
	listErr   error
	removeErr map[string]error

	savedKeys   []string
	removedKeys []string
}

func (m *mockStorage) InitBucket(bucket string, public bool) error { return nil }
func (m *mockStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}
func (m *mockStorage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[fileKey] = data
	m.savedKeys = append(m.savedKeys, fileKey)
	return nil
}
func (m *mockStorage) GetFile(ctx context.Context, bucket, fileKey string) (io.ReadSeekCloser, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[fileKey]
	if !ok {
		return nil, port.ErrObjectNotFound
	}
	return nopReadSeekCloser{bytes.NewReader(data)}, nil
}
func (m *mockStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	if m.statErr != nil {
		return port.FileInfo{}, m.statErr
	}
	data, ok := m.objects[fileKey]
	if !ok {
		return port.FileInfo{}, port.ErrObjectNotFound
	}
	return port.FileInfo{Key: fileKey, SizeBytes: int64(len(data))}, nil
}
func (m *mockStorage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	if err := m.removeErr[fileKey]; err != nil {
		return err
	}
	delete(m.objects, fileKey)
	m.removedKeys = append(m.removedKeys, fileKey)
	return nil
}
func (m *mockStorage) CopyFile(ctx context.Context, bucket, srcKey, destKey string) error {
	return nil
}
func (m *mockStorage) ListFiles(ctx context.Context, bucket, prefix string) ([]port.FileInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}
func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	return "https://example.com/download", nil
}
func (m *mockStorage) SetStorageClass(ctx context.Context, bucket, fileKey string, class model.StorageClass) error {
	return nil
}
func (m *mockStorage) PublicURL(bucket, fileKey string) string {
	return "https://minio.local/" + bucket + "/" + fileKey
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

type mockAudit struct {
	createdKey   string
	createdSize  int64
	restoredKey  string
	safetyKey    string
	cleanedCount int
	cleanedDays  int
}

func (m *mockAudit) BackupCreated(ctx context.Context, key string, sizeBytes int64) {
	m.createdKey = key
	m.createdSize = sizeBytes
}
func (m *mockAudit) BackupRestored(ctx context.Context, key, safetyKey string) {
	m.restoredKey = key
	m.safetyKey = safetyKey
}
func (m *mockAudit) BackupsCleaned(ctx context.Context, deleted, retentionDays int) {
	m.cleanedCount = deleted
	m.cleanedDays = retentionDays
}

type mockLocker struct {
	held    bool
	lockErr error

	lockCalled   bool
	unlockCalled bool
}

func (m *mockLocker) TryLock() (bool, error) {
	m.lockCalled = true
	if m.lockErr != nil {
		return false, m.lockErr
	}
	return !m.held, nil
}
func (m *mockLocker) Unlock() error {
	m.unlockCalled = true
	return nil
}
