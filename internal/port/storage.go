package port

import (
	"context"
	"io"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
)

// FileInfo represents metadata about a stored object.
type FileInfo struct {
	Key          string
	SizeBytes    int64
	ContentType  string
	LastModified time.Time
}

// Storage defines durable blob store operations.
type Storage interface {
	// InitBucket creates the bucket if absent. When public is true a
	// read-only download policy is attached so PublicURL links resolve
	// without credentials; private buckets stay presign-only.
	InitBucket(bucket string, public bool) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error
	GetFile(ctx context.Context, bucket, fileKey string) (io.ReadSeekCloser, error)
	StatFile(ctx context.Context, bucket, fileKey string) (FileInfo, error)
	RemoveFile(ctx context.Context, bucket, fileKey string) error
	CopyFile(ctx context.Context, bucket, srcKey, destKey string) error
	ListFiles(ctx context.Context, bucket, prefix string) ([]FileInfo, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error)
	SetStorageClass(ctx context.Context, bucket, fileKey string, class model.StorageClass) error
	PublicURL(bucket, fileKey string) string
}
