package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

type mockMinio struct {
	bucketExistsFn    func(ctx context.Context, bucketName string) (bool, error)
	makeBucketFn      func(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	setBucketPolicyFn func(ctx context.Context, bucketName, policy string) error

	madeBuckets []string
	policies    map[string]string
}

func (m *mockMinio) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if m.bucketExistsFn != nil {
		return m.bucketExistsFn(ctx, bucketName)
	}
	return false, nil
}
func (m *mockMinio) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	m.madeBuckets = append(m.madeBuckets, bucketName)
	if m.makeBucketFn != nil {
		return m.makeBucketFn(ctx, bucketName, opts)
	}
	return nil
}
func (m *mockMinio) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	if m.policies == nil {
		m.policies = map[string]string{}
	}
	m.policies[bucketName] = policy
	if m.setBucketPolicyFn != nil {
		return m.setBucketPolicyFn(ctx, bucketName, policy)
	}
	return nil
}
func (m *mockMinio) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	return nil, nil
}
func (m *mockMinio) StatObject(ctx context.Context, bucketName, fileKey string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return minio.ObjectInfo{}, nil
}
func (m *mockMinio) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}
func (m *mockMinio) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return nil
}
func (m *mockMinio) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	return nil, nil
}
func (m *mockMinio) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return minio.UploadInfo{}, nil
}
func (m *mockMinio) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	return minio.UploadInfo{}, nil
}

func makeStorage(client minioClient) *MinioStorage {
	return &MinioStorage{client: client, endpoint: "minio.local:9000", useSSL: false}
}

func TestInitBucket_PublicAttachesDownloadPolicy(t *testing.T) {
	client := &mockMinio{}
	strg := makeStorage(client)

	if err := strg.InitBucket("artifacts", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.madeBuckets) != 1 || client.madeBuckets[0] != "artifacts" {
		t.Errorf("expected bucket %q to be created, got %v", "artifacts", client.madeBuckets)
	}
	policy, ok := client.policies["artifacts"]
	if !ok {
		t.Fatal("expected a bucket policy to be attached")
	}
	if !strings.Contains(policy, `"s3:GetObject"`) || !strings.Contains(policy, "arn:aws:s3:::artifacts/*") {
		t.Errorf("unexpected policy document: %s", policy)
	}
}

func TestInitBucket_PrivateSkipsPolicy(t *testing.T) {
	client := &mockMinio{}
	strg := makeStorage(client)

	if err := strg.InitBucket("backups", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.policies) != 0 {
		t.Errorf("expected no bucket policy on a private bucket, got %v", client.policies)
	}
}

func TestInitBucket_ExistingBucketStillGetsPolicy(t *testing.T) {
	client := &mockMinio{
		bucketExistsFn: func(ctx context.Context, bucketName string) (bool, error) { return true, nil },
	}
	strg := makeStorage(client)

	if err := strg.InitBucket("artifacts", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.madeBuckets) != 0 {
		t.Errorf("expected no bucket creation, got %v", client.madeBuckets)
	}
	if _, ok := client.policies["artifacts"]; !ok {
		t.Error("expected the download policy to be reapplied to the existing bucket")
	}
}

func TestPublicURL(t *testing.T) {
	strg := makeStorage(&mockMinio{})
	got := strg.PublicURL("artifacts", "abc.mp3")
	if got != "http://minio.local:9000/artifacts/abc.mp3" {
		t.Errorf("unexpected public URL %q", got)
	}
}
