package storage

import (
	"errors"
	"testing"

	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/minio/minio-go/v7"
)

func TestMapMinioErr(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"NoSuchKey", port.ErrObjectNotFound},
		{"NoSuchBucket", port.ErrBucketNotFound},
		{"AccessDenied", port.ErrAccessDenied},
		{"InvalidAccessKeyId", port.ErrAccessDenied},
		{"SignatureDoesNotMatch", port.ErrAccessDenied},
		{"SlowDown", port.ErrStorageUnavailable},
	}
	for _, c := range cases {
		err := mapMinioErr(minio.ErrorResponse{Code: c.code})
		if !errors.Is(err, c.want) {
			t.Errorf("code %q: got %v, want %v", c.code, err, c.want)
		}
	}
}

func TestMapMinioErr_Nil(t *testing.T) {
	if err := mapMinioErr(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
