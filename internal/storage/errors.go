package storage

import (
	"fmt"

	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/minio/minio-go/v7"
)

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return port.ErrObjectNotFound
	case "NoSuchBucket":
		return port.ErrBucketNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return port.ErrAccessDenied
	default:
		// network failures and everything else the transport can produce
		return fmt.Errorf("%w: %v", port.ErrStorageUnavailable, err)
	}
}
