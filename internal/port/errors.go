package port

import "errors"

// Storage error taxonomy. Adapters map transport-specific failures into
// these sentinels so callers never branch on SDK error shapes.
var (
	ErrObjectNotFound     = errors.New("storage: object not found")
	ErrBucketNotFound     = errors.New("storage: bucket not found")
	ErrAccessDenied       = errors.New("storage: access denied")
	ErrStorageUnavailable = errors.New("storage: unavailable")
)
