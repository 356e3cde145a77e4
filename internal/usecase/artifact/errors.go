package artifact

import "errors"

var (
	// ErrValidation covers bad input: unsupported MIME type, oversize or
	// empty payloads, wrong artifact kind for an operation. Never retried.
	ErrValidation = errors.New("artifact: validation failed")
	// ErrArtifactNotFound is returned when the registry has no such record.
	ErrArtifactNotFound = errors.New("artifact: not found")
	// ErrTranscodeFailure wraps a non-zero exit or timeout of the external
	// transcoder. Retried by the queue orchestrator.
	ErrTranscodeFailure = errors.New("artifact: transcode failed")
)
