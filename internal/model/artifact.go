package model

import (
	"errors"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type ArtifactKind string

const (
	KindVideo ArtifactKind = "video"
	KindAudio ArtifactKind = "audio"
	KindImage ArtifactKind = "image"
)

type ArtifactStatus string

const (
	StatusUploaded   ArtifactStatus = "uploaded"
	StatusProcessing ArtifactStatus = "processing"
	StatusProcessed  ArtifactStatus = "processed"
	StatusFailed     ArtifactStatus = "failed"
	StatusDeleted    ArtifactStatus = "deleted"
)

type StorageClass string

const (
	StorageClassStandard         StorageClass = "STANDARD"
	StorageClassInfrequentAccess StorageClass = "STANDARD_IA"
	StorageClassArchive          StorageClass = "GLACIER"
)

// ErrInvalidTransition is returned when a status change would move an
// artifact backwards in its lifecycle.
var ErrInvalidTransition = errors.New("artifact: invalid status transition")

// transitions lists the legal next statuses for each status. An artifact
// only ever moves forward; `deleted` is reachable from every live status.
var transitions = map[ArtifactStatus][]ArtifactStatus{
	StatusUploaded:   {StatusProcessing, StatusProcessed, StatusFailed, StatusDeleted},
	StatusProcessing: {StatusProcessed, StatusFailed, StatusDeleted},
	StatusProcessed:  {StatusDeleted},
	StatusFailed:     {StatusDeleted},
	StatusDeleted:    {},
}

// CanTransitionTo reports whether moving from s to next is legal.
// Re-asserting the current status is always allowed so that at-least-once
// job deliveries stay idempotent.
func (s ArtifactStatus) CanTransitionTo(next ArtifactStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Artifact is the registry record for one ingested media file.
type Artifact struct {
	ID               uuid.UUID      `json:"id"`
	OwnerID          uuid.UUID      `json:"owner_id"`
	OriginalFilename string         `json:"original_filename"`
	StorageFilename  string         `json:"storage_filename"`
	MimeType         string         `json:"mime_type"`
	SizeBytes        int64          `json:"size_bytes"`
	LocalPath        *string        `json:"local_path,omitempty"`
	ObjectKey        *string        `json:"object_key,omitempty"`
	RemoteURL        *string        `json:"remote_url,omitempty"`
	Kind             ArtifactKind   `json:"kind"`
	Status           ArtifactStatus `json:"status"`
	StorageClass     StorageClass   `json:"storage_class"`
	Optimised        bool           `json:"optimised"`
	FailureMessage   *string        `json:"failure_message,omitempty"`
	Metadata         Metadata       `json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
