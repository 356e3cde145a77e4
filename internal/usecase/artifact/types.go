package artifact

import (
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
)

// MetadataOutput is the subset of artifact metadata returned to clients.
type MetadataOutput struct {
	model.Metadata
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// GetArtifactOutput describes the result of the GetArtifact use case.
type GetArtifactOutput struct {
	Status         model.ArtifactStatus `json:"status"`
	StorageClass   model.StorageClass   `json:"storage_class"`
	Optimised      bool                 `json:"optimised"`
	URL            string               `json:"url,omitempty"`
	ValidUntil     time.Time            `json:"valid_until,omitempty"`
	RemoteURL      *string              `json:"remote_url,omitempty"`
	FailureMessage *string              `json:"failure_message,omitempty"`
	Metadata       MetadataOutput       `json:"metadata"`
}

// OptimiseReport summarises one re-encode pass over an audio artifact.
type OptimiseReport struct {
	OriginalSizeBytes  int64   `json:"original_size_bytes"`
	OptimisedSizeBytes int64   `json:"optimised_size_bytes"`
	CompressionRatio   float64 `json:"compression_ratio"`
}
