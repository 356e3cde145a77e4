package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Metadata struct {
	// probed from the media itself
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	BitrateKbps     int     `json:"bitrate_kbps,omitempty"`
	Codec           string  `json:"codec,omitempty"`
	Format          string  `json:"format,omitempty"`

	// inferred from the original filename
	SubjectName           string `json:"subject_name,omitempty"`
	LessonDate            string `json:"lesson_date,omitempty"` // YYYY-MM-DD
	ExtractedFromFilename bool   `json:"extracted_from_filename,omitempty"`

	// lineage and bookkeeping
	ParentArtifactID  string  `json:"parent_artifact_id,omitempty"`
	ProbeError        string  `json:"probe_error,omitempty"`
	OriginalSizeBytes int64   `json:"original_size_bytes,omitempty"`
	CompressionRatio  float64 `json:"compression_ratio,omitempty"`
}

// Merge overlays the non-zero fields of patch onto m, leaving every
// unspecified field untouched.
func (m *Metadata) Merge(patch Metadata) {
	if patch.DurationSeconds != 0 {
		m.DurationSeconds = patch.DurationSeconds
	}
	if patch.Width != 0 {
		m.Width = patch.Width
	}
	if patch.Height != 0 {
		m.Height = patch.Height
	}
	if patch.BitrateKbps != 0 {
		m.BitrateKbps = patch.BitrateKbps
	}
	if patch.Codec != "" {
		m.Codec = patch.Codec
	}
	if patch.Format != "" {
		m.Format = patch.Format
	}
	if patch.SubjectName != "" {
		m.SubjectName = patch.SubjectName
	}
	if patch.LessonDate != "" {
		m.LessonDate = patch.LessonDate
	}
	if patch.ExtractedFromFilename {
		m.ExtractedFromFilename = true
	}
	if patch.ParentArtifactID != "" {
		m.ParentArtifactID = patch.ParentArtifactID
	}
	if patch.ProbeError != "" {
		m.ProbeError = patch.ProbeError
	}
	if patch.OriginalSizeBytes != 0 {
		m.OriginalSizeBytes = patch.OriginalSizeBytes
	}
	if patch.CompressionRatio != 0 {
		m.CompressionRatio = patch.CompressionRatio
	}
}

func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal Metadata: %w", err)
	}
	return b, nil
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Metadata.Scan: expected []byte, got %T", src)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("unmarshal Metadata: %w", err)
	}
	return nil
}
