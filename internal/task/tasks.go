package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeTranscodeArtifact = "artifact:transcode"
	TypeUploadObject      = "artifact:upload"
	TypeExtractMetadata   = "artifact:extract_metadata"
	TypeAnalyseArtifact   = "analysis:handoff"
	TypeOptimiseArtifact  = "artifact:optimise"

	TypePurgeOriginals  = "lifecycle:purge_originals"
	TypeArchiveCold     = "lifecycle:archive_cold"
	TypeReapTemp        = "lifecycle:reap_temp"
	TypeOptimiseBacklog = "lifecycle:optimise_backlog"
)

type TranscodeArtifactPayload struct {
	ArtifactID string `json:"artifact_id"`
	OwnerID    string `json:"owner_id"`
}

type UploadObjectPayload struct {
	ArtifactID string `json:"artifact_id"`
	OwnerID    string `json:"owner_id"`
}

type ExtractMetadataPayload struct {
	ArtifactID string `json:"artifact_id"`
}

// AnalyseArtifactPayload is handed off to the downstream analysis consumer.
// The referenced audio artifact is always `processed` by the time this is
// enqueued.
type AnalyseArtifactPayload struct {
	AudioArtifactID  string `json:"audio_artifact_id"`
	ParentArtifactID string `json:"parent_artifact_id"`
	OwnerID          string `json:"owner_id"`
}

type OptimiseArtifactPayload struct {
	ArtifactID string `json:"artifact_id"`
}

// NewTranscodeArtifactTask creates an Asynq task for transcoding an artifact by ID.
func NewTranscodeArtifactTask(artifactID, ownerID string) (*asynq.Task, error) {
	return newTask(TypeTranscodeArtifact, TranscodeArtifactPayload{ArtifactID: artifactID, OwnerID: ownerID})
}

// NewUploadObjectTask creates an Asynq task for uploading a staged artifact by ID.
func NewUploadObjectTask(artifactID, ownerID string) (*asynq.Task, error) {
	return newTask(TypeUploadObject, UploadObjectPayload{ArtifactID: artifactID, OwnerID: ownerID})
}

// NewExtractMetadataTask creates the metadata-extraction sub-job for an artifact.
func NewExtractMetadataTask(artifactID string) (*asynq.Task, error) {
	return newTask(TypeExtractMetadata, ExtractMetadataPayload{ArtifactID: artifactID})
}

// NewAnalyseArtifactTask creates the analysis handoff job for a derived audio artifact.
func NewAnalyseArtifactTask(audioID, parentID, ownerID string) (*asynq.Task, error) {
	return newTask(TypeAnalyseArtifact, AnalyseArtifactPayload{
		AudioArtifactID:  audioID,
		ParentArtifactID: parentID,
		OwnerID:          ownerID,
	})
}

// NewOptimiseArtifactTask creates an Asynq task for optimising an artifact by ID.
func NewOptimiseArtifactTask(artifactID string) (*asynq.Task, error) {
	return newTask(TypeOptimiseArtifact, OptimiseArtifactPayload{ArtifactID: artifactID})
}

// NewSweepTask creates a payload-less lifecycle sweep task.
func NewSweepTask(taskType string) *asynq.Task {
	return asynq.NewTask(taskType, nil)
}

func newTask(taskType string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, data), nil
}

// ParseTranscodeArtifactPayload parses the task payload to TranscodeArtifactPayload.
func ParseTranscodeArtifactPayload(t *asynq.Task) (TranscodeArtifactPayload, error) {
	var p TranscodeArtifactPayload
	return p, parsePayload(t, &p)
}

// ParseUploadObjectPayload parses the task payload to UploadObjectPayload.
func ParseUploadObjectPayload(t *asynq.Task) (UploadObjectPayload, error) {
	var p UploadObjectPayload
	return p, parsePayload(t, &p)
}

// ParseExtractMetadataPayload parses the task payload to ExtractMetadataPayload.
func ParseExtractMetadataPayload(t *asynq.Task) (ExtractMetadataPayload, error) {
	var p ExtractMetadataPayload
	return p, parsePayload(t, &p)
}

// ParseOptimiseArtifactPayload parses the task payload to OptimiseArtifactPayload.
func ParseOptimiseArtifactPayload(t *asynq.Task) (OptimiseArtifactPayload, error) {
	var p OptimiseArtifactPayload
	return p, parsePayload(t, &p)
}

func parsePayload(t *asynq.Task, dst any) error {
	if err := json.Unmarshal(t.Payload(), dst); err != nil {
		return fmt.Errorf("could not unmarshal %s payload: %w", t.Type(), err)
	}
	return nil
}
