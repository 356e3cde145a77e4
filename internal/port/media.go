package port

import "context"

// AudioEncodePolicy captures the fixed output parameters of an audio encode.
// These are pipeline policy constants, never caller-configurable.
type AudioEncodePolicy struct {
	Codec        string
	BitrateKbps  int
	Channels     int
	SampleRateHz int
}

// AudioExtractor produces an audio-only stream from a media file on disk.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, srcPath, destPath string, policy AudioEncodePolicy) error
}

// ProbeResult holds stream facts read from a stored media file.
type ProbeResult struct {
	DurationSeconds float64
	BitrateKbps     int
	Codec           string
	Format          string
	Width           int
	Height          int
}

// MediaProber reads duration/bitrate/codec facts from a media file on disk.
type MediaProber interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}
