package artifact

import (
	"fmt"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

const (
	MinFileSize = int64(1)
	MaxFileSize = int64(2) << 30 // 2 GiB
)

// DownloadURLTTL bounds how long a presigned artifact link stays valid.
const DownloadURLTTL = 1 * time.Hour

// Derived audio artifacts always come out in this shape. Policy constants,
// not caller-configurable.
var TranscodeAudioPolicy = port.AudioEncodePolicy{
	Codec:        "libmp3lame",
	BitrateKbps:  128,
	Channels:     2,
	SampleRateHz: 44100,
}

// OptimiseAudioPolicy is the smaller mono representation produced on demand.
var OptimiseAudioPolicy = port.AudioEncodePolicy{
	Codec:        "libmp3lame",
	BitrateKbps:  64,
	Channels:     1,
	SampleRateHz: 22050,
}

const (
	AudioMimeType  = "audio/mpeg"
	AudioObjectExt = ".mp3"
)

var mimeKinds = map[string]model.ArtifactKind{
	"video/mp4":       model.KindVideo,
	"video/quicktime": model.KindVideo,
	"video/webm":      model.KindVideo,
	"audio/mpeg":      model.KindAudio,
	"audio/mp4":       model.KindAudio,
	"audio/wav":       model.KindAudio,
	"image/jpeg":      model.KindImage,
	"image/png":       model.KindImage,
	"image/webp":      model.KindImage,
}

var mimeExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
	"audio/mpeg":      ".mp3",
	"audio/mp4":       ".m4a",
	"audio/wav":       ".wav",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// KindForMimeType classifies a declared MIME type into an artifact kind.
func KindForMimeType(mimeType string) (model.ArtifactKind, bool) {
	kind, ok := mimeKinds[mimeType]
	return kind, ok
}

func IsMimeTypeAllowed(mimeType string) bool {
	_, ok := mimeKinds[mimeType]
	return ok
}

func MimeTypeToExtension(mimeType string) (string, error) {
	ext, ok := mimeExtensions[mimeType]
	if !ok {
		return "", fmt.Errorf("no known extension for mime-type %q", mimeType)
	}
	return ext, nil
}
