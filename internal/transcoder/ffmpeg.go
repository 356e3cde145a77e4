package transcoder

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// FFmpeg shells out to ffmpeg/ffprobe binaries. A non-zero exit is
// reported with the tool's stderr attached.
type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
}

// compile-time checks
var (
	_ port.AudioExtractor = (*FFmpeg)(nil)
	_ port.MediaProber    = (*FFmpeg)(nil)
)

func NewFFmpeg(ffmpegBin, ffprobeBin string) *FFmpeg {
	return &FFmpeg{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// ExtractAudio produces an audio-only stream from srcPath at destPath.
// Cancelling ctx kills the child process.
func (f *FFmpeg) ExtractAudio(ctx context.Context, srcPath, destPath string, policy port.AudioEncodePolicy) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", srcPath,
		"-vn",
		"-sn",
		"-dn",
		"-c:a", policy.Codec,
		"-b:a", fmt.Sprintf("%dk", policy.BitrateKbps),
		"-ac", strconv.Itoa(policy.Channels),
		"-ar", strconv.Itoa(policy.SampleRateHz),
		destPath,
	}
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ffprobe JSON output, trimmed to the fields we read.
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// Probe reads duration/bitrate/codec facts from a media file.
func (f *FFmpeg) Probe(ctx context.Context, path string) (port.ProbeResult, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	}
	cmd := exec.CommandContext(ctx, f.ffprobeBin, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = ": " + strings.TrimSpace(string(exitErr.Stderr))
		}
		return port.ProbeResult{}, fmt.Errorf("ffprobe: %w%s", err, detail)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(data []byte) (port.ProbeResult, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return port.ProbeResult{}, fmt.Errorf("ffprobe: unexpected output: %w", err)
	}

	var res port.ProbeResult
	res.Format = out.Format.FormatName
	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			res.DurationSeconds = d
		}
	}
	if out.Format.BitRate != "" {
		if b, err := strconv.Atoi(out.Format.BitRate); err == nil {
			res.BitrateKbps = b / 1000
		}
	}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "audio":
			if res.Codec == "" {
				res.Codec = s.CodecName
			}
		case "video":
			res.Width = s.Width
			res.Height = s.Height
		}
	}
	return res, nil
}
