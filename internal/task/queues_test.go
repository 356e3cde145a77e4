package task

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestRetryDelay_Exponential(t *testing.T) {
	tk := asynq.NewTask(TypeTranscodeArtifact, nil)
	base := queueConfigs[QueueIngestionTranscode].BaseDelay

	cases := []struct {
		n    int
		want time.Duration
	}{
		{1, base},
		{2, 2 * base},
		{3, 4 * base},
		{4, 8 * base},
	}
	for _, c := range cases {
		if got := RetryDelay(c.n, nil, tk); got != c.want {
			t.Errorf("retry %d: got %v, want %v", c.n, got, c.want)
		}
	}
}

func TestRetryDelay_Fixed(t *testing.T) {
	tk := asynq.NewTask(TypePurgeOriginals, nil)
	base := queueConfigs[QueueLifecycle].BaseDelay

	for n := 1; n <= 3; n++ {
		if got := RetryDelay(n, nil, tk); got != base {
			t.Errorf("retry %d: got %v, want fixed %v", n, got, base)
		}
	}
}

func TestConfigForType_SubJobSharesQueue(t *testing.T) {
	transcode := ConfigForType(TypeTranscodeArtifact)
	extract := ConfigForType(TypeExtractMetadata)
	if transcode.Name != QueueIngestionTranscode || extract.Name != QueueIngestionTranscode {
		t.Fatalf("transcode and extract-metadata should share %q, got %q and %q",
			QueueIngestionTranscode, transcode.Name, extract.Name)
	}
}

func TestConfigForType_UnknownFallsBackToLifecycle(t *testing.T) {
	if got := ConfigForType("bogus:type"); got.Name != QueueLifecycle {
		t.Fatalf("got %q, want %q", got.Name, QueueLifecycle)
	}
}

func TestPriorities_CoversEveryQueue(t *testing.T) {
	p := Priorities()
	for _, q := range []string{QueueIngestionTranscode, QueueObjectUpload, QueueDownstreamAnalysis, QueueLifecycle} {
		if p[q] <= 0 {
			t.Errorf("queue %q has no weight", q)
		}
	}
}
