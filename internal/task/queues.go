package task

import (
	"time"

	"github.com/hibiken/asynq"
)

// Named queues. Each one carries its own retry budget and backoff policy.
const (
	QueueIngestionTranscode = "ingestion-transcode"
	QueueObjectUpload       = "object-upload"
	QueueDownstreamAnalysis = "downstream-analysis"
	QueueLifecycle          = "lifecycle"
)

type BackoffKind string

const (
	BackoffFixed       BackoffKind = "fixed"
	BackoffExponential BackoffKind = "exponential"
)

// QueueConfig describes one named queue.
type QueueConfig struct {
	Name      string
	Priority  int
	MaxRetry  int
	Backoff   BackoffKind
	BaseDelay time.Duration
	// Retention keeps completed/failed tasks inspectable for this long.
	Retention time.Duration
	// ExpectedRuntime drives the stalled-job watchdog and the hard timeout.
	ExpectedRuntime time.Duration
}

var queueConfigs = map[string]QueueConfig{
	QueueIngestionTranscode: {
		Name:            QueueIngestionTranscode,
		Priority:        4,
		MaxRetry:        5,
		Backoff:         BackoffExponential,
		BaseDelay:       30 * time.Second,
		Retention:       24 * time.Hour,
		ExpectedRuntime: 15 * time.Minute,
	},
	QueueObjectUpload: {
		Name:            QueueObjectUpload,
		Priority:        4,
		MaxRetry:        5,
		Backoff:         BackoffExponential,
		BaseDelay:       10 * time.Second,
		Retention:       24 * time.Hour,
		ExpectedRuntime: 10 * time.Minute,
	},
	QueueDownstreamAnalysis: {
		Name:            QueueDownstreamAnalysis,
		Priority:        2,
		MaxRetry:        10,
		Backoff:         BackoffExponential,
		BaseDelay:       time.Minute,
		Retention:       24 * time.Hour,
		ExpectedRuntime: 30 * time.Minute,
	},
	QueueLifecycle: {
		Name:            QueueLifecycle,
		Priority:        1,
		MaxRetry:        3,
		Backoff:         BackoffFixed,
		BaseDelay:       5 * time.Minute,
		ExpectedRuntime: 30 * time.Minute,
	},
}

// queueForType maps every task type onto its queue. Sub-jobs share their
// parent queue and are told apart by task type alone.
var queueForType = map[string]string{
	TypeTranscodeArtifact: QueueIngestionTranscode,
	TypeExtractMetadata:   QueueIngestionTranscode,
	TypeUploadObject:      QueueObjectUpload,
	TypeAnalyseArtifact:   QueueDownstreamAnalysis,
	TypeOptimiseArtifact:  QueueLifecycle,
	TypePurgeOriginals:    QueueLifecycle,
	TypeArchiveCold:       QueueLifecycle,
	TypeReapTemp:          QueueLifecycle,
	TypeOptimiseBacklog:   QueueLifecycle,
}

// ConfigForType resolves the queue configuration owning a task type.
func ConfigForType(taskType string) QueueConfig {
	if q, ok := queueForType[taskType]; ok {
		return queueConfigs[q]
	}
	// unknown types land on the lifecycle queue rather than being dropped
	return queueConfigs[QueueLifecycle]
}

// Priorities returns the queue→weight map handed to the worker server.
func Priorities() map[string]int {
	out := make(map[string]int, len(queueConfigs))
	for name, cfg := range queueConfigs {
		out[name] = cfg.Priority
	}
	return out
}

// RetryDelay computes the redelivery delay for the n-th retry of a task
// from the backoff policy of its queue.
func RetryDelay(n int, _ error, t *asynq.Task) time.Duration {
	cfg := ConfigForType(t.Type())
	if cfg.Backoff == BackoffFixed {
		return cfg.BaseDelay
	}
	d := cfg.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
	}
	return d
}

func enqueueOptions(taskType string) []asynq.Option {
	cfg := ConfigForType(taskType)
	opts := []asynq.Option{
		asynq.Queue(cfg.Name),
		asynq.MaxRetry(cfg.MaxRetry),
		asynq.Timeout(cfg.ExpectedRuntime),
	}
	if cfg.Retention > 0 {
		opts = append(opts, asynq.Retention(cfg.Retention))
	}
	return opts
}
