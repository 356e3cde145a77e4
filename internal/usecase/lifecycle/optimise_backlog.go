package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// BacklogOptimiser queues optimisation work for audio that never got it.
type BacklogOptimiser interface {
	OptimiseBacklog(ctx context.Context) (SweepReport, error)
}

type backlogOptimiserSrv struct {
	repo   port.ArtifactRepository
	tasks  port.TaskDispatcher
	maxAge time.Duration
}

// NewBacklogOptimiser constructs a BacklogOptimiser implementation.
func NewBacklogOptimiser(repo port.ArtifactRepository, tasks port.TaskDispatcher, maxAge time.Duration) BacklogOptimiser {
	return &backlogOptimiserSrv{repo: repo, tasks: tasks, maxAge: maxAge}
}

// OptimiseBacklog looks for processed audio older than the horizon that is
// not yet optimised and enqueues an optimise job for each.
func (s *backlogOptimiserSrv) OptimiseBacklog(ctx context.Context) (SweepReport, error) {
	cutoff := time.Now().Add(-s.maxAge)
	ids, err := s.repo.ListUnoptimisedAudioBefore(ctx, cutoff)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed listing unoptimised audio: %w", err)
	}
	if len(ids) == 0 {
		logger.Info(ctx, "no audio artifacts to optimise")
		return SweepReport{}, nil
	}

	var report SweepReport
	for _, id := range ids {
		if err := s.tasks.EnqueueOptimiseArtifact(ctx, id); err != nil {
			logger.Warnf(ctx, "failed to enqueue optimise task for artifact #%s: %v", id, err)
			report.addError(id.String(), err)
			continue
		}
		logger.Infof(ctx, "enqueued optimisation for artifact #%s", id)
		report.Processed++
	}
	return report, nil
}
