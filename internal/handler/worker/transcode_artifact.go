package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/lessonloop/ingest-ms-go/internal/task"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// TranscodeArtifactHandler handles a transcode task. It converts the incoming
// payload to the input expected by the artifact.Transcoder service and
// delegates the call. Retry accounting belongs to the queue: the handler only
// decides whether an error is worth retrying and, on the final attempt,
// records the terminal failure on the artifact.
func TranscodeArtifactHandler(ctx context.Context, p task.TranscodeArtifactPayload, svc artifact.Transcoder, rec artifact.FailureRecorder) error {
	id, err := uuid.Parse(p.ArtifactID)
	if err != nil {
		log.Printf("❌  Invalid artifact ID %q: %v", p.ArtifactID, err)
		return fmt.Errorf("invalid artifact ID %q: %v: %w", p.ArtifactID, err, asynq.SkipRetry)
	}
	ownerID, err := uuid.Parse(p.OwnerID)
	if err != nil {
		log.Printf("❌  Invalid owner ID %q: %v", p.OwnerID, err)
		return fmt.Errorf("invalid owner ID %q: %v: %w", p.OwnerID, err, asynq.SkipRetry)
	}

	in := artifact.TranscodeArtifactInput{ID: id, OwnerID: ownerID}
	if err := svc.TranscodeArtifact(ctx, in); err != nil {
		log.Printf("❌  Failed to transcode artifact #%s: %v", id, err)
		return closeOut(ctx, rec, id, err)
	}

	log.Printf("✅  Successfully transcoded artifact #%s", id)
	return nil
}

// closeOut maps a use-case error to the queue's retry semantics. Validation
// and not-found errors never retry; anything else retries until the queue's
// budget runs out. Either way the last word is recorded on the artifact so
// operators see why it failed.
func closeOut(ctx context.Context, rec artifact.FailureRecorder, id uuid.UUID, err error) error {
	if errors.Is(err, artifact.ErrValidation) || errors.Is(err, artifact.ErrArtifactNotFound) {
		recordFailure(ctx, rec, id, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if finalAttempt(ctx) {
		recordFailure(ctx, rec, id, err)
	}
	return err
}

func recordFailure(ctx context.Context, rec artifact.FailureRecorder, id uuid.UUID, cause error) {
	if err := rec.RecordFailure(ctx, id, cause.Error()); err != nil {
		log.Printf("❌  Failed to record terminal failure for artifact #%s: %v", id, err)
	}
}

// finalAttempt reports whether this delivery is the task's last one.
func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return false
	}
	return retried >= maxRetry
}
