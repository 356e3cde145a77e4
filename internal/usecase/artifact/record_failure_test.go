package artifact

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lessonloop/ingest-ms-go/internal/model"
)

func TestRecordFailure_Success(t *testing.T) {
	a := audioArtifact()
	a.Status = model.StatusProcessing
	repo := &mockRepo{artifactRecord: a}
	cache := &mockCache{}
	svc := NewFailureRecorder(repo, cache)

	if err := svc.RecordFailure(context.Background(), a.ID, "transcode failed: exit status 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.transitionedTo) != 1 || repo.transitionedTo[0] != model.StatusFailed {
		t.Errorf("expected transition to failed, got %v", repo.transitionedTo)
	}
	if repo.failureMessage == nil || *repo.failureMessage != "transcode failed: exit status 1" {
		t.Errorf("expected the failure message to be recorded, got %v", repo.failureMessage)
	}
	if !cache.deleteCalled {
		t.Error("expected cache delete to be called")
	}
}

func TestRecordFailure_LaterStatusKept(t *testing.T) {
	repo := &mockRepo{transitionErr: fmt.Errorf("%w: processed -> failed", model.ErrInvalidTransition)}
	svc := NewFailureRecorder(repo, &mockCache{})

	if err := svc.RecordFailure(context.Background(), mustUUID("11111111-2222-3333-4444-555555555555"), "late failure"); err != nil {
		t.Fatalf("expected invalid transitions to be swallowed, got %v", err)
	}
}

func TestRecordFailure_TransitionError(t *testing.T) {
	repo := &mockRepo{transitionErr: errors.New("db fail")}
	svc := NewFailureRecorder(repo, &mockCache{})

	if err := svc.RecordFailure(context.Background(), mustUUID("11111111-2222-3333-4444-555555555555"), "boom"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
