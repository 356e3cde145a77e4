package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestEvents_MiddlewareEmitsCompleted(t *testing.T) {
	ev := NewEvents()
	ch := ev.Subscribe()

	h := ev.Middleware()(asynq.HandlerFunc(func(ctx context.Context, tk *asynq.Task) error {
		return nil
	}))
	if err := h.ProcessTask(context.Background(), asynq.NewTask(TypeUploadObject, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case got := <-ch:
		if got.Kind != EventCompleted {
			t.Fatalf("got kind %q, want %q", got.Kind, EventCompleted)
		}
		if got.Queue != QueueObjectUpload || got.TaskType != TypeUploadObject {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestEvents_MiddlewareDoesNotEmitCompletedOnError(t *testing.T) {
	ev := NewEvents()
	ch := ev.Subscribe()

	h := ev.Middleware()(asynq.HandlerFunc(func(ctx context.Context, tk *asynq.Task) error {
		return errors.New("boom")
	}))
	if err := h.ProcessTask(context.Background(), asynq.NewTask(TypeUploadObject, nil)); err == nil {
		t.Fatal("expected error")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected event: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEvents_ErrorHandlerEmitsFailedOnSkipRetry(t *testing.T) {
	ev := NewEvents()
	ch := ev.Subscribe()

	err := fmt.Errorf("rejecting malformed payload: %w", asynq.SkipRetry)
	ev.ErrorHandler()(context.Background(), asynq.NewTask(TypeTranscodeArtifact, nil), err)

	select {
	case got := <-ch:
		if got.Kind != EventFailed {
			t.Fatalf("got kind %q, want %q", got.Kind, EventFailed)
		}
		if got.TaskType != TypeTranscodeArtifact || got.Err != err.Error() {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestTerminal(t *testing.T) {
	cases := []struct {
		name     string
		retried  int
		maxRetry int
		err      error
		want     bool
	}{
		{"retries left", 0, 3, errors.New("boom"), false},
		{"budget spent", 3, 3, errors.New("boom"), true},
		{"skip retry with retries left", 0, 3, fmt.Errorf("bad payload: %w", asynq.SkipRetry), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := terminal(tc.retried, tc.maxRetry, tc.err); got != tc.want {
				t.Errorf("terminal(%d, %d, %v) = %v, want %v", tc.retried, tc.maxRetry, tc.err, got, tc.want)
			}
		})
	}
}

func TestEvents_PublishNeverBlocks(t *testing.T) {
	ev := NewEvents()
	ev.Subscribe() // never drained

	for i := 0; i < 200; i++ {
		ev.publish(Event{Kind: EventCompleted})
	}
	// reaching here is the assertion
}
