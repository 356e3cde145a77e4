package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

type EventKind string

const (
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
	EventStalled   EventKind = "stalled"
)

// Event describes the outcome (or overrun) of one job delivery. Failed
// events are only emitted for terminal failures: the retry budget is
// exhausted or the handler returned asynq.SkipRetry.
type Event struct {
	Kind     EventKind
	TaskType string
	Queue    string
	TaskID   string
	Attempt  int
	Elapsed  time.Duration
	Err      string
}

// Events fans deliveries' diagnostics out to subscribers. Publishing never
// blocks: a slow subscriber misses events rather than stalling workers.
type Events struct {
	mu   sync.RWMutex
	subs []chan Event
}

func NewEvents() *Events {
	return &Events{}
}

// Subscribe returns a channel receiving future events.
func (e *Events) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Events) publish(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Middleware wraps every handler to time it, raise a stalled event when it
// exceeds its queue's expected runtime, and report completion.
func (e *Events) Middleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			cfg := ConfigForType(t.Type())
			start := time.Now()

			watchdog := time.AfterFunc(cfg.ExpectedRuntime, func() {
				e.publish(Event{
					Kind:     EventStalled,
					TaskType: t.Type(),
					Queue:    cfg.Name,
					TaskID:   taskID(ctx),
					Attempt:  attempt(ctx),
					Elapsed:  cfg.ExpectedRuntime,
				})
			})
			defer watchdog.Stop()

			err := next.ProcessTask(ctx, t)
			if err == nil {
				e.publish(Event{
					Kind:     EventCompleted,
					TaskType: t.Type(),
					Queue:    cfg.Name,
					TaskID:   taskID(ctx),
					Attempt:  attempt(ctx),
					Elapsed:  time.Since(start),
				})
			}
			return err
		})
	}
}

// ErrorHandler reports deliveries that are terminal: either the retry
// budget is spent, or the handler refused redelivery with asynq.SkipRetry.
func (e *Events) ErrorHandler() asynq.ErrorHandlerFunc {
	return func(ctx context.Context, t *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if !terminal(retried, maxRetry, err) {
			return // the orchestrator will redeliver
		}
		cfg := ConfigForType(t.Type())
		e.publish(Event{
			Kind:     EventFailed,
			TaskType: t.Type(),
			Queue:    cfg.Name,
			TaskID:   taskID(ctx),
			Attempt:  retried + 1,
			Err:      err.Error(),
		})
	}
}

// terminal reports whether a failed delivery will never be redelivered:
// its retry budget is spent, or the handler returned asynq.SkipRetry.
func terminal(retried, maxRetry int, err error) bool {
	return retried >= maxRetry || errors.Is(err, asynq.SkipRetry)
}

func taskID(ctx context.Context) string {
	id, _ := asynq.GetTaskID(ctx)
	return id
}

func attempt(ctx context.Context) int {
	n, _ := asynq.GetRetryCount(ctx)
	return n + 1
}
