package task

import (
	"log"

	"github.com/hibiken/asynq"
)

// NewServer builds the worker server: weighted per-queue concurrency,
// per-queue backoff via RetryDelay, terminal-failure reporting via events.
func NewServer(addr, password string, concurrency int, ev *Events) *asynq.Server {
	return asynq.NewServer(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
	}, asynq.Config{
		Concurrency:    concurrency,
		Queues:         Priorities(),
		RetryDelayFunc: RetryDelay,
		ErrorHandler:   ev.ErrorHandler(),
	})
}

// SweepSchedule binds a lifecycle sweep task to a cron spec.
type SweepSchedule struct {
	Cron     string
	TaskType string
}

// NewScheduler builds the periodic scheduler driving the lifecycle sweeps.
func NewScheduler(addr, password string, schedules []SweepSchedule) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
	}, nil)

	for _, s := range schedules {
		entryID, err := scheduler.Register(s.Cron, NewSweepTask(s.TaskType), enqueueOptions(s.TaskType)...)
		if err != nil {
			return nil, err
		}
		log.Printf("registered sweep %q on cron %q (entry %s)", s.TaskType, s.Cron, entryID)
	}
	return scheduler, nil
}
