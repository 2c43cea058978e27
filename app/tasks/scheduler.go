package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler periodically enqueues complete pipeline runs. A single
// worker drains the queue: runs are sequential by design, so there is
// never more than one ingestion run in flight.
type Scheduler struct {
	runner    PipelineRunner
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(runner PipelineRunner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:    runner,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 10),
	}
}

func (s *Scheduler) Start() {
	if s.interval <= 0 {
		slog.Info("Scheduler disabled (interval not set)")
		return
	}

	slog.Info("Starting scheduler", "interval", s.interval)

	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueue(NewRunPipelineTask(s.runner))
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) enqueue(task TaskInterface) {
	select {
	case s.taskQueue <- task:
		slog.Debug("Task enqueued", "task", task.GetID(), "type", task.GetType())
	default:
		// A full queue means a run is already pending; dropping the
		// tick is harmless because the next tick enqueues again.
		slog.Warn("Task queue full, dropping task", "task", task.GetID())
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case task := <-s.taskQueue:
			s.execute(task)
		}
	}
}

func (s *Scheduler) execute(task TaskInterface) {
	task.Start()
	slog.Info("Executing task", "task", task.GetID(), "type", task.GetType())

	err := task.Execute(s.ctx)
	if err == nil {
		slog.Info("Task completed", "task", task.GetID(), "duration", task.GetDuration())
		return
	}

	slog.Error("Task failed", "task", task.GetID(), "error", err, "retry", task.GetRetryCount())

	if task.CanRetry() {
		task.IncrementRetryCount()
		s.enqueue(task)
	}
}
