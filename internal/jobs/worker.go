package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// ErrUnknownTask is returned when triggering a task that was never registered
var ErrUnknownTask = errors.New("unknown task")

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
	tasks         map[string]*task
	tasksMu       sync.RWMutex
}

// WorkerStats holds statistics about the worker.
// CompletedJobs counts every finished job; FailedJobs is the failing subset.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// TaskStatus describes a named scheduled task and its last run
type TaskStatus struct {
	Name      string     `json:"name"`
	Interval  string     `json:"interval"`
	Runs      int64      `json:"runs"`
	Failures  int64      `json:"failures"`
	LastRunAt *time.Time `json:"last_run_at"`
	LastError string     `json:"last_error,omitempty"`
	Duration  string     `json:"last_duration,omitempty"`
}

type task struct {
	name     string
	interval time.Duration
	job      Job
	status   TaskStatus
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		tasks:         make(map[string]*task),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("worker queue full, running job synchronously")
		if err := job(w.ctx); err != nil {
			logger.Error("job failed", "error", err)
		}
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.trackJobStart()
		defer w.trackJobEnd()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("async job panic", "panic", fmt.Sprint(r))
				w.trackJobFailure()
			}
		}()

		if err := job(w.ctx); err != nil {
			logger.Error("async job failed", "error", err)
			w.trackJobFailure()
		}
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	log := logger.With("worker", workerID)
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.trackJobStart()
			start := time.Now()
			if err := job(w.ctx); err != nil {
				log.Error("job failed", "error", err)
				w.trackJobFailure()
			} else {
				log.Debug("job completed", "duration", time.Since(start))
			}
			w.trackJobEnd()
		}
	}
}

// Register records a named task and schedules it every interval.
// With immediate set, the first run happens at startup instead of after one interval.
func (w *Worker) Register(name string, interval time.Duration, immediate bool, job Job) {
	t := &task{name: name, interval: interval, job: job}
	t.status = TaskStatus{Name: name, Interval: interval.String()}

	w.tasksMu.Lock()
	w.tasks[name] = t
	w.tasksMu.Unlock()

	run := func(ctx context.Context) error { return w.runTask(ctx, t) }
	if immediate {
		w.ScheduleEveryImmediate(interval, run)
	} else {
		w.ScheduleEvery(interval, run)
	}
}

// Trigger queues a registered task for an immediate run
func (w *Worker) Trigger(name string) error {
	w.tasksMu.RLock()
	t, ok := w.tasks[name]
	w.tasksMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	w.EnqueueAsync(func(ctx context.Context) error { return w.runTask(ctx, t) })
	return nil
}

// Tasks returns the registered tasks ordered by name
func (w *Worker) Tasks() []TaskStatus {
	w.tasksMu.RLock()
	defer w.tasksMu.RUnlock()
	out := make([]TaskStatus, 0, len(w.tasks))
	for _, t := range w.tasks {
		out = append(out, t.status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (w *Worker) runTask(ctx context.Context, t *task) error {
	start := time.Now()
	err := t.job(ctx)

	w.tasksMu.Lock()
	t.status.Runs++
	t.status.LastRunAt = &start
	t.status.Duration = time.Since(start).String()
	t.status.LastError = ""
	if err != nil {
		t.status.Failures++
		t.status.LastError = err.Error()
	}
	w.tasksMu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	logger.Info("task completed", "task", t.name, "duration", time.Since(start))
	return nil
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval (not at startup).
func (w *Worker) ScheduleEvery(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.tick(interval, job)
	}()
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals
func (w *Worker) ScheduleEveryImmediate(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runScheduledJob(job)
		w.tick(interval, job)
	}()
}

func (w *Worker) tick(interval time.Duration, job Job) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runScheduledJob(job)
		}
	}
}

func (w *Worker) runScheduledJob(job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled job panic", "panic", fmt.Sprint(r))
			w.trackJobFailure()
		}
	}()
	if err := job(w.ctx); err != nil {
		logger.Error("scheduled job failed", "error", err)
		w.trackJobFailure()
	}
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.cancel()
	close(w.queue)
	w.wg.Wait()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
