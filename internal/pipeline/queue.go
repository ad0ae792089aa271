package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// BatchProcessor is the part of Processor the queue drives.
type BatchProcessor interface {
	Process(ctx context.Context, files []entity.UploadedFile) ([]entity.Contract, error)
}

// Job is one file waiting to go through the pipeline.
type Job struct {
	File        entity.UploadedFile
	Source      string // where the file came from, e.g. a watched path
	SubmittedAt time.Time
}

// ResultFunc receives each finished job. err is set only when the file was
// rejected before processing; pipeline failures arrive as contract errors.
type ResultFunc func(job Job, c entity.Contract, err error)

// Queue processes jobs one file at a time on a fixed set of workers.
type Queue struct {
	proc     BatchProcessor
	onResult ResultFunc
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewQueue starts the workers immediately. onResult may be nil.
func NewQueue(proc BatchProcessor, onResult ResultFunc, logger *slog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if onResult == nil {
		onResult = func(Job, entity.Contract, error) {}
	}
	q := &Queue{
		proc:     proc,
		onResult: onResult,
		logger:   logger,
		workers:  2,
		timeout:  10 * time.Minute,
		ch:       make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	contracts, err := q.proc.Process(ctx, []entity.UploadedFile{job.File})
	if err != nil {
		q.logger.Warn("queue.job.rejected", "worker_id", workerID, "file", job.File.Name, "error", err)
		q.onResult(job, entity.Contract{}, err)
		return
	}
	c := contracts[0]
	q.logger.Info("queue.job.done", "worker_id", workerID, "file", job.File.Name,
		"failed", c.Failed(), "wait_ms", start.Sub(job.SubmittedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds())
	q.onResult(job, c, nil)
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.job.queued", "file", job.File.Name, "source", job.Source)
		return nil
	default:
	}
	q.logger.Warn("queue.full", "file", job.File.Name)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
		return ctx.Err()
	case <-done:
		q.logger.Info("queue.drained")
		return nil
	}
}
