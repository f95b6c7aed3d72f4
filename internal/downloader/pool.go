package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
)

// Job is one link of a batch
type Job struct {
	Index int
	Link  string
}

// Result pairs a job with the outcome of processing it
type Result struct {
	Job      Job
	Result   models.DownloadResult
	WorkerID int
}

// LinkProcessor runs the full download pipeline for one link. It must
// always return a result, including when ctx is cancelled.
type LinkProcessor interface {
	ProcessLink(ctx context.Context, link string) models.DownloadResult
}

// WorkerPool processes links on a fixed number of goroutines
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	processor   LinkProcessor
	logger      logger.Logger
	stopOnce    sync.Once
}

// NewWorkerPool creates a pool bound to ctx. Cancelling ctx makes the
// processor fail remaining links quickly; it does not drop them.
func NewWorkerPool(ctx context.Context, numWorkers int, processor LinkProcessor, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		processor:   processor,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for queued jobs to finish and closes Results
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.jobQueue)
		wp.wg.Wait()
		wp.cancel()
		close(wp.resultQueue)
		wp.logger.Debug("Worker pool stopped")
	})
}

// Submit queues a job. It fails once the pool's context is done.
func (wp *WorkerPool) Submit(job Job) error {
	if err := wp.ctx.Err(); err != nil {
		return fmt.Errorf("worker pool is shutting down: %w", err)
	}
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel; it is closed by Stop
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		start := time.Now()
		res := wp.processor.ProcessLink(wp.ctx, job.Link)

		wp.logger.DebugWithFields("Worker finished link", map[string]interface{}{
			"worker_id": id,
			"index":     job.Index,
			"outcome":   string(res.Outcome),
			"duration":  time.Since(start),
		})

		wp.resultQueue <- Result{Job: job, Result: res, WorkerID: id}
	}
}

// Run processes every link and returns the results in input order. onResult,
// when not nil, is called as each link finishes, in completion order.
func Run(ctx context.Context, numWorkers int, links []string, processor LinkProcessor, log logger.Logger, onResult func(index int, res models.DownloadResult)) []models.DownloadResult {
	wp := NewWorkerPool(ctx, numWorkers, processor, log)
	wp.Start()

	results := make([]models.DownloadResult, len(links))
	var rejected []Job

	go func() {
		defer wp.Stop()
		for i, link := range links {
			job := Job{Index: i, Link: link}
			if err := wp.Submit(job); err != nil {
				rejected = append(rejected, job)
			}
		}
	}()

	for r := range wp.Results() {
		results[r.Job.Index] = r.Result
		if onResult != nil {
			onResult(r.Job.Index, r.Result)
		}
	}

	// Links that never reached a worker still get a result; the processor
	// fails them immediately on the cancelled context.
	for _, job := range rejected {
		res := processor.ProcessLink(wp.ctx, job.Link)
		results[job.Index] = res
		if onResult != nil {
			onResult(job.Index, res)
		}
	}
	return results
}

// GetActiveWorkers returns the number of workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
