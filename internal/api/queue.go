package api

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// RequestQueue runs tasks one at a time. The keyword library and its browser
// registry are only touched from the queue goroutine.
type RequestQueue struct {
	tasks     chan *RequestTask
	mu        sync.RWMutex
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processor TaskProcessor
	processed atomic.Int64
}

// TaskProcessor defines the interface for processing tasks
type TaskProcessor interface {
	ProcessTask(ctx context.Context, task *RequestTask) *TaskResponse
}

// NewRequestQueue creates a queue holding up to size waiting tasks.
func NewRequestQueue(processor TaskProcessor, size int) *RequestQueue {
	if size <= 0 {
		size = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RequestQueue{
		tasks:     make(chan *RequestTask, size),
		ctx:       ctx,
		cancel:    cancel,
		processor: processor,
	}
}

// Start begins processing requests from the queue
func (q *RequestQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return fmt.Errorf("queue is already running")
	}

	q.running = true
	q.wg.Add(1)

	go q.processLoop()
	log.Debug("Request queue started")
	return nil
}

// Stop stops the request queue and waits for current task to complete
func (q *RequestQueue) Stop() error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue is not running")
	}
	q.running = false
	q.cancel()
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	log.Debug("Request queue stopped")
	return nil
}

// AddTask adds a new task to the queue
func (q *RequestQueue) AddTask(task *RequestTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return fmt.Errorf("queue is not running")
	}

	select {
	case q.tasks <- task:
		log.Debugf("Task %s (%s) added to queue", task.ID, task.Kind)
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
		return fmt.Errorf("queue is full")
	}
}

// Submit queues task and waits for its response. ctx bounds both the wait
// and the task itself.
func (q *RequestQueue) Submit(ctx context.Context, task *RequestTask) (*TaskResponse, error) {
	task.ctx = ctx
	if task.Response == nil {
		task.Response = make(chan *TaskResponse, 1)
	}
	if err := q.AddTask(task); err != nil {
		return nil, err
	}
	select {
	case response := <-task.Response:
		return response, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// processLoop is the main processing loop that handles tasks sequentially
func (q *RequestQueue) processLoop() {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				log.Debug("Task channel closed, stopping process loop")
				return
			}
			q.process(task)

		case <-q.ctx.Done():
			log.Debug("Context cancelled, stopping process loop")
			return
		}
	}
}

func (q *RequestQueue) process(task *RequestTask) {
	parent := task.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	stop := context.AfterFunc(q.ctx, cancel)
	defer stop()

	log.Debugf("Processing task %s", task.ID)
	startTime := time.Now()
	response := q.processor.ProcessTask(ctx, task)
	q.processed.Add(1)
	log.Debugf("Task %s completed in %v", task.ID, time.Since(startTime))

	select {
	case task.Response <- response:
	case <-q.ctx.Done():
		log.Debugf("Context cancelled while sending response for task %s", task.ID)
	case <-time.After(30 * time.Second):
		log.Debugf("Timeout sending response for task %s", task.ID)
	}
}

// GetQueueLength returns the current number of tasks in the queue
func (q *RequestQueue) GetQueueLength() int {
	return len(q.tasks)
}

// Processed returns the number of tasks processed so far.
func (q *RequestQueue) Processed() int64 {
	return q.processed.Load()
}

// IsRunning returns whether the queue is currently running
func (q *RequestQueue) IsRunning() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.running
}
