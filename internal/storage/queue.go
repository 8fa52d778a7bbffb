package storage

import "sync"

// Queue serializes operations against a single shared resource. Every call
// runs on one worker goroutine in submission order; each caller gets its own
// result, so one failed operation never poisons the ones queued behind it.
type Queue struct {
	jobs chan queueJob
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

type queueJob struct {
	fn     func() error
	result chan error
}

// NewQueue starts the worker goroutine.
func NewQueue() *Queue {
	q := &Queue{
		jobs: make(chan queueJob),
		quit: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.drain()
	return q
}

func (q *Queue) drain() {
	defer q.wg.Done()
	for {
		select {
		case job := <-q.jobs:
			job.result <- job.fn()
		case <-q.quit:
			return
		}
	}
}

// Do runs fn on the queue worker and waits for its result. Returns
// ErrQueueClosed if the queue has been shut down.
func (q *Queue) Do(fn func() error) error {
	job := queueJob{fn: fn, result: make(chan error, 1)}
	select {
	case q.jobs <- job:
		return <-job.result
	case <-q.quit:
		return ErrQueueClosed
	}
}

// Close stops the worker. In-flight operations finish; later Do calls fail.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.quit) })
	q.wg.Wait()
}
