package download

import (
	"context"
	"errors"
	"sync"
)

// WorkFunc is the signature for async work.
type WorkFunc func(ctx context.Context) error

// Adder matches the downloader.DownloadAsync func signature, so a
// Result can queue more downloads on its own batch.
type Adder func(ctx context.Context, rawURL, destPath string, optFns ...Option) (*Result, error)

// Queue runs a batch of async downloads. A destination path may only
// be claimed by one in-flight download of the batch at a time.
type Queue struct {
	wg  sync.WaitGroup
	sem chan struct{}

	mu       sync.Mutex
	closed   bool
	inflight map[string]context.CancelFunc
	errs     []error
}

// NewQueue creates a Queue with the given concurrency limit.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{inflight: make(map[string]context.CancelFunc)}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until every download in the queue completes and returns
// their errors joined.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown refuses new work and cancels the downloads in flight.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for _, cancel := range q.inflight {
		cancel()
	}
}

// Start runs fn in its own goroutine and returns a Result tracking the
// download to destPath.
func (q *Queue) Start(ctx context.Context, destPath string, fn WorkFunc, adder Adder) *Result {
	ctx, cancel := context.WithCancel(ctx)
	if err := q.claim(destPath, cancel); err != nil {
		cancel()
		return failedResult(q, adder, destPath, err)
	}

	r := &Result{
		adder:  adder,
		path:   destPath,
		done:   make(chan struct{}),
		cancel: cancel,
		group:  q,
	}

	q.wg.Add(1)
	go func() {
		defer func() {
			q.release(destPath)
			cancel()
			close(r.done)
			q.wg.Done()
		}()

		if r.err = q.run(ctx, fn); r.err != nil {
			q.recordErr(r.err)
		}
	}()

	return r
}

// run waits for a slot, then executes fn unless the queue was shut
// down in the meantime.
func (q *Queue) run(ctx context.Context, fn WorkFunc) error {
	if q.sem != nil {
		select {
		case q.sem <- struct{}{}:
			defer func() { <-q.sem }()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrGroupShutdown
	}

	return fn(ctx)
}

func (q *Queue) claim(destPath string, cancel context.CancelFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrGroupShutdown
	}
	if _, ok := q.inflight[destPath]; ok {
		return &Error{Err: ErrDuplicateDestination, Detail: destPath}
	}

	q.inflight[destPath] = cancel
	return nil
}

func (q *Queue) release(destPath string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.inflight, destPath)
}

func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.errs = append(q.errs, err)
}
