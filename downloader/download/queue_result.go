package download

import (
	"context"
	"slices"
)

// Result tracks one async download of a batch.
type Result struct {
	adder  Adder
	path   string
	done   chan struct{}
	err    error
	cancel context.CancelFunc
	group  *Queue
}

// failedResult is a completed Result for a download that never started.
// The error is recorded on q so that Wait reports it.
func failedResult(q *Queue, adder Adder, destPath string, err error) *Result {
	done := make(chan struct{})
	close(done)
	q.recordErr(err)

	return &Result{
		adder:  adder,
		path:   destPath,
		done:   done,
		err:    err,
		cancel: func() {},
		group:  q,
	}
}

// Add queues another download on the same batch through the injected
// Adder. WithBatch cannot be used here.
//
// Failures to start (invalid request, conflicting options, a destination
// already in flight) are recorded in the batch, so checking [Result.Wait]
// is enough.
func (r *Result) Add(ctx context.Context, rawURL, destPath string, optFns ...Option) *Result {
	result, err := r.adder(ctx, rawURL, destPath, slices.Concat([]Option{withBatch(r.group)}, optFns)...)
	if err != nil {
		return failedResult(r.group, r.adder, destPath, err)
	}
	return result
}

// Done returns a channel closed once this download completes.
func (r *Result) Done() <-chan struct{} { return r.done }

// Err blocks until this download completes and returns its error.
func (r *Result) Err() error {
	<-r.done
	return r.err
}

// Path blocks until this download completes and returns the local
// file path, or the download's error.
func (r *Result) Path() (string, error) {
	<-r.done
	if r.err != nil {
		return "", r.err
	}
	return r.path, nil
}

// Wait blocks until every download of the batch completes and returns
// their errors joined.
func (r *Result) Wait() error {
	return r.group.Wait()
}

// Cancel cancels this download's context.
func (r *Result) Cancel() {
	r.cancel()
}
