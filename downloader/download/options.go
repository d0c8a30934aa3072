package download

import (
	"errors"
	"hash"
	"os"

	"github.com/vbauerster/mpb/v5"
)

// Option defines optional settings for downloading files.
type Option func(*options) error

type options struct {
	checksum     *inlineDigest
	progress     bool
	bar          *barConfig
	rateLimit    int
	skipExisting bool
	batchSize    *int
	queue        *Queue
}

// WithChecksum enables inline checksum validation while streaming.
// h is a hash.Hash instance (e.g. md5.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &inlineDigest{hash: h, expected: expected}
		return nil
	}
}

// WithProgress enables periodic download progress logging via the
// logger supplied to Handle.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithProgressBar renders a terminal progress bar named name on p.
// The caller owns p and must call p.Wait once all downloads finished.
func WithProgressBar(p *mpb.Progress, name string) Option {
	return func(opts *options) error {
		if p == nil {
			return errors.New("progress container must not be nil")
		}

		opts.bar = &barConfig{progress: p, name: name}
		return nil
	}
}

// WithRateLimit caps the transfer rate at bytesPerSec.
func WithRateLimit(bytesPerSec int) Option {
	return func(opts *options) error {
		if bytesPerSec <= 0 {
			return errors.New("rate limit must be greater than zero")
		}

		opts.rateLimit = bytesPerSec
		return nil
	}
}

// WithSkipExisting causes Handle to return nil immediately when
// the destination file already exists, avoiding a redundant download.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithBatch runs an async download in a new [Queue] limited to
// maxConcurrent parallel downloads. If maxConcurrent <= 0, concurrency
// is unlimited.
func WithBatch(maxConcurrent int) Option {
	return func(opts *options) error {
		if opts.queue != nil {
			return ErrBatchConflict
		}

		opts.batchSize = &maxConcurrent
		return nil
	}
}

// withBatch attaches a download to an existing queue.
func withBatch(q *Queue) Option {
	return func(opts *options) error {
		if opts.batchSize != nil {
			return ErrBatchConflict
		}

		opts.queue = q
		return nil
	}
}

// QueueFor returns the queue an async download described by optFns
// belongs to: the one it is being added to, a new one sized by
// WithBatch, or a new unlimited one.
func QueueFor(optFns ...Option) (*Queue, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, err
		}
	}

	switch {
	case opts.queue != nil:
		return opts.queue, nil
	case opts.batchSize != nil:
		return NewQueue(*opts.batchSize), nil
	default:
		return NewQueue(0), nil
	}
}

// Existing reports whether optFns ask to skip downloads whose
// destination already exists, and destPath does exist.
func Existing(destPath string, optFns ...Option) (bool, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return false, err
		}
	}

	if !opts.skipExisting {
		return false, nil
	}

	_, err := os.Stat(destPath)
	return err == nil, nil
}
