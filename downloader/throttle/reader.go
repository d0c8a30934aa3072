package throttle

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// reader is an io.Reader spending one token per byte read.
type reader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
	burst   int
}

// NewReader wraps r so that at most bytesPerSec bytes are returned per
// second. Reads are capped at one second worth of data.
func NewReader(ctx context.Context, r io.Reader, bytesPerSec int) (io.Reader, error) {
	if bytesPerSec <= 0 {
		return nil, fmt.Errorf("bytesPerSec[%d] %w", bytesPerSec, ErrMustNotBeZero)
	}

	return &reader{
		ctx:     ctx,
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
		burst:   bytesPerSec,
	}, nil
}

func (t *reader) Read(p []byte) (int, error) {
	if len(p) > t.burst {
		p = p[:t.burst]
	}

	n, err := t.r.Read(p)
	if n <= 0 {
		return n, err
	}

	if werr := t.limiter.WaitN(t.ctx, n); werr != nil {
		return n, fmt.Errorf("%w: %w", ErrWaitingFailed, werr)
	}

	return n, err
}
