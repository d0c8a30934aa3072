package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the request throttler's
// Requests Per Second and Burst Rate.
type Config struct {
	RPS   int
	Burst int
}

// requests is an http.RoundTripper that holds each request
// until the token bucket allows it through.
type requests struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper limiting outbound requests to
// rps with the given burst. logFn is resolved per request so the logger
// can be swapped after construction; a nil logger disables wait logging.
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if next == nil {
		return nil, errors.New("next round tripper must not be nil")
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	return &requests{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		cfg:     Config{RPS: rps, Burst: burst},
		next:    next,
		logFn:   logFn,
	}, nil
}

func (t *requests) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	logger := t.logFn()
	if logger != nil && t.limiter.Tokens() < 1 {
		start := time.Now()
		logger.Info("request throttled", "rate", t.cfg.RPS, "burst", t.cfg.Burst, "host", r.URL.Host)
		defer func() {
			logger.Info("request released", "waited", time.Since(start).Round(time.Millisecond).String(), "host", r.URL.Host)
		}()
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
