package downloader

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/binfetch/downloader/throttle"
	"github.com/adamwoolhether/binfetch/environ"
	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring a [Downloader] via [Build].
type Option func(*options) error
type options struct {
	transport      *http.Transport
	timeout        *time.Duration
	userAgent      string
	throttle       *throttle.Config
	maxRedirects   *int
	logger         *slog.Logger
	tracer         trace.Tracer
	checkMD5       *bool
	digest         DigestFunc
	env            func() environ.Snapshot
	envFiles       []string
	packageManager string
}

// WithTransport sets the base transport. It is cloned, and its Proxy
// field is replaced by the per-download proxy resolution.
func WithTransport(t *http.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithTimeout sets an overall timeout per request, body included.
// No timeout is applied unless set.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting of outgoing requests
// with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithMaxRedirects bounds the number of redirects followed per download.
// Zero refuses any redirect.
func WithMaxRedirects(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.New("max redirects must not be negative")
		}
		o.maxRedirects = &n
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Downloader].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracer injects the tracer used for download and verify spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithCheckMD5 explicitly enables or disables checksum verification,
// taking precedence over the MONGOMS_MD5_CHECK environment variable.
func WithCheckMD5(enabled bool) Option {
	return func(o *options) error {
		o.checkMD5 = &enabled
		return nil
	}
}

// WithDigestFunc replaces the MD5 digest computed over local files.
func WithDigestFunc(fn DigestFunc) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("digest func must not be nil")
		}
		o.digest = fn
		return nil
	}
}

// WithEnvironment replaces the source of environment snapshots. fn is
// called once in Build and once per download.
func WithEnvironment(fn func() environ.Snapshot) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("environment func must not be nil")
		}
		o.env = fn
		return nil
	}
}

// WithEnvFiles loads dotenv files once at build time. Their values sit
// below the environment snapshot, which always wins.
func WithEnvFiles(files ...string) Option {
	return func(o *options) error {
		if len(files) == 0 {
			return errors.New("at least one env file is required")
		}
		o.envFiles = append(o.envFiles, files...)
		return nil
	}
}

// WithPackageManager sets the prefix of the package-manager scoped
// proxy variables, "yarn" by default.
func WithPackageManager(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.New("package manager must not be empty")
		}
		o.packageManager = name
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
