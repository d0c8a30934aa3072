package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/adamwoolhether/binfetch/downloader/download"
	"github.com/adamwoolhether/binfetch/downloader/throttle"
	"github.com/adamwoolhether/binfetch/environ"
	"github.com/adamwoolhether/binfetch/proxy"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// execFn represents a func to operate on a response.
type execFn func(response *http.Response) error

// Downloader streams artifacts to disk. Its configuration is fixed by
// [Build], so a Downloader is safe for concurrent use.
type Downloader struct {
	client   *http.Client
	base     *http.Transport
	logger   *slog.Logger
	tracer   trace.Tracer
	env      func() environ.Snapshot
	resolver proxy.Resolver
	checkMD5 bool
	digest   DigestFunc
}

// Build creates a Downloader from the given options.
func Build(optFns ...Option) (*Downloader, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying downloader option: %w", err)
		}
	}

	d := &Downloader{
		logger:   slog.Default(),
		tracer:   noop.NewTracerProvider().Tracer(""),
		env:      environ.Current,
		resolver: proxy.Resolver{PackageManager: opts.packageManager},
		digest:   download.MD5File,
	}

	if opts.logger != nil {
		d.logger = opts.logger
	}
	if opts.tracer != nil {
		d.tracer = opts.tracer
	}
	if opts.digest != nil {
		d.digest = opts.digest
	}
	if opts.env != nil {
		d.env = opts.env
	}

	if len(opts.envFiles) > 0 {
		fromFiles, err := environ.ReadFiles(opts.envFiles...)
		if err != nil {
			return nil, fmt.Errorf("loading env files: %w", err)
		}
		live := d.env
		d.env = func() environ.Snapshot {
			return environ.Merge(fromFiles, live())
		}
	}

	d.checkMD5 = resolveCheckMD5(opts.checkMD5, d.env())

	if opts.transport != nil {
		d.base = opts.transport.Clone()
	} else {
		d.base = http.DefaultTransport.(*http.Transport).Clone()
	}
	d.base.Proxy = proxyFromContext

	var transport http.RoundTripper = d.base
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return d.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}

	maxRedirects := defaultMaxRedirects
	if opts.maxRedirects != nil {
		maxRedirects = *opts.maxRedirects
	}

	d.client = &http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy(maxRedirects),
	}
	if opts.timeout != nil {
		d.client.Timeout = *opts.timeout
	}

	return d, nil
}

// CheckMD5 reports whether [Downloader.Verify] compares digests.
func (d *Downloader) CheckMD5() bool {
	return d.checkMD5
}

// CloseIdleConnections closes idle connections kept by the transport.
func (d *Downloader) CloseIdleConnections() {
	d.base.CloseIdleConnections()
}

// Download streams rawURL to destPath and returns destPath.
// Proxy settings are resolved from a fresh environment snapshot on
// every call. No partial file is left at destPath on failure.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string, optFns ...DownloadOption) (string, error) {
	dr, err := d.newRequest(rawURL, destPath)
	if err != nil {
		return "", err
	}

	skip, err := download.Existing(destPath, optFns...)
	if err != nil {
		return "", fmt.Errorf("applying download option: %w", err)
	}
	if skip {
		d.logger.Info("skipping existing file", "path", destPath)
		return destPath, nil
	}

	ctx, span := d.tracer.Start(ctx, "downloader.download")
	defer span.End()

	id := span.SpanContext().TraceID().String()
	if !span.SpanContext().TraceID().IsValid() {
		id = uuid.New().String()
	}

	target := redact(dr.URL)
	span.SetAttributes(
		attribute.String("download.id", id),
		attribute.String("url", target),
		attribute.Bool("proxy", dr.Proxy != nil),
	)
	logAttrs := []any{"id", id, "url", target, "dest", destPath}
	if dr.Proxy != nil {
		span.SetAttributes(
			attribute.String("proxy.url", dr.Proxy.Redacted()),
			attribute.String("proxy.source", dr.Proxy.Source),
		)
		logAttrs = append(logAttrs, "proxy", dr.Proxy.Redacted())
	}
	d.logger.Debug("download started", logAttrs...)

	if err := d.fetch(ctx, dr, span, optFns...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	d.logger.Debug("download finished", "id", id, "dest", destPath)

	return destPath, nil
}

// DownloadAsync starts Download in the background and returns a handle
// for it. Use [WithBatch] to bound concurrency and [DownloadResult.Add]
// to queue more downloads on the same batch.
func (d *Downloader) DownloadAsync(ctx context.Context, rawURL, destPath string, optFns ...DownloadOption) (*DownloadResult, error) {
	dr := DownloadRequest{URL: rawURL, DestinationPath: destPath}
	if err := dr.check(); err != nil {
		return nil, err
	}

	q, err := download.QueueFor(optFns...)
	if err != nil {
		return nil, fmt.Errorf("applying download option: %w", err)
	}

	work := func(ctx context.Context) error {
		_, err := d.Download(ctx, rawURL, destPath, optFns...)
		return err
	}

	return q.Start(ctx, destPath, work, d.DownloadAsync), nil
}

// newRequest validates the input and resolves the proxy for it.
func (d *Downloader) newRequest(rawURL, destPath string) (*DownloadRequest, error) {
	dr := DownloadRequest{URL: rawURL, DestinationPath: destPath}
	if err := dr.check(); err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	env := d.env()
	dr.Proxy = d.resolver.Resolve(env, u.Scheme)
	dr.noProxy = proxy.NoProxy(env)

	return &dr, nil
}

func (d *Downloader) fetch(ctx context.Context, dr *DownloadRequest, span trace.Span, optFns ...DownloadOption) error {
	req, err := http.NewRequestWithContext(withProxy(ctx, dr), http.MethodGet, dr.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: instantiating request: %w", ErrInvalidRequest, err)
	}

	dlFunc := func(resp *http.Response) error {
		if err := download.Handle(ctx, resp.Body, resp.ContentLength, dr.DestinationPath, d.logger, optFns...); err != nil {
			return fmt.Errorf("download: %w", err)
		}

		return nil
	}

	return d.exec(req, span, dlFunc)
}

// exec runs the request and injected function on success after validating the status code.
func (d *Downloader) exec(req *http.Request, span trace.Span, fn execFn) error {
	resp, err := d.client.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRedirectLoop):
			return fmt.Errorf("exec http do: %w", err)
		case errors.Is(err, context.Canceled):
			return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		default:
			return fmt.Errorf("%w: exec http do: %w", ErrNetwork, err)
		}
	}

	defer func() {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBodySize)); err != nil {
			d.logger.Debug("failed to discard unused body", "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			d.logger.Error("failed to close response body", "error", err)
		}
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        statusErr(resp.StatusCode),
		}
	}

	return fn(resp)
}

func statusErr(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	case http.StatusProxyAuthRequired:
		return errors.Join(ErrUnexpectedStatusCode, ErrProxyAuthFailure)
	default:
		return ErrUnexpectedStatusCode
	}
}

func redirectPolicy(limit int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return fmt.Errorf("%w: stopped after %d", ErrRedirectLoop, limit)
		}
		return nil
	}
}

// redact masks credentials embedded in a URL for logs and spans.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Redacted()
}

type proxyKey struct{}

// withProxy attaches the resolved proxy of dr to ctx. A request without
// one goes direct.
func withProxy(ctx context.Context, dr *DownloadRequest) context.Context {
	if dr.Proxy == nil {
		return ctx
	}
	return context.WithValue(ctx, proxyKey{}, dr.Proxy.ProxyFunc(dr.noProxy))
}

// proxyFromContext is the base transport's Proxy func.
func proxyFromContext(r *http.Request) (*url.URL, error) {
	fn, ok := r.Context().Value(proxyKey{}).(func(*http.Request) (*url.URL, error))
	if !ok {
		return nil, nil
	}
	return fn(r)
}
