package downloader

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/binfetch/downloader/download"
	"github.com/adamwoolhether/binfetch/proxy"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code.
const maxErrBodySize = 4 << 10 // 4KB

// defaultMaxRedirects matches the net/http default.
const defaultMaxRedirects = 10

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrProxyAuthFailure is joined with [ErrUnexpectedStatusCode] when the
	// proxy rejects the credentials with 407.
	ErrProxyAuthFailure = errors.New("proxy auth failure")
	// ErrRedirectLoop is returned once a download exceeds the redirect bound.
	ErrRedirectLoop = errors.New("too many redirects")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid download request")
	// ErrMalformedReference is returned when a reference file has no digest.
	ErrMalformedReference = errors.New("malformed checksum reference")
)

// UnexpectedStatusError is returned when the server answers with a
// status code outside 2xx.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// ChecksumMismatchError carries both digests of a failed verification.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %s, got %s", download.ErrChecksumMismatch, e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error {
	return download.ErrChecksumMismatch
}

// DownloadRequest describes a single download. It is built per call and
// never mutated after the proxy was resolved.
type DownloadRequest struct {
	URL             string        `json:"url" validate:"required,http_url"`
	DestinationPath string        `json:"destinationPath" validate:"required"`
	Proxy           *proxy.Config `json:"-" validate:"-"`

	noProxy string
}

// VerificationResult is the outcome of a successful checksum comparison.
type VerificationResult struct {
	Expected string
	Actual   string
}

// DigestFunc computes the hex digest of the file at path.
type DigestFunc func(path string) (string, error)
