package downloader

import (
	"hash"

	"github.com/adamwoolhether/binfetch/downloader/download"
	"github.com/vbauerster/mpb/v5"
)

// Types of the streaming layer that callers handle directly.
type (
	// DownloadOption configures a single download.
	DownloadOption = download.Option

	// DownloadError attaches detail to a download sentinel error.
	DownloadError = download.Error

	// DownloadResult tracks one download started by [Downloader.DownloadAsync].
	DownloadResult = download.Result
)

// Errors of the streaming layer, for use with errors.Is.
var (
	// ErrNetwork marks transport failures and body read failures.
	ErrNetwork = download.ErrNetwork
	// ErrFilesystem marks failures on the destination or a digested file.
	ErrFilesystem = download.ErrFilesystem
	// ErrContentLengthMismatch is returned when the body length differs
	// from Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch
	// ErrChecksumMismatch is wrapped by every digest mismatch, including
	// [ChecksumMismatchError].
	ErrChecksumMismatch = download.ErrChecksumMismatch
	// ErrDownloadCancelled is returned when ctx ends before the file is in place.
	ErrDownloadCancelled = download.ErrDownloadCancelled
	// ErrGroupShutdown is returned for batch work refused after shutdown.
	ErrGroupShutdown = download.ErrGroupShutdown
	// ErrDuplicateDestination is returned when a batch already downloads
	// to the same path.
	ErrDuplicateDestination = download.ErrDuplicateDestination
)

// WithChecksum hashes the body with h while streaming and compares the
// result with the hex digest expected before the file is moved in place.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress logs progress through the Downloader's logger.
func WithProgress() DownloadOption { return download.WithProgress() }

// WithProgressBar renders a terminal progress bar named name on p.
func WithProgressBar(p *mpb.Progress, name string) DownloadOption {
	return download.WithProgressBar(p, name)
}

// WithRateLimit caps the transfer rate at bytesPerSec.
func WithRateLimit(bytesPerSec int) DownloadOption { return download.WithRateLimit(bytesPerSec) }

// WithSkipExisting returns without a request when the destination exists.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }

// WithBatch starts a new batch of at most maxConcurrent parallel
// downloads; zero or less means unlimited. Only valid for
// [Downloader.DownloadAsync].
func WithBatch(maxConcurrent int) DownloadOption { return download.WithBatch(maxConcurrent) }
