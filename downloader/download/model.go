package download

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks failures reading the response body.
	ErrNetwork = errors.New("network error")
	// ErrFilesystem marks failures on the destination file or on a local
	// file being digested.
	ErrFilesystem = errors.New("filesystem error")
	// ErrContentLengthMismatch is returned when fewer or more bytes than
	// announced were received.
	ErrContentLengthMismatch = errors.New("content length mismatch")
	// ErrChecksumMismatch is returned when a digest differs from the
	// expected one.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrDownloadCancelled is returned when the context ends mid-transfer.
	ErrDownloadCancelled = errors.New("download cancelled")
	// ErrGroupShutdown is returned for queued work after [Queue.Shutdown].
	ErrGroupShutdown = errors.New("download queue shut down")
	// ErrDuplicateDestination is returned when a batch already has a
	// download in flight to the same path.
	ErrDuplicateDestination = errors.New("destination already claimed in batch")
	// ErrBatchConflict is returned when WithBatch is passed to [Result.Add].
	ErrBatchConflict = errors.New("WithBatch cannot be used when adding to an existing batch")
)

// Error attaches detail to one of the sentinel errors above.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
