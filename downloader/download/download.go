package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adamwoolhether/binfetch/downloader/throttle"
)

// tempPattern names in-flight downloads next to their destination.
const tempPattern = ".binfetch-dl-*"

// Handle streams body to a temp file in the same directory as destPath,
// which is renamed to destPath on success. On any error the temp file
// is removed. contentLength < 0 means unknown.
func Handle(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if opts.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			logger.Info("skipping existing file", "path", destPath)
			return nil
		}
	}

	body = &contextReader{ctx: ctx, r: body}
	if opts.rateLimit > 0 {
		limited, err := throttle.NewReader(ctx, body, opts.rateLimit)
		if err != nil {
			return fmt.Errorf("configuring rate limit: %w", err)
		}
		body = limited
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), tempPattern)
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrFilesystem, err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Error("failed to remove temp file", "path", file.Name(), "error", err)
			}
		}
	}()

	var writer io.Writer = fsWriter{w: file}
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}

	if opts.progress {
		writer = &progressWriter{
			w:         writer,
			logger:    logger,
			total:     contentLength,
			startTime: time.Now(),
		}
	}

	if opts.bar != nil {
		bw := newBarWriter(writer, opts.bar, contentLength)
		defer bw.finish()
		writer = bw
	}

	n, err := io.Copy(writer, body)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		case errors.Is(err, ErrFilesystem):
			return fmt.Errorf("copying file body: %w", err)
		default:
			return fmt.Errorf("%w: reading body: %w", ErrNetwork, err)
		}
	}

	if contentLength >= 0 && n != contentLength {
		return &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", contentLength, n),
		}
	}

	if err := opts.checksum.check(); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("%w: syncing temp file: %w", ErrFilesystem, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %w", ErrFilesystem, err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("%w: renaming temp file: %w", ErrFilesystem, err)
	}

	successful = true

	return nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}

// fsWriter tags write failures so they are not mistaken for network errors.
type fsWriter struct {
	w io.Writer
}

func (fw fsWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	return n, nil
}
