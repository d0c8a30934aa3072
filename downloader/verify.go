package downloader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamwoolhether/binfetch/environ"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// EnvMD5Check enables checksum verification when truthy and no
	// explicit [WithCheckMD5] was given.
	EnvMD5Check = "MONGOMS_MD5_CHECK"
	// EnvSkipMD5Check disables checksum verification unconditionally.
	EnvSkipMD5Check = "MONGOMS_SKIP_MD5_CHECK"
)

// resolveCheckMD5 picks the verification flag: skip override, then the
// explicit setting, then the environment, then off.
func resolveCheckMD5(explicit *bool, env environ.Snapshot) bool {
	if env.Bool(EnvSkipMD5Check) {
		return false
	}
	if explicit != nil {
		return *explicit
	}
	return env.Bool(EnvMD5Check)
}

// Verify compares the digest of localPath with the one published in the
// reference file at referenceURL ("<digest> <filename>").
//
// When verification is disabled it returns (nil, nil) without touching
// the network or the file. A mismatch is a [*ChecksumMismatchError].
func (d *Downloader) Verify(ctx context.Context, referenceURL, localPath string) (*VerificationResult, error) {
	if !d.checkMD5 {
		return nil, nil
	}

	ctx, span := d.tracer.Start(ctx, "downloader.verify")
	defer span.End()
	span.SetAttributes(
		attribute.String("reference.url", redact(referenceURL)),
		attribute.String("path", localPath),
	)

	res, err := d.verify(ctx, referenceURL, localPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return res, nil
}

func (d *Downloader) verify(ctx context.Context, referenceURL, localPath string) (*VerificationResult, error) {
	dir, err := os.MkdirTemp("", "binfetch-ref-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating reference dir: %w", ErrFilesystem, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			d.logger.Error("failed to remove reference dir", "path", dir, "error", err)
		}
	}()

	refPath, err := d.Download(ctx, referenceURL, filepath.Join(dir, "reference"))
	if err != nil {
		return nil, fmt.Errorf("fetching reference: %w", err)
	}

	data, err := os.ReadFile(refPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading reference: %w", ErrFilesystem, err)
	}

	expected, err := parseReference(data)
	if err != nil {
		return nil, err
	}

	actual, err := d.digest(localPath)
	if err != nil {
		return nil, fmt.Errorf("computing digest: %w", err)
	}

	if expected != actual {
		return nil, &ChecksumMismatchError{Expected: expected, Actual: actual}
	}

	return &VerificationResult{Expected: expected, Actual: actual}, nil
}

// parseReference returns the first whitespace-separated token.
func parseReference(data []byte) (string, error) {
	fields := bytes.Fields(data)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty reference file", ErrMalformedReference)
	}

	return string(fields[0]), nil
}
