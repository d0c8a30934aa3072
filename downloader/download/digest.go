package download

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// FileDigest returns the hex-encoded digest of the file at path
// computed with a hash from newHash.
func FileDigest(path string, newHash func() hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", ErrFilesystem, path, err)
	}
	defer f.Close()

	h := newHash()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrFilesystem, path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// MD5File returns the hex-encoded MD5 digest of the file at path.
func MD5File(path string) (string, error) {
	return FileDigest(path, md5.New)
}

// inlineDigest hashes the body while it streams to disk, so the
// expected digest is checked without reading the file back.
type inlineDigest struct {
	hash     hash.Hash
	expected string
}

func (d *inlineDigest) Write(p []byte) (int, error) {
	return d.hash.Write(p)
}

// check compares the running digest with the expected hex value,
// ignoring case. A nil receiver means no digest was requested.
func (d *inlineDigest) check() error {
	if d == nil {
		return nil
	}

	actual := hex.EncodeToString(d.hash.Sum(nil))
	if !strings.EqualFold(actual, d.expected) {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", d.expected, actual),
		}
	}

	return nil
}
