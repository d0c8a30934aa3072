// Package environ captures read-only snapshots of process environment
// state so that lookups can be evaluated without touching global state.
package environ

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Snapshot is a point-in-time copy of environment variables.
// A Snapshot is never written to after it is built.
type Snapshot map[string]string

// Current copies the process environment.
func Current() Snapshot {
	return FromList(os.Environ())
}

// FromList builds a Snapshot from "KEY=value" pairs as returned by
// [os.Environ]. Entries without '=' are ignored.
func FromList(kv []string) Snapshot {
	snap := make(Snapshot, len(kv))
	for _, pair := range kv {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			continue
		}
		snap[k] = v
	}

	return snap
}

// ReadFiles parses the given dotenv files; later files win on
// duplicate keys.
func ReadFiles(files ...string) (Snapshot, error) {
	if len(files) == 0 {
		return Snapshot{}, nil
	}

	vars, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("reading env files: %w", err)
	}

	return Snapshot(vars), nil
}

// Merge layers snapshots into a new one; keys in later layers win.
func Merge(layers ...Snapshot) Snapshot {
	merged := Snapshot{}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}

	return merged
}

// Load reads the given dotenv files and overlays the process environment
// on top, so variables already set in the process always win.
func Load(files ...string) (Snapshot, error) {
	fromFiles, err := ReadFiles(files...)
	if err != nil {
		return nil, err
	}

	return Merge(fromFiles, Current()), nil
}

// Get returns the value for key, or "" when unset.
func (s Snapshot) Get(key string) string {
	return s[key]
}

// Bool reports whether key holds a truthy value ("1", "t", "true", ...).
// Unset, empty and unparsable values are false.
func (s Snapshot) Bool(key string) bool {
	v, ok := s[key]
	if !ok {
		return false
	}

	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}

	return b
}
