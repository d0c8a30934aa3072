package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/adamwoolhether/binfetch/environ"
)

// DefaultPackageManager is the prefix of the package-manager scoped
// proxy variables consulted before the npm and generic ones.
const DefaultPackageManager = "yarn"

var ErrMalformed = errors.New("malformed proxy value")

// candidate is a single environment key and whether it only
// applies to https traffic.
type candidate struct {
	key       string
	httpsOnly bool
}

// genericCandidates are consulted after the package-manager scoped ones.
var genericCandidates = []candidate{
	{key: "npm_config_https-proxy", httpsOnly: true},
	{key: "npm_config_proxy"},
	{key: "https_proxy", httpsOnly: true},
	{key: "HTTPS_PROXY", httpsOnly: true},
	{key: "http_proxy"},
	{key: "HTTP_PROXY"},
}

// Resolver resolves proxy settings using a package manager prefix.
// The zero value uses [DefaultPackageManager].
type Resolver struct {
	PackageManager string
}

// Resolve uses the default Resolver.
func Resolve(env environ.Snapshot, scheme string) *Config {
	return Resolver{}.Resolve(env, scheme)
}

// Resolve returns the proxy to use for scheme, or nil when traffic
// should go direct. Only "http" and "https" are proxied.
func (r Resolver) Resolve(env environ.Snapshot, scheme string) *Config {
	scheme = strings.ToLower(scheme)
	if scheme != "http" && scheme != "https" {
		return nil
	}

	for _, c := range r.candidates() {
		if c.httpsOnly && scheme != "https" {
			continue
		}

		raw := strings.TrimSpace(env.Get(c.key))
		if raw == "" {
			continue
		}

		u, err := Parse(raw)
		if err != nil {
			continue
		}

		return &Config{URL: u, Source: c.key}
	}

	return nil
}

func (r Resolver) candidates() []candidate {
	pm := r.PackageManager
	if pm == "" {
		pm = DefaultPackageManager
	}

	list := make([]candidate, 0, len(genericCandidates)+2)
	list = append(list,
		candidate{key: pm + "_https-proxy", httpsOnly: true},
		candidate{key: pm + "_proxy"},
	)

	return append(list, genericCandidates...)
}

// Parse parses and normalizes a proxy URL. A value without a scheme is
// read as http. The returned URL always carries a path of at least "/".
func Parse(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrMalformed, u.Scheme)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrMalformed)
	}

	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", ErrMalformed, p)
		}
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u, nil
}

// NoProxy returns the hosts excluded from proxying, preferring the
// lower-case variable.
func NoProxy(env environ.Snapshot) string {
	if v := env.Get("no_proxy"); v != "" {
		return v
	}

	return env.Get("NO_PROXY")
}
