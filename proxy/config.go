package proxy

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// Config holds the proxy connection parameters for one download.
type Config struct {
	URL    *url.URL
	Source string // environment key the value came from
}

// Host returns the proxy host name without port.
func (c *Config) Host() string {
	return c.URL.Hostname()
}

// Port returns the explicit proxy port, or the scheme default.
func (c *Config) Port() string {
	if p := c.URL.Port(); p != "" {
		return p
	}

	switch c.URL.Scheme {
	case "https":
		return "443"
	case "socks5":
		return "1080"
	default:
		return "80"
	}
}

// Credentials returns the proxy user and password, if any.
func (c *Config) Credentials() (user, password string, ok bool) {
	if c.URL.User == nil {
		return "", "", false
	}

	password, _ = c.URL.User.Password()

	return c.URL.User.Username(), password, true
}

// String returns the normalized proxy URL, credentials included.
func (c *Config) String() string {
	return c.URL.String()
}

// Redacted is like String but masks the password.
func (c *Config) Redacted() string {
	return c.URL.Redacted()
}

// ProxyFunc returns a func suitable for [http.Transport.Proxy] that
// sends every request through c, except hosts matched by noProxy.
// Requests to localhost and loopback addresses are never proxied.
func (c *Config) ProxyFunc(noProxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.Config{
		HTTPProxy:  c.String(),
		HTTPSProxy: c.String(),
		NoProxy:    noProxy,
	}
	fn := cfg.ProxyFunc()

	return func(r *http.Request) (*url.URL, error) {
		return fn(r.URL)
	}
}
