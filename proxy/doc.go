// Package proxy decides whether outbound traffic for a URL scheme has to
// be routed through an HTTP(S) proxy, based on an environment snapshot.
//
// # Precedence
//
// Candidates are checked in a fixed order and the first non-empty value
// that parses wins. For "https":
//
//	<pm>_https-proxy, <pm>_proxy,
//	npm_config_https-proxy, npm_config_proxy,
//	https_proxy, HTTPS_PROXY, http_proxy, HTTP_PROXY
//
// For "http" the https-only entries are skipped. <pm> is the package
// manager prefix of the [Resolver], "yarn" by default. Malformed values
// are treated as unset and resolution moves on to the next candidate.
//
// # Usage
//
//	cfg := proxy.Resolve(environ.Current(), "https")
//	if cfg != nil {
//		transport.Proxy = cfg.ProxyFunc(proxy.NoProxy(env))
//	}
package proxy
