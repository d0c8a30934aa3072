// Package throttle limits outbound download traffic with token buckets
// from [golang.org/x/time/rate].
//
// [NewRoundTripper] caps how many requests per second leave a
// [http.RoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(10, 5, func() *slog.Logger { return logger }, next)
//
// [NewReader] caps how many bytes per second are read from a response
// body, blocking until tokens are available or ctx ends:
//
//	body, err := throttle.NewReader(ctx, resp.Body, 512<<10)
package throttle
