// Package download streams HTTP response bodies to disk.
//
// # Single Download
//
// [Handle] writes the body to a temporary file next to the destination
// path and renames it into place only once every byte arrived and every
// check passed. On any failure, including cancellation of ctx, the
// temporary file is closed and removed:
//
//	err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithProgress(),
//		download.WithRateLimit(1<<20),
//	)
//
// # Digests
//
// [FileDigest] and [MD5File] hash a file already on disk, which is how
// reference checksums published next to an artifact are compared.
//
// # Batches
//
// A [Queue] runs async downloads under a concurrency limit. Each
// destination path may be in flight once per queue, and [Queue.Shutdown]
// cancels everything still running.
//
// Most callers should use the higher-level
// [github.com/adamwoolhether/binfetch/downloader] package, which resolves
// proxies, issues the request and invokes Handle internally.
package download
