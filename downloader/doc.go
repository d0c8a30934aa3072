// Package downloader fetches binary artifacts over HTTP(S) and verifies
// them against published checksums.
//
// # Building a Downloader
//
// Use [Build] with functional options:
//
//	d, err := downloader.Build(
//		downloader.WithUserAgent("myapp/1.0"),
//		downloader.WithCheckMD5(true),
//	)
//
// # Proxies
//
// Every call to [Downloader.Download] takes a fresh environment snapshot
// and resolves the proxy for the URL scheme with
// [github.com/adamwoolhether/binfetch/proxy]. Package-manager scoped
// variables such as "yarn_https-proxy" outrank npm and generic ones.
// When nothing is set the request goes direct.
//
// # Downloading
//
//	path, err := d.Download(ctx, "https://fastdl.example.org/bin.tgz", "/tmp/bin.tgz",
//		downloader.WithProgress(),
//	)
//
// The body streams to a temporary file next to the destination and is
// renamed into place on success. Failures are reported as [ErrNetwork],
// [*UnexpectedStatusError], [ErrRedirectLoop], [ErrFilesystem] or
// [ErrDownloadCancelled].
//
// # Verifying
//
// [Downloader.Verify] downloads a "<digest> <filename>" reference file and
// compares it with the MD5 of the local file:
//
//	if _, err := d.Verify(ctx, "https://fastdl.example.org/bin.tgz.md5", path); err != nil {
//		var mismatch *downloader.ChecksumMismatchError
//		if errors.As(err, &mismatch) { ... }
//	}
//
// Verification runs only when enabled by [WithCheckMD5] or the
// MONGOMS_MD5_CHECK environment variable, and never when
// MONGOMS_SKIP_MD5_CHECK is truthy.
package downloader
