// Package binfetch exposes the artifact downloader builder.
package binfetch

import (
	"github.com/adamwoolhether/binfetch/downloader"
)

// NewDownloader instantiates a new *Downloader with the provided options.
// If not specified, a clone of http.DefaultTransport and the process
// environment are used.
func NewDownloader(opts ...downloader.Option) (*downloader.Downloader, error) {
	return downloader.Build(opts...)
}
