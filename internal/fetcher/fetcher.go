// Package fetcher opens dataset resources from HTTP or the local filesystem
// and parses them as streaming JSON or CSV.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// Fetcher defines the interface for opening a dataset resource.
type Fetcher interface {
	// Download fetches the resource and returns its body.
	Download(ctx context.Context, location string) (io.ReadCloser, error)
}

// Router dispatches http(s) locations to HTTP and everything else
// (file:// URLs and bare paths) to Files.
type Router struct {
	HTTP  Fetcher
	Files Fetcher
}

// NewRouter creates a Router over the given HTTP fetcher and a FileFetcher.
func NewRouter(httpFetcher Fetcher) *Router {
	return &Router{HTTP: httpFetcher, Files: &FileFetcher{}}
}

// Download implements Fetcher.
func (r *Router) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	if IsRemote(location) {
		return r.HTTP.Download(ctx, location)
	}
	return r.Files.Download(ctx, location)
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
