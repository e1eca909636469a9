package server

import (
	"context"
	"strings"

	"github.com/vidgrab/vidgrab/types"
)

//go:generate go tool counterfeiter -o mocks/fake_fetcher.go . Fetcher

// Fetcher wraps the external media extraction engine
type Fetcher interface {
	// Probe extracts metadata for url without writing any file
	Probe(ctx context.Context, url string) (*types.Metadata, error)

	// Fetch downloads url at the given quality into outputTemplate
	Fetch(ctx context.Context, url string, quality Quality, outputTemplate string) (*FetchResult, error)
}

// FetchResult is what a completed fetch reports back
type FetchResult struct {
	Metadata types.Metadata
	// PathHint is the engine's best guess of the produced file. The real name may differ.
	PathHint string
}

// FetchError carries the raw failure output of the engine. It is never interpreted by the
// adapter; classification happens in the download service.
type FetchError struct {
	Op     string
	Output string
	Err    error
}

func (e *FetchError) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return out
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Op + " failed"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
