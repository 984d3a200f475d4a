// Package datasource defines where dataset bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh byte stream for a dataset. Callers close the stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (io.ReadCloser, error)

// Open calls f.
func (f SourceFunc) Open(ctx context.Context) (io.ReadCloser, error) { return f(ctx) }
