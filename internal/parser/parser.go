// Package parser holds the contract shared by the record readers in its
// subpackages.
package parser

import (
	"context"

	"github.com/xaviermathew/Aragog/pkg/records"
)

// RecordReader yields records one at a time and returns io.EOF when done.
type RecordReader interface {
	Next(ctx context.Context) (records.Record, error)
}

// ReaderFunc adapts a function to RecordReader.
type ReaderFunc func(ctx context.Context) (records.Record, error)

// Next calls f.
func (f ReaderFunc) Next(ctx context.Context) (records.Record, error) { return f(ctx) }
