// Package partition cuts a record stream into fixed-size batches.
package partition

import (
	"context"
	"errors"
	"io"

	"github.com/xaviermathew/Aragog/internal/parser"
	"github.com/xaviermathew/Aragog/internal/transformer"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// DefaultSize is used when a size <= 0 is requested.
const DefaultSize = 10000

// Partition is one batch of records. Index is its position in the stream.
type Partition struct {
	Index   int
	Records []records.Record
}

// Iterator yields partitions until io.EOF.
type Iterator interface {
	Next(ctx context.Context) (Partition, error)
}

// Splitter reads size records at a time from a reader and applies an
// optional transform to each batch. A batch the transform empties is still
// emitted so partition indexes stay stable.
type Splitter struct {
	r    parser.RecordReader
	size int
	t    transformer.Transformer
	idx  int
	done bool
}

// Split returns a Splitter over r. t may be nil.
func Split(r parser.RecordReader, size int, t transformer.Transformer) *Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	return &Splitter{r: r, size: size, t: t}
}

// Next returns the next partition, or io.EOF once the reader is exhausted.
// Reader errors other than io.EOF are returned as is.
func (s *Splitter) Next(ctx context.Context) (Partition, error) {
	if s.done {
		return Partition{}, io.EOF
	}
	batch := make([]records.Record, 0, min(s.size, 1024))
	for len(batch) < s.size {
		rec, err := s.r.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.done = true
			break
		}
		if err != nil {
			return Partition{}, err
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return Partition{}, io.EOF
	}
	if s.t != nil {
		batch = s.t.Apply(batch)
	}
	p := Partition{Index: s.idx, Records: batch}
	s.idx++
	return p, nil
}

// Slice iterates over a fixed list of partitions.
type Slice struct {
	parts []Partition
	pos   int
}

// FromRecords cuts recs into partitions of size.
func FromRecords(recs []records.Record, size int) *Slice {
	if size <= 0 {
		size = DefaultSize
	}
	var parts []Partition
	for i := 0; i < len(recs); i += size {
		end := min(i+size, len(recs))
		parts = append(parts, Partition{Index: len(parts), Records: recs[i:end]})
	}
	return &Slice{parts: parts}
}

// FromBatches wraps already partitioned records.
func FromBatches(batches ...[]records.Record) *Slice {
	parts := make([]Partition, len(batches))
	for i, b := range batches {
		parts[i] = Partition{Index: i, Records: b}
	}
	return &Slice{parts: parts}
}

func (s *Slice) Next(ctx context.Context) (Partition, error) {
	if err := ctx.Err(); err != nil {
		return Partition{}, err
	}
	if s.pos >= len(s.parts) {
		return Partition{}, io.EOF
	}
	p := s.parts[s.pos]
	s.pos++
	return p, nil
}

// Collect drains it.
func Collect(ctx context.Context, it Iterator) ([]Partition, error) {
	var out []Partition
	for {
		p, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}
