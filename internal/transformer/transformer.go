// Package transformer reshapes batches of records before inference.
package transformer

import "github.com/xaviermathew/Aragog/pkg/records"

// Transformer rewrites a batch. It may mutate records in place and may return
// a shorter slice when it drops records.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Func adapts a function to Transformer.
type Func func([]records.Record) []records.Record

// Apply calls f.
func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order on the output of the previous one.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
