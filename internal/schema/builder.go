package schema

import "github.com/xaviermathew/Aragog/pkg/records"

// Builder accumulates the records of one partition.
type Builder struct {
	opts    options
	records int64
	fields  map[string]*FieldAccumulator
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		opts:   buildOptions(opts),
		fields: make(map[string]*FieldAccumulator),
	}
}

// Observe normalizes and accumulates every field of rec. Fields seen in other
// records of the partition but absent from rec count as null.
func (b *Builder) Observe(rec records.Record) {
	b.records++
	for name, raw := range rec {
		acc, ok := b.fields[name]
		if !ok {
			acc = NewFieldAccumulator(b.opts.maxChoices)
			b.fields[name] = acc
		}
		acc.Observe(Normalize(raw))
	}
}

// Records is the number of records observed so far.
func (b *Builder) Records() int64 { return b.records }

// Partial returns a snapshot of the partition. The snapshot shares no state
// with the Builder, which may keep observing.
func (b *Builder) Partial() *PartialSchema {
	p := &PartialSchema{
		records:    b.records,
		maxChoices: b.opts.maxChoices,
		fields:     make(map[string]*FieldAccumulator, len(b.fields)),
	}
	for name, acc := range b.fields {
		p.fields[name] = acc.Clone()
	}
	p.padMissing()
	return p
}

// Build folds recs into a PartialSchema.
func Build(recs []records.Record, opts ...Option) *PartialSchema {
	b := NewBuilder(opts...)
	for _, r := range recs {
		b.Observe(r)
	}
	return b.Partial()
}
