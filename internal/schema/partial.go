package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PartialSchema is the accumulated summary of one or more partitions. It is
// never modified after it is returned; merging always produces a new value.
type PartialSchema struct {
	records    int64
	maxChoices int
	fields     map[string]*FieldAccumulator
}

// Records is the number of records the partial covers.
func (p *PartialSchema) Records() int64 { return p.records }

// MaxChoices is the tally cap in effect for this partial.
func (p *PartialSchema) MaxChoices() int { return p.maxChoices }

// Len is the number of fields.
func (p *PartialSchema) Len() int { return len(p.fields) }

// Names returns the field names in sorted order.
func (p *PartialSchema) Names() []string {
	names := make([]string, 0, len(p.fields))
	for n := range p.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Field returns a copy of the named field's accumulator.
func (p *PartialSchema) Field(name string) (*FieldAccumulator, bool) {
	acc, ok := p.fields[name]
	if !ok {
		return nil, false
	}
	return acc.Clone(), true
}

// padMissing counts every record that lacked a field as a null for it.
func (p *PartialSchema) padMissing() {
	for _, acc := range p.fields {
		acc.ObserveNull(p.records - acc.count - acc.nullCount)
	}
}

// Merge folds partials into a new PartialSchema. Merge is associative and
// commutative: any grouping or order of the same partials yields the same
// counts, extrema, tallies and class sets, and means equal up to rounding.
// A field absent from a partial counts as null for all of its records.
func Merge(partials ...*PartialSchema) *PartialSchema {
	out := &PartialSchema{fields: make(map[string]*FieldAccumulator)}
	for _, p := range partials {
		if p == nil {
			continue
		}
		out.records += p.records
		if out.maxChoices == 0 || (p.maxChoices > 0 && p.maxChoices < out.maxChoices) {
			out.maxChoices = p.maxChoices
		}
		for name, acc := range p.fields {
			if cur, ok := out.fields[name]; ok {
				cur.Merge(acc)
				continue
			}
			out.fields[name] = acc.Clone()
		}
	}
	if out.maxChoices == 0 {
		out.maxChoices = DefaultMaxChoices
	}
	out.padMissing()
	return out
}

// Reduce merges partials as a tree with the given fan-in, so no single merge
// step holds more than fanIn inputs. fanIn < 2 is treated as 2.
func Reduce(partials []*PartialSchema, fanIn int) *PartialSchema {
	if fanIn < 2 {
		fanIn = 2
	}
	if len(partials) <= 1 {
		return Merge(partials...)
	}
	level := partials
	for len(level) > 1 {
		next := make([]*PartialSchema, 0, (len(level)+fanIn-1)/fanIn)
		for i := 0; i < len(level); i += fanIn {
			next = append(next, Merge(level[i:min(i+fanIn, len(level))]...))
		}
		level = next
	}
	return level[0]
}

// Finalize unifies every field under p. The first field (in name order) that
// cannot be unified aborts with its *AmbiguousTypeError; no partial schema is
// returned in that case.
func (p *PartialSchema) Finalize(policy Policy) (*Schema, error) {
	s := &Schema{
		Records:    p.records,
		MaxChoices: p.maxChoices,
		Fields:     make(map[string]Field, len(p.fields)),
	}
	for _, name := range p.Names() {
		f, err := p.fields[name].Finalize(name, policy)
		if err != nil {
			return nil, err
		}
		s.Fields[name] = f
	}
	return s, nil
}

// MergeAll merges partials and finalizes the result into a canonical Schema.
func MergeAll(partials []*PartialSchema, opts ...Option) (*Schema, error) {
	o := buildOptions(opts)
	return Merge(partials...).Finalize(o.policy)
}

type partialJSON struct {
	Records    int64                       `json:"records"`
	MaxChoices int                         `json:"max_choices"`
	Fields     map[string]accumulatorState `json:"fields"`
}

// MarshalJSON encodes the full accumulator state, so a decoded partial merges
// exactly like the original.
func (p *PartialSchema) MarshalJSON() ([]byte, error) {
	out := partialJSON{
		Records:    p.records,
		MaxChoices: p.maxChoices,
		Fields:     make(map[string]accumulatorState, len(p.fields)),
	}
	for name, acc := range p.fields {
		out.Fields[name] = acc.state()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the output of MarshalJSON.
func (p *PartialSchema) UnmarshalJSON(b []byte) error {
	var in partialJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	fields := make(map[string]*FieldAccumulator, len(in.Fields))
	for name, st := range in.Fields {
		acc, err := st.accumulator()
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if acc.count+acc.nullCount != in.Records {
			return fmt.Errorf("field %q: %d observations for %d records", name, acc.count+acc.nullCount, in.Records)
		}
		fields[name] = acc
	}
	p.records = in.Records
	p.maxChoices = in.MaxChoices
	if p.maxChoices <= 0 {
		p.maxChoices = DefaultMaxChoices
	}
	p.fields = fields
	return nil
}
