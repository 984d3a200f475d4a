package schema

import (
	"fmt"
	"sort"
)

// FieldAccumulator is the running aggregate for one field of one partition.
// It tracks how many non-null and null values were seen and keeps one
// variant per observed TypeClass, so conflicting classes are recorded rather
// than rejected. Unification happens in Finalize.
//
// A FieldAccumulator is not safe for concurrent use.
type FieldAccumulator struct {
	count      int64
	nullCount  int64
	maxChoices int
	variants   [numClasses]variant
	// overflowed marks a field whose tally overflowed before it was rebuilt
	// from a canonical Field that no longer carries the tally.
	overflowed bool
}

// NewFieldAccumulator returns an empty accumulator whose tallies keep at most
// maxChoices distinct values (DefaultMaxChoices when maxChoices <= 0).
func NewFieldAccumulator(maxChoices int) *FieldAccumulator {
	if maxChoices <= 0 {
		maxChoices = DefaultMaxChoices
	}
	return &FieldAccumulator{maxChoices: maxChoices}
}

// Observe records one normalized value (see Normalize).
func (a *FieldAccumulator) Observe(v any) {
	c := Detect(v)
	if c == Null {
		a.nullCount++
		return
	}
	a.count++
	if a.variants[c] == nil {
		a.variants[c] = newVariant(c, a.maxChoices)
	}
	a.variants[c].observe(v)
}

// ObserveNull records n null or missing values.
func (a *FieldAccumulator) ObserveNull(n int64) {
	if n > 0 {
		a.nullCount += n
	}
}

// Merge folds o into a. o is not modified.
func (a *FieldAccumulator) Merge(o *FieldAccumulator) {
	if o == nil {
		return
	}
	a.count += o.count
	a.nullCount += o.nullCount
	a.overflowed = a.overflowed || o.overflowed
	if o.maxChoices < a.maxChoices {
		a.maxChoices = o.maxChoices
	}
	for c, ov := range o.variants {
		switch {
		case ov == nil:
		case a.variants[c] == nil:
			a.variants[c] = ov.clone()
		default:
			a.variants[c].merge(ov)
		}
	}
}

// Clone returns a deep copy of a.
func (a *FieldAccumulator) Clone() *FieldAccumulator {
	c := *a
	for i, v := range a.variants {
		if v != nil {
			c.variants[i] = v.clone()
		}
	}
	return &c
}

// Count is the number of non-null observations.
func (a *FieldAccumulator) Count() int64 { return a.count }

// NullCount is the number of null or missing observations.
func (a *FieldAccumulator) NullCount() int64 { return a.nullCount }

// Classes returns the set of non-null classes observed so far.
func (a *FieldAccumulator) Classes() TypeSet {
	var s TypeSet
	for c, v := range a.variants {
		if v != nil {
			s = s.With(TypeClass(c))
		}
	}
	return s
}

// Finalize unifies the observed classes under p and summarizes the field.
func (a *FieldAccumulator) Finalize(name string, p Policy) (Field, error) {
	classes := a.Classes()
	typ, err := p.Unify(name, classes)
	if err != nil {
		return Field{}, err
	}

	f := Field{
		Type:      typ,
		Required:  a.nullCount == 0,
		Count:     a.count,
		NullCount: a.nullCount,
	}

	switch typ {
	case Integer:
		if iv, ok := a.variants[Integer].(*integerVariant); ok && iv.stats.N > 0 {
			f.setStats(float64(iv.stats.Min), float64(iv.stats.Max), iv.stats.Mean)
		}
	case Float:
		var s stats[float64]
		if fv, ok := a.variants[Float].(*floatVariant); ok {
			s.merge(fv.stats)
		}
		if iv, ok := a.variants[Integer].(*integerVariant); ok {
			s.merge(iv.stats.asFloats())
		}
		if s.N > 0 {
			f.setStats(s.Min, s.Max, s.Mean)
		}
	}

	a.finalizeChoices(&f, classes)
	return f, nil
}

// finalizeChoices exposes the combined tally when every observed class is
// categorical. Otherwise the tally would not describe every value.
func (a *FieldAccumulator) finalizeChoices(f *Field, classes TypeSet) {
	if classes.Len() == 0 {
		return
	}
	if a.overflowed {
		f.Overflowed = true
	}
	complete := true
	var merged *tally
	first := true
	for _, c := range classes.Classes() {
		t := a.tallyOf(c)
		if !c.categorical() {
			complete = false
		}
		if t != nil && t.Overflowed {
			f.Overflowed = true
		}
		if !c.categorical() {
			continue
		}
		if first {
			merged, first = t.clone(), false
			continue
		}
		merged = mergeTallies(merged, t)
	}
	if merged != nil && merged.Overflowed {
		f.Overflowed = true
	}
	if !complete || f.Overflowed || merged == nil {
		return
	}
	f.Choices = make(map[string]int64, len(merged.Counts))
	for k, n := range merged.Counts {
		f.Choices[k] = n
	}
}

func (a *FieldAccumulator) tallyOf(c TypeClass) *tally {
	switch v := a.variants[c].(type) {
	case *booleanVariant:
		return v.tally
	case *integerVariant:
		return v.tally
	case *stringVariant:
		return v.tally
	}
	return nil
}

// accumulatorState is the serialized form of a FieldAccumulator.
type accumulatorState struct {
	Count      int64          `json:"count"`
	NullCount  int64          `json:"null_count"`
	MaxChoices int            `json:"max_choices"`
	Overflowed bool           `json:"overflowed,omitempty"`
	Variants   []variantState `json:"variants,omitempty"`
}

func (a *FieldAccumulator) state() accumulatorState {
	st := accumulatorState{Count: a.count, NullCount: a.nullCount, MaxChoices: a.maxChoices, Overflowed: a.overflowed}
	for _, v := range a.variants {
		if v != nil {
			st.Variants = append(st.Variants, v.state())
		}
	}
	return st
}

func (st accumulatorState) accumulator() (*FieldAccumulator, error) {
	a := NewFieldAccumulator(st.MaxChoices)
	a.count, a.nullCount, a.overflowed = st.Count, st.NullCount, st.Overflowed
	var seen int64
	for _, vs := range st.Variants {
		v, err := vs.variant()
		if err != nil {
			return nil, err
		}
		if a.variants[vs.Class] != nil {
			return nil, fmt.Errorf("schema: duplicate %s variant", vs.Class)
		}
		a.variants[vs.Class] = v
		seen += v.count()
	}
	if seen != a.count {
		return nil, fmt.Errorf("schema: variant counts sum to %d, want %d", seen, a.count)
	}
	return a, nil
}

// fieldAccumulator rebuilds an accumulator that finalizes back to f.
func fieldAccumulator(f Field, maxChoices int) *FieldAccumulator {
	a := NewFieldAccumulator(maxChoices)
	a.count, a.nullCount = f.Count, f.NullCount
	// Widened floats can report an overflowed integer tally that no
	// rebuilt variant holds.
	a.overflowed = f.Overflowed
	if f.Count == 0 {
		return a
	}

	var t *tally
	switch {
	case f.Overflowed:
		t = &tally{Cap: a.maxChoices, Overflowed: true}
	case f.Choices != nil:
		t = newTally(a.maxChoices)
		keys := make([]string, 0, len(f.Choices))
		for k := range f.Choices {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.add(k, f.Choices[k])
		}
	}

	switch f.Type {
	case Boolean:
		a.variants[Boolean] = &booleanVariant{n: f.Count, tally: t}
	case Integer:
		v := &integerVariant{stats: stats[int64]{N: f.Count}, tally: t}
		if f.MinValue != nil && f.MaxValue != nil && f.MeanValue != nil {
			v.stats.Min, v.stats.Max, v.stats.Mean = int64(*f.MinValue), int64(*f.MaxValue), *f.MeanValue
		}
		a.variants[Integer] = v
	case Float:
		v := &floatVariant{stats: stats[float64]{N: f.Count}}
		if f.MinValue != nil && f.MaxValue != nil && f.MeanValue != nil {
			v.stats.Min, v.stats.Max, v.stats.Mean = *f.MinValue, *f.MaxValue, *f.MeanValue
		}
		a.variants[Float] = v
	case String:
		a.variants[String] = &stringVariant{n: f.Count, tally: t}
	default:
		a.variants[f.Type] = &opaqueVariant{c: f.Type, n: f.Count}
	}
	return a
}
