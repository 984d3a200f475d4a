package schema

import (
	"fmt"
	"strconv"
)

// variant is the per-class part of a FieldAccumulator. There is one
// implementation per non-null TypeClass; each composes only the
// sub-aggregates its class needs.
type variant interface {
	class() TypeClass
	count() int64
	observe(v any)
	merge(o variant)
	clone() variant
	state() variantState
}

// variantState is the serialized form of any variant.
type variantState struct {
	Class  TypeClass       `json:"class"`
	Count  int64           `json:"count"`
	Ints   *stats[int64]   `json:"ints,omitempty"`
	Floats *stats[float64] `json:"floats,omitempty"`
	Tally  *tally          `json:"tally,omitempty"`
}

func newVariant(c TypeClass, maxChoices int) variant {
	switch c {
	case Boolean:
		return &booleanVariant{tally: newTally(maxChoices)}
	case Integer:
		return &integerVariant{tally: newTally(maxChoices)}
	case Float:
		return &floatVariant{}
	case String:
		return &stringVariant{tally: newTally(maxChoices)}
	default:
		return &opaqueVariant{c: c}
	}
}

func (s variantState) variant() (variant, error) {
	switch s.Class {
	case Null:
		return nil, fmt.Errorf("schema: null has no variant")
	case Boolean:
		return &booleanVariant{n: s.Count, tally: s.Tally}, nil
	case Integer:
		v := &integerVariant{tally: s.Tally}
		if s.Ints != nil {
			v.stats = *s.Ints
		}
		if v.stats.N != s.Count {
			return nil, fmt.Errorf("schema: integer variant count %d does not match stats %d", s.Count, v.stats.N)
		}
		return v, nil
	case Float:
		v := &floatVariant{}
		if s.Floats != nil {
			v.stats = *s.Floats
		}
		if v.stats.N != s.Count {
			return nil, fmt.Errorf("schema: float variant count %d does not match stats %d", s.Count, v.stats.N)
		}
		return v, nil
	case String:
		return &stringVariant{n: s.Count, tally: s.Tally}, nil
	case Date, Datetime, Object:
		return &opaqueVariant{c: s.Class, n: s.Count}, nil
	}
	return nil, fmt.Errorf("schema: invalid variant class %d", uint8(s.Class))
}

type booleanVariant struct {
	n     int64
	tally *tally
}

func (b *booleanVariant) class() TypeClass { return Boolean }
func (b *booleanVariant) count() int64     { return b.n }

func (b *booleanVariant) observe(v any) {
	b.n++
	if b.tally != nil {
		b.tally.add(boolKey(v), 1)
	}
}

func (b *booleanVariant) merge(o variant) {
	ob := o.(*booleanVariant)
	b.n += ob.n
	b.tally = mergeTallies(b.tally, ob.tally)
}

func (b *booleanVariant) clone() variant {
	return &booleanVariant{n: b.n, tally: b.tally.clone()}
}

func (b *booleanVariant) state() variantState {
	return variantState{Class: Boolean, Count: b.n, Tally: b.tally.clone()}
}

type integerVariant struct {
	stats stats[int64]
	tally *tally
}

func (i *integerVariant) class() TypeClass { return Integer }
func (i *integerVariant) count() int64     { return i.stats.N }

func (i *integerVariant) observe(v any) {
	n := toInt64(v)
	i.stats.observe(n)
	if i.tally != nil {
		i.tally.add(strconv.FormatInt(n, 10), 1)
	}
}

func (i *integerVariant) merge(o variant) {
	oi := o.(*integerVariant)
	i.stats.merge(oi.stats)
	i.tally = mergeTallies(i.tally, oi.tally)
}

func (i *integerVariant) clone() variant {
	return &integerVariant{stats: i.stats, tally: i.tally.clone()}
}

func (i *integerVariant) state() variantState {
	s := i.stats
	return variantState{Class: Integer, Count: s.N, Ints: &s, Tally: i.tally.clone()}
}

type floatVariant struct {
	stats stats[float64]
}

func (f *floatVariant) class() TypeClass { return Float }
func (f *floatVariant) count() int64     { return f.stats.N }
func (f *floatVariant) observe(v any)    { f.stats.observe(toFloat64(v)) }
func (f *floatVariant) merge(o variant)  { f.stats.merge(o.(*floatVariant).stats) }
func (f *floatVariant) clone() variant   { return &floatVariant{stats: f.stats} }

func (f *floatVariant) state() variantState {
	s := f.stats
	return variantState{Class: Float, Count: s.N, Floats: &s}
}

type stringVariant struct {
	n     int64
	tally *tally
}

func (s *stringVariant) class() TypeClass { return String }
func (s *stringVariant) count() int64     { return s.n }

func (s *stringVariant) observe(v any) {
	s.n++
	if s.tally != nil {
		s.tally.add(fmt.Sprint(v), 1)
	}
}

func (s *stringVariant) merge(o variant) {
	ov := o.(*stringVariant)
	s.n += ov.n
	s.tally = mergeTallies(s.tally, ov.tally)
}

func (s *stringVariant) clone() variant {
	return &stringVariant{n: s.n, tally: s.tally.clone()}
}

func (s *stringVariant) state() variantState {
	return variantState{Class: String, Count: s.n, Tally: s.tally.clone()}
}

// opaqueVariant counts Date, Datetime and Object observations.
type opaqueVariant struct {
	c TypeClass
	n int64
}

func (o *opaqueVariant) class() TypeClass { return o.c }
func (o *opaqueVariant) count() int64     { return o.n }
func (o *opaqueVariant) observe(any)      { o.n++ }
func (o *opaqueVariant) merge(x variant)  { o.n += x.(*opaqueVariant).n }
func (o *opaqueVariant) clone() variant   { return &opaqueVariant{c: o.c, n: o.n} }

func (o *opaqueVariant) state() variantState {
	return variantState{Class: o.c, Count: o.n}
}

func boolKey(v any) string {
	switch b := v.(type) {
	case bool:
		return strconv.FormatBool(b)
	case string:
		if b == "True" {
			return "true"
		}
		if b == "False" {
			return "false"
		}
		return b
	}
	return fmt.Sprint(v)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	}
	return float64(toInt64(v))
}
