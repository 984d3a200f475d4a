package schema

import "sort"

// Field is the canonical summary of one field.
type Field struct {
	Type      TypeClass `json:"type"`
	Required  bool      `json:"required"`
	Count     int64     `json:"count"`
	NullCount int64     `json:"null_count"`

	// MinValue, MaxValue and MeanValue are set for Integer and Float fields.
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	MeanValue *float64 `json:"mean_value,omitempty"`

	// Choices maps each distinct value (as text) to its frequency. It is nil
	// when the tally overflowed or when the field saw non-categorical values.
	Choices    map[string]int64 `json:"choices,omitempty"`
	Overflowed bool             `json:"overflowed"`
}

func (f *Field) setStats(lo, hi, mean float64) {
	f.MinValue, f.MaxValue, f.MeanValue = &lo, &hi, &mean
}

// Schema is the canonical, fully merged and unified schema of a dataset.
type Schema struct {
	Records    int64            `json:"records"`
	MaxChoices int              `json:"max_choices"`
	Fields     map[string]Field `json:"fields"`
}

// Names returns the field names in sorted order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for n := range s.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Partial converts s back into a PartialSchema, so a canonical schema can be
// merged with fresh partials. MergeAll of s.Partial() alone reproduces s.
func (s *Schema) Partial() *PartialSchema {
	p := &PartialSchema{
		records:    s.Records,
		maxChoices: s.MaxChoices,
		fields:     make(map[string]*FieldAccumulator, len(s.Fields)),
	}
	if p.maxChoices <= 0 {
		p.maxChoices = DefaultMaxChoices
	}
	for name, f := range s.Fields {
		p.fields[name] = fieldAccumulator(f, p.maxChoices)
	}
	p.padMissing()
	return p
}
