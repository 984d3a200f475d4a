package ddl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xaviermathew/Aragog/internal/schema"
)

// Logical column kinds. Dialect TypeMappers translate these.
const (
	KindText     = "text"
	KindBigInt   = "bigint"
	KindFloat    = "float"
	KindBoolean  = "boolean"
	KindDate     = "date"
	KindDatetime = "datetime"
)

// FieldDescriptor is the storage-facing view of one inferred field.
type FieldDescriptor struct {
	Field    string `json:"field"`
	Column   string `json:"column"`
	Kind     string `json:"kind"`
	Nullable bool   `json:"nullable"`
	// Choices lists the categorical values, most frequent first.
	Choices []string `json:"choices,omitempty"`
}

// KindOf maps a final type class to its logical column kind. Object and
// anything unknown are stored as text.
func KindOf(c schema.TypeClass) string {
	switch c {
	case schema.Integer:
		return KindBigInt
	case schema.Float:
		return KindFloat
	case schema.Boolean:
		return KindBoolean
	case schema.Date:
		return KindDate
	case schema.Datetime:
		return KindDatetime
	default:
		return KindText
	}
}

// Describe returns one descriptor per field in name order. Column identifiers
// are normalized and unique within the result.
func Describe(s *schema.Schema) []FieldDescriptor {
	if s == nil {
		return nil
	}
	names := s.Names()
	out := make([]FieldDescriptor, 0, len(names))
	seen := identSet{}
	for _, name := range names {
		f := s.Fields[name]
		out = append(out, FieldDescriptor{
			Field:    name,
			Column:   seen.claim(NormalizeIdent(name)),
			Kind:     KindOf(f.Type),
			Nullable: !f.Required,
			Choices:  rankChoices(f.Choices),
		})
	}
	return out
}

// rankChoices orders values by descending frequency, then by value.
func rankChoices(m map[string]int64) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if m[out[i]] != m[out[j]] {
			return m[out[i]] > m[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// FromSchema builds a table definition for s using mapType for column types.
func FromSchema(fqn string, s *schema.Schema, mapType TypeMapper) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: nil type mapper for %s", fqn)
	}
	desc := Describe(s)
	if len(desc) == 0 {
		return TableDef{}, fmt.Errorf("ddl: schema for %s has no fields", fqn)
	}
	t := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(desc))}
	for _, d := range desc {
		t.Columns = append(t.Columns, ColumnDef{
			Name:     d.Column,
			Source:   d.Field,
			SQLType:  mapType(d.Kind),
			Nullable: d.Nullable,
		})
	}
	return t, nil
}
