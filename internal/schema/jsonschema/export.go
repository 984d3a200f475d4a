// Package jsonschema renders a canonical schema as a JSON Schema (draft
// 2020-12) document and validates records against it.
//
// Field statistics that JSON Schema has no keyword for are carried as
// "x-" extension keywords so the document stays a faithful description of the
// inferred schema.
package jsonschema

import (
	"encoding/json"
	"sort"
	"strconv"

	invjs "github.com/invopop/jsonschema"

	"github.com/xaviermathew/Aragog/internal/schema"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// Export builds a JSON Schema describing one record of the dataset.
func Export(title string, s *schema.Schema) *invjs.Schema {
	doc := &invjs.Schema{
		Version:    draft,
		Title:      title,
		Type:       "object",
		Properties: invjs.NewProperties(),
		Extras: map[string]any{
			"x-records":     s.Records,
			"x-max-choices": s.MaxChoices,
		},
	}
	for _, name := range s.Names() {
		f := s.Fields[name]
		doc.Properties.Set(name, property(f))
		if f.Required {
			doc.Required = append(doc.Required, name)
		}
	}
	return doc
}

func property(f schema.Field) *invjs.Schema {
	p := valueSchema(f)
	p.Extras = map[string]any{
		"x-count":      f.Count,
		"x-null-count": f.NullCount,
		"x-overflowed": f.Overflowed,
	}
	if f.MeanValue != nil {
		p.Extras["x-mean"] = *f.MeanValue
	}
	if f.Required {
		return p
	}
	extras := p.Extras
	p.Extras = nil
	return &invjs.Schema{
		AnyOf:  []*invjs.Schema{p, {Type: "null"}},
		Extras: extras,
	}
}

func valueSchema(f schema.Field) *invjs.Schema {
	p := &invjs.Schema{}
	switch f.Type {
	case schema.Boolean:
		p.Type = "boolean"
	case schema.Integer:
		p.Type = "integer"
	case schema.Float:
		p.Type = "number"
	case schema.String:
		p.Type = "string"
	case schema.Date:
		p.Type, p.Format = "string", "date"
	case schema.Datetime:
		p.Type, p.Format = "string", "date-time"
	case schema.Object:
		// Nested values are opaque; any JSON value is accepted.
		return p
	}
	if f.MinValue != nil && f.MaxValue != nil {
		p.Minimum = number(*f.MinValue)
		p.Maximum = number(*f.MaxValue)
	}
	if f.Choices != nil {
		p.Enum = enum(f)
	}
	return p
}

func number(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

// enum lists the choices in their JSON form, most frequent first.
func enum(f schema.Field) []any {
	keys := make([]string, 0, len(f.Choices))
	for k := range f.Choices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := f.Choices[keys[i]], f.Choices[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		switch f.Type {
		case schema.Integer:
			n, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				return nil
			}
			out = append(out, n)
		case schema.Boolean:
			out = append(out, k == "true")
		case schema.String:
			out = append(out, k)
		default:
			return nil
		}
	}
	return out
}
