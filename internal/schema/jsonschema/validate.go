package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	invjs "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// Validator checks records against an exported schema document.
type Validator struct {
	compiled *jsonschema.Schema
}

// Compile prepares doc for validation.
func Compile(doc *invjs.Schema) (*Validator, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", value); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate reports whether rec conforms. Values are normalized the same way
// inference normalizes them, then compared in their JSON encoding, so dates
// are checked as strings.
func (v *Validator) Validate(rec records.Record) error {
	norm := make(records.Record, len(rec))
	for k, raw := range rec {
		val := schema.Normalize(raw)
		if schema.Detect(val) == schema.Boolean {
			if s, ok := val.(string); ok {
				val = s == "True"
			}
		}
		norm[k] = val
	}
	raw, err := json.Marshal(norm)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("unmarshaling record: %w", err)
	}
	return v.compiled.Validate(inst)
}
