package jsonschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/pkg/records"
)

func inferred(t *testing.T) *schema.Schema {
	t.Helper()
	p := schema.Build([]records.Record{
		{"id": "1", "name": "ann", "active": "True", "score": "1.5", "born": "x"},
		{"id": "2", "name": "bob", "active": "False", "score": nil, "born": "y"},
		{"id": "3", "name": "ann", "active": "True", "score": "4", "born": nil},
	}, schema.WithPolicy(schema.Policy{WidenNumeric: true}))
	s, err := schema.MergeAll([]*schema.PartialSchema{p}, schema.WithPolicy(schema.Policy{WidenNumeric: true}))
	require.NoError(t, err)
	return s
}

func TestExportShape(t *testing.T) {
	doc := Export("people", inferred(t))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, "object", m["type"])
	assert.Equal(t, "people", m["title"])
	assert.ElementsMatch(t, []any{"active", "id", "name"}, m["required"])

	props := m["properties"].(map[string]any)
	id := props["id"].(map[string]any)
	assert.Equal(t, "integer", id["type"])
	assert.EqualValues(t, 1, id["minimum"])
	assert.EqualValues(t, 3, id["maximum"])
	assert.EqualValues(t, 2, id["x-mean"])

	name := props["name"].(map[string]any)
	assert.Equal(t, []any{"ann", "bob"}, name["enum"])

	score := props["score"].(map[string]any)
	require.Contains(t, score, "anyOf")
	assert.EqualValues(t, 1, score["x-null-count"])
}

func TestValidatorAcceptsInferredRecords(t *testing.T) {
	v, err := Compile(Export("people", inferred(t)))
	require.NoError(t, err)

	assert.NoError(t, v.Validate(records.Record{"id": "2", "name": "bob", "active": "True", "score": "2"}))
	assert.NoError(t, v.Validate(records.Record{"id": 3, "name": "ann", "active": false, "score": nil, "born": "x"}))

	assert.Error(t, v.Validate(records.Record{"id": "9", "name": "ann", "active": "True"}), "above observed maximum")
	assert.Error(t, v.Validate(records.Record{"id": "1", "name": "eve", "active": "True"}), "unknown choice")
	assert.Error(t, v.Validate(records.Record{"id": "1", "name": "ann"}), "missing required field")
	assert.Error(t, v.Validate(records.Record{"id": "x", "name": "ann", "active": "True"}), "wrong type")
}
