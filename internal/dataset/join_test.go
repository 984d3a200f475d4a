package dataset

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/pkg/records"
)

func multiDataset(dir, how string) config.Dataset {
	return config.Dataset{
		Name: "people",
		Type: config.TypeMulti,
		Params: config.Options{
			"sources": []any{
				map[string]any{"name": "names", "type": "csv", "params": map[string]any{"path": dir + "/a.csv"}},
				map[string]any{"name": "ages", "type": "csv", "params": map[string]any{"path": dir + "/b.csv"}},
			},
			"join_params": map[string]any{"on": "id", "how": how},
		},
	}
}

func TestOpen_MultiJoinModes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "a.csv", "id,name\n1,ann\n2,bob\n3,cid\n")
	write(t, dir, "b.csv", "id,name,age\n2,bobby,40\n3,c,33\n4,dee,27\n")

	ann := records.Record{"id": "1", "name_x": "ann"}
	bob := records.Record{"id": "2", "name_x": "bob", "name_y": "bobby", "age": "40"}
	cid := records.Record{"id": "3", "name_x": "cid", "name_y": "c", "age": "33"}
	dee := records.Record{"id": "4", "name_y": "dee", "age": "27"}

	tests := []struct {
		how  string
		want []records.Record
	}{
		{"", []records.Record{bob, cid}},
		{config.JoinInner, []records.Record{bob, cid}},
		{config.JoinLeft, []records.Record{ann, bob, cid}},
		{config.JoinRight, []records.Record{bob, cid, dee}},
		{config.JoinOuter, []records.Record{ann, bob, cid, dee}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("how="+tt.how, func(t *testing.T) {
			t.Parallel()
			s, err := Open(context.Background(), multiDataset(dir, tt.how))
			require.NoError(t, err)
			assert.Equal(t, tt.want, readAll(t, s))
		})
	}
}

func TestOpen_MultiMatchesNormalizedKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "a.csv", "id,city\n7,Pune\n8,Goa\nx,Agra\n")
	write(t, dir, "b.ndjson", "{\"id\": 7, \"pop\": 3}\n{\"id\": 8, \"pop\": 1}\n")

	s, err := Open(context.Background(), config.Dataset{
		Name: "cities",
		Type: config.TypeMulti,
		Params: config.Options{
			"sources": []any{
				map[string]any{"type": "csv", "params": map[string]any{"path": dir + "/a.csv"}},
				map[string]any{"type": "ndjson", "params": map[string]any{"path": dir + "/b.ndjson"}},
			},
			"join_params": map[string]any{"on": "id"},
			"columns":     []any{"pop"},
		},
	})
	require.NoError(t, err)

	got := readAll(t, s)
	assert.Equal(t, []records.Record{{"id": "7", "pop": json.Number("3")}, {"id": "8", "pop": json.Number("1")}}, got)
}

func TestOpen_MultiChildTransformsAndSkips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "a.csv", "code,name\n1,ann\n2,bob,extra\n3,cid\n")
	write(t, dir, "b.csv", "id,score\n1,9\n3,4\n")

	s, err := Open(context.Background(), config.Dataset{
		Name: "scores",
		Type: config.TypeMulti,
		Params: config.Options{
			"sources": []any{
				map[string]any{"type": "csv", "params": map[string]any{
					"path":   dir + "/a.csv",
					"rename": map[string]any{"code": "id"},
				}},
				map[string]any{"type": "csv", "params": map[string]any{"path": dir + "/b.csv"}},
			},
			"join_params": map[string]any{"on": "id", "how": "outer"},
		},
	})
	require.NoError(t, err)

	got := readAll(t, s)
	assert.Equal(t, []records.Record{
		{"id": "1", "name": "ann", "score": "9"},
		{"id": "3", "name": "cid", "score": "4"},
	}, got)
	assert.Equal(t, 1, s.Skipped())
}

func TestOpen_MultiErrors(t *testing.T) {
	t.Parallel()

	src := map[string]any{"type": "csv", "params": map[string]any{"path": "/nonexistent/a.csv"}}
	tests := []struct {
		name   string
		params config.Options
		open   bool
	}{
		{"no sources", config.Options{"join_params": map[string]any{"on": "id"}}, true},
		{"no key", config.Options{"sources": []any{src, src}}, true},
		{"bad how", config.Options{"sources": []any{src, src}, "join_params": map[string]any{"on": "id", "how": "cross"}}, true},
		{"missing child input", config.Options{"sources": []any{src, src}, "join_params": map[string]any{"on": "id"}}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := Open(context.Background(), config.Dataset{Name: "m", Type: config.TypeMulti, Params: tt.params})
			if tt.open {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, err = s.Next(context.Background())
			assert.ErrorContains(t, err, "source m.sources[0]")
		})
	}
}
