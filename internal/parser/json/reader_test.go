package json

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/golang-sql/civil"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/pkg/records"
)

func readAll(t *testing.T, in string, o config.Options) []records.Record {
	t.Helper()
	opt, err := FromConfigOptions(o)
	if err != nil {
		t.Fatalf("FromConfigOptions() error = %v", err)
	}
	r, err := NewReader(strings.NewReader(in), opt)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	var out []records.Record
	for {
		rec, err := r.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, rec)
	}
}

// TestReaderNDJSONSkipsPrimitives verifies that primitive top-level values
// are skipped and numbers stay json.Number.
func TestReaderNDJSONSkipsPrimitives(t *testing.T) {
	t.Parallel()

	got := readAll(t, "{\"id\":1,\"name\":\"a\"}\n42\n{\"id\":2,\"name\":\"b\"}\n", nil)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if n, ok := got[0]["id"].(json.Number); !ok || n.String() != "1" {
		t.Fatalf("id = %#v, want json.Number(1)", got[0]["id"])
	}
	if got[1]["name"] != "b" {
		t.Fatalf("name = %#v", got[1]["name"])
	}
}

func TestReaderTopLevelArray(t *testing.T) {
	t.Parallel()

	got := readAll(t, `[{"a":1},"junk",{"a":2}]`, nil)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	opt, _ := FromConfigOptions(config.Options{"allow_arrays": false})
	r, _ := NewReader(strings.NewReader(`[{"a":1}]`), opt)
	if _, err := r.Next(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want allow_arrays error", err)
	}
}

func TestReaderRecordsQuery(t *testing.T) {
	t.Parallel()

	in := `{"count":3,"next":null,"results":[{"id":1,"user":{"name":"x","age":30}},{"id":2,"user":{}}]}`
	got := readAll(t, in, config.Options{"records": ".results[]", "flatten": true})
	want := []records.Record{
		{"id": 1, "user_name": "x", "user_age": 30},
		{"id": 2, "user": nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("records = %#v, want %#v", got, want)
	}

	if _, err := CompileQuery(".results[["); err == nil {
		t.Fatalf("CompileQuery(invalid) error = nil")
	}
}

func TestReaderQueryRuntimeError(t *testing.T) {
	t.Parallel()

	opt, _ := FromConfigOptions(config.Options{"records": ".results[]"})
	r, err := NewReader(strings.NewReader(`{"results": 5}`), opt)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if _, err := r.Next(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want jq error", err)
	}
}

func TestReaderParseDates(t *testing.T) {
	t.Parallel()

	got := readAll(t, `{"d":"2024-05-06","ts":"2024-05-06T07:08:09Z","s":"06/05/2024"}`, config.Options{"parse_dates": true})
	if got[0]["d"] != (civil.Date{Year: 2024, Month: 5, Day: 6}) {
		t.Fatalf("d = %#v", got[0]["d"])
	}
	if _, ok := got[0]["ts"].(civil.DateTime); !ok {
		t.Fatalf("ts = %#v", got[0]["ts"])
	}
	if got[0]["s"] != "06/05/2024" {
		t.Fatalf("s = %#v", got[0]["s"])
	}
}

func TestFlattenSeparator(t *testing.T) {
	t.Parallel()

	got := Flatten(records.Record{"a": map[string]any{"b": map[string]any{"c": 1}}, "l": []any{1}}, ".")
	want := records.Record{"a.b.c": 1, "l": []any{1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten() = %v, want %v", got, want)
	}
}

func TestReaderDecodeError(t *testing.T) {
	t.Parallel()

	opt, _ := FromConfigOptions(nil)
	r, _ := NewReader(strings.NewReader(`{"a":`), opt)
	if _, err := r.Next(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want decode error", err)
	}
}
