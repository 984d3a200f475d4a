// Package json reads JSON documents into records.
//
// Input is a stream of top-level values (a single document, NDJSON, or
// concatenated documents). Objects become records; top-level arrays are
// expanded into their object elements. A gojq expression can select the
// record objects inside each value instead, e.g. ".results[]" for a paged
// API envelope. Non-object values are skipped.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/parser/dates"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// Options configures the reader. Keys match dataset params.
type Options struct {
	// AllowArrays expands top-level arrays of objects.
	AllowArrays bool `mapstructure:"allow_arrays"`
	// Records is a jq expression yielding the record objects of each value.
	Records string `mapstructure:"records"`
	// Flatten joins nested object keys with Separator.
	Flatten   bool   `mapstructure:"flatten"`
	Separator string `mapstructure:"separator"`
	// ParseDates converts ISO dates and RFC 3339 timestamps in strings.
	ParseDates bool `mapstructure:"parse_dates"`
}

// FromConfigOptions decodes dataset params over the defaults.
func FromConfigOptions(o config.Options) (Options, error) {
	opt := Options{AllowArrays: true, Separator: "_"}
	if err := o.Decode(&opt); err != nil {
		return Options{}, fmt.Errorf("json options: %w", err)
	}
	return opt, nil
}

// Query is a compiled record selector.
type Query struct {
	expr string
	code *gojq.Code
}

// CompileQuery parses and compiles a jq expression.
func CompileQuery(expr string) (*Query, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression %q: %w", expr, err)
	}
	return &Query{expr: expr, code: code}, nil
}

// Select runs the query over v and returns the objects it yields. Non-object
// results are ignored; a runtime error aborts.
func (q *Query) Select(ctx context.Context, v any) ([]map[string]any, error) {
	iter := q.code.RunWithContext(ctx, toJQ(v))
	var out []map[string]any
	for {
		x, ok := iter.Next()
		if !ok {
			return out, nil
		}
		if err, isErr := x.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return out, nil
			}
			return nil, fmt.Errorf("jq %q: %w", q.expr, err)
		}
		if m, ok := x.(map[string]any); ok {
			out = append(out, m)
		}
	}
}

// Reader yields records from a JSON stream.
type Reader struct {
	dec     *json.Decoder
	opt     Options
	query   *Query
	pending []map[string]any
}

// NewReader wraps r. It fails only when the records expression is invalid.
func NewReader(r io.Reader, opt Options) (*Reader, error) {
	d := json.NewDecoder(r)
	d.UseNumber()
	rd := &Reader{dec: d, opt: opt}
	if strings.TrimSpace(opt.Records) != "" {
		q, err := CompileQuery(opt.Records)
		if err != nil {
			return nil, err
		}
		rd.query = q
	}
	return rd, nil
}

// Next returns the next record or io.EOF.
func (r *Reader) Next(ctx context.Context) (records.Record, error) {
	for len(r.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var raw any
		if err := r.dec.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("json parser: decode: %w", err)
		}
		objs, err := r.expand(ctx, raw)
		if err != nil {
			return nil, err
		}
		r.pending = objs
	}
	m := r.pending[0]
	r.pending = r.pending[1:]
	return r.opt.Record(m), nil
}

func (r *Reader) expand(ctx context.Context, raw any) ([]map[string]any, error) {
	if r.query != nil {
		return r.query.Select(ctx, raw)
	}
	return Objects(raw, r.opt.AllowArrays)
}

// Objects returns raw itself when it is an object, or its object elements
// when it is an array and arrays are allowed.
func Objects(raw any, allowArrays bool) ([]map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		if !allowArrays {
			return nil, fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
		}
		out := make([]map[string]any, 0, len(v))
		for _, elem := range v {
			if m, ok := elem.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, nil
	default:
		return nil, nil
	}
}

// Record applies flattening and date parsing to one decoded object.
func (o Options) Record(m map[string]any) records.Record {
	rec := records.Record(m)
	if o.Flatten {
		rec = Flatten(rec, o.Separator)
	}
	if o.ParseDates {
		for k, v := range rec {
			if s, ok := v.(string); ok {
				if d, ok := dates.ISO.Parse(s); ok {
					rec[k] = d
				}
			}
		}
	}
	return rec
}

// Flatten joins nested object keys with sep:
//
//	{"user": {"id": 1}} -> {"user_id": 1}
//
// Arrays are kept as values.
func Flatten(in records.Record, sep string) records.Record {
	out := make(records.Record, len(in))
	flattenInto("", in, sep, out)
	return out
}

func flattenInto(prefix string, in map[string]any, sep string, out records.Record) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}
		switch t := v.(type) {
		case map[string]any:
			if len(t) == 0 {
				out[key] = nil
				continue
			}
			flattenInto(key, t, sep, out)
		case records.Record:
			flattenInto(key, t, sep, out)
		default:
			out[key] = v
		}
	}
}

// toJQ converts json.Number values into the numeric types gojq accepts.
func toJQ(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = toJQ(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = toJQ(x)
		}
		return out
	default:
		return v
	}
}
