// Package csv reads delimited text into records. The header row names the
// fields; optional date detection turns date-like columns into civil values.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/parser/dates"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// DefaultSampleSize is the number of rows inspected for date layouts.
const DefaultSampleSize = 500

// Options configures the reader. Keys match dataset params.
type Options struct {
	HasHeader bool `mapstructure:"has_header"`
	// Comma is the field delimiter; only its first rune is used.
	Comma      string `mapstructure:"comma"`
	TrimSpace  bool   `mapstructure:"trim_space"`
	LazyQuotes bool   `mapstructure:"lazy_quotes"`
	// ExpectedFields enforces a fixed width when there is no header.
	ExpectedFields int `mapstructure:"expected_fields"`
	// HeaderMap renames source headers.
	HeaderMap map[string]string `mapstructure:"header_map"`
	// ParseDates detects per-column date/timestamp layouts from the first
	// SampleSize rows.
	ParseDates bool `mapstructure:"parse_dates"`
	SampleSize int  `mapstructure:"sample_size"`
	// Replace rewrites byte sequences before parsing, e.g. to repair a known
	// broken quote pattern in an export.
	Replace map[string]string `mapstructure:"replace"`
}

// FromConfigOptions decodes dataset params over the defaults.
func FromConfigOptions(o config.Options) (Options, error) {
	opt := Options{HasHeader: true, Comma: ",", TrimSpace: true, SampleSize: DefaultSampleSize}
	if err := o.Decode(&opt); err != nil {
		return Options{}, fmt.Errorf("csv options: %w", err)
	}
	return opt, nil
}

// Reader yields one record per data row. Rows whose width does not match
// the header are skipped and reported through onError.
type Reader struct {
	cr      *csv.Reader
	opt     Options
	headers []string
	layouts []*dates.Layout
	pending [][]string
	line    int
	skipped int
	onError func(line int, err error)
}

// NewReader reads the header (and the date sample when enabled) from r.
// onError may be nil.
func NewReader(ctx context.Context, r io.Reader, opt Options, onError func(line int, err error)) (*Reader, error) {
	if len(opt.Replace) > 0 {
		keys := make([]string, 0, len(opt.Replace))
		for k := range opt.Replace {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([][2]string, len(keys))
		for i, k := range keys {
			pairs[i] = [2]string{k, opt.Replace[k]}
		}
		r = withReplacements(r, pairs)
	}

	cr := csv.NewReader(r)
	if c := []rune(opt.Comma); len(c) > 0 {
		cr.Comma = c[0]
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	rd := &Reader{cr: cr, opt: opt, onError: onError}
	if opt.HasHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("read csv header: empty input")
		}
		if err != nil {
			return nil, fmt.Errorf("read csv header: %w", err)
		}
		rd.line = 1
		rd.headers = normalizeHeaders(h, opt.HeaderMap)
	} else if opt.ExpectedFields > 0 {
		rd.headers = make([]string, opt.ExpectedFields)
		for i := range rd.headers {
			rd.headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	if opt.ParseDates {
		if err := rd.sampleLayouts(ctx); err != nil {
			return nil, err
		}
	}
	return rd, nil
}

// Headers returns the normalized header names.
func (r *Reader) Headers() []string { return r.headers }

// Skipped returns the number of rows dropped so far.
func (r *Reader) Skipped() int { return r.skipped }

// Next returns the next record or io.EOF.
func (r *Reader) Next(ctx context.Context) (records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(r.pending) > 0 {
		row := r.pending[0]
		r.pending = r.pending[1:]
		return r.record(row), nil
	}
	row, err := r.readRow()
	if err != nil {
		return nil, err
	}
	return r.record(row), nil
}

// readRow returns the next well-formed row, skipping bad ones.
func (r *Reader) readRow() ([]string, error) {
	for {
		row, err := r.cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		r.line++
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("csv read: %w", err)
			}
			r.skip(fmt.Errorf("parse: %w", err))
			continue
		}
		if n := len(r.headers); n > 0 && len(row) != n {
			r.skip(fmt.Errorf("incorrect number of fields: expected %d, got %d", n, len(row)))
			continue
		}
		if r.opt.TrimSpace {
			for i, v := range row {
				row[i] = strings.TrimSpace(v)
			}
		}
		return row, nil
	}
}

func (r *Reader) skip(err error) {
	r.skipped++
	if r.onError != nil {
		r.onError(r.line, err)
	}
}

// sampleLayouts buffers up to SampleSize rows and detects a layout per column.
func (r *Reader) sampleLayouts(ctx context.Context) error {
	n := r.opt.SampleSize
	if n <= 0 {
		n = DefaultSampleSize
	}
	for len(r.pending) < n {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.readRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		r.pending = append(r.pending, row)
	}

	width := len(r.headers)
	for _, row := range r.pending {
		width = max(width, len(row))
	}
	r.layouts = make([]*dates.Layout, width)
	col := make([]string, 0, len(r.pending))
	for c := 0; c < width; c++ {
		col = col[:0]
		for _, row := range r.pending {
			if c < len(row) {
				col = append(col, row[c])
			}
		}
		if lay, ok := dates.Detect(col); ok {
			lay := lay
			r.layouts[c] = &lay
		}
	}
	return nil
}

func (r *Reader) record(row []string) records.Record {
	rec := make(records.Record, len(row))
	for i, val := range row {
		var v any = val
		if i < len(r.layouts) && r.layouts[i] != nil {
			if d, ok := r.layouts[i].Parse(val); ok {
				v = d
			}
		}
		rec[keyFor(i, r.headers)] = v
	}
	return rec
}

// keyFor returns the column key for idx, synthesizing "col_N" when there is
// no header name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// normalizeHeaders applies headerMap and otherwise lowercases and replaces
// spaces with underscores. Duplicate names get a _N suffix.
func normalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		name, ok := headerMap[c]
		if !ok {
			name = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name]++
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 1
		}
		res[i] = name
	}
	return res
}
