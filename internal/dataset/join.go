package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// Suffixes given to a non-key field present on both sides of a join.
const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// joinReader reads every source of a multi dataset, then folds them left to
// right with a keyed join. Sources are held in memory for the fold; the
// joined rows are handed out one by one.
//
// Keys match when their normalized values are equal, so "7" in a CSV and 7
// in JSON join. A row without the key joins other rows without it.
type joinReader struct {
	sources []config.Dataset
	join    config.Join
	opts    []Option
	log     *slog.Logger
	skipped *int

	done bool
	rows []records.Record
}

func newJoinReader(ds config.Dataset, opts []Option, log *slog.Logger, skipped *int) (*joinReader, error) {
	mp, err := ds.Multi()
	if err != nil {
		return nil, fmt.Errorf("multi params: %w", err)
	}
	if len(mp.Sources) == 0 {
		return nil, errors.New("params.sources is required")
	}
	if mp.Join.On == "" {
		return nil, errors.New("params.join_params.on is required")
	}
	switch mp.Join.How {
	case config.JoinInner, config.JoinLeft, config.JoinRight, config.JoinOuter:
	default:
		return nil, fmt.Errorf("unknown join mode %q", mp.Join.How)
	}
	for i := range mp.Sources {
		if mp.Sources[i].Name == "" {
			mp.Sources[i].Name = fmt.Sprintf("%s.sources[%d]", ds.Name, i)
		}
	}
	return &joinReader{sources: mp.Sources, join: mp.Join, opts: opts, log: log, skipped: skipped}, nil
}

func (j *joinReader) Next(ctx context.Context) (records.Record, error) {
	if !j.done {
		if err := j.load(ctx); err != nil {
			return nil, err
		}
		j.done = true
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(j.rows) == 0 {
		return nil, io.EOF
	}
	rec := j.rows[0]
	j.rows[0] = nil
	j.rows = j.rows[1:]
	return rec, nil
}

func (j *joinReader) load(ctx context.Context) error {
	var acc side
	for i, src := range j.sources {
		rows, err := j.readSource(ctx, src)
		if err != nil {
			return fmt.Errorf("source %s: %w", src.Name, err)
		}
		next := newSide(rows, j.join.On)
		if i == 0 {
			acc = next
			continue
		}
		acc = joinSides(acc, next, j.join.On, j.join.How)
	}
	j.rows = acc.rows
	j.log.Info("sources joined", "sources", len(j.sources), "on", j.join.On, "how", j.join.How, "rows", humanize.Comma(int64(len(acc.rows))))
	return nil
}

// readSource reads src to the end with its own transforms applied.
func (j *joinReader) readSource(ctx context.Context, src config.Dataset) ([]records.Record, error) {
	s, err := Open(ctx, src, j.opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var rows []records.Record
	for {
		rec, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	*j.skipped += s.Skipped()
	if len(s.Transforms) > 0 {
		rows = s.Transforms.Apply(rows)
	}
	return rows, nil
}

// side is one operand of a join: its rows and the non-key fields they carry.
type side struct {
	rows   []records.Record
	fields map[string]struct{}
}

func newSide(rows []records.Record, on string) side {
	s := side{rows: rows, fields: map[string]struct{}{}}
	for _, r := range rows {
		for k := range r {
			if k != on {
				s.fields[k] = struct{}{}
			}
		}
	}
	return s
}

// joinKey is the identity rows are matched on.
func joinKey(r records.Record, on string) string {
	v := schema.Normalize(r[on])
	return fmt.Sprintf("%s:%v", schema.Detect(v), v)
}

// joinSides joins left and right on the key field. Matching rows pair up
// (every left match with every right match); unmatched rows are kept or
// dropped according to how.
func joinSides(left, right side, on, how string) side {
	shared := map[string]struct{}{}
	for f := range left.fields {
		if _, ok := right.fields[f]; ok {
			shared[f] = struct{}{}
		}
	}

	index := make(map[string][]int, len(right.rows))
	for i, r := range right.rows {
		k := joinKey(r, on)
		index[k] = append(index[k], i)
	}
	matched := make([]bool, len(right.rows))

	var out []records.Record
	for _, l := range left.rows {
		hits := index[joinKey(l, on)]
		for _, i := range hits {
			matched[i] = true
			out = append(out, combine(l, right.rows[i], on, shared))
		}
		if len(hits) == 0 && (how == config.JoinLeft || how == config.JoinOuter) {
			out = append(out, combine(l, nil, on, shared))
		}
	}
	if how == config.JoinRight || how == config.JoinOuter {
		for i, r := range right.rows {
			if !matched[i] {
				out = append(out, combine(nil, r, on, shared))
			}
		}
	}

	fields := make(map[string]struct{}, len(left.fields)+len(right.fields))
	for f := range left.fields {
		fields[suffixed(f, shared, leftSuffix)] = struct{}{}
	}
	for f := range right.fields {
		fields[suffixed(f, shared, rightSuffix)] = struct{}{}
	}
	return side{rows: out, fields: fields}
}

// combine builds one joined row. Either side may be nil.
func combine(l, r records.Record, on string, shared map[string]struct{}) records.Record {
	out := make(records.Record, len(l)+len(r))
	for k, v := range r {
		if k != on {
			out[suffixed(k, shared, rightSuffix)] = v
		}
	}
	for k, v := range l {
		if k != on {
			out[suffixed(k, shared, leftSuffix)] = v
		}
	}
	switch {
	case l != nil:
		out[on] = l[on]
	case r != nil:
		out[on] = r[on]
	}
	return out
}

func suffixed(f string, shared map[string]struct{}, suffix string) string {
	if _, ok := shared[f]; ok {
		return f + suffix
	}
	return f
}
