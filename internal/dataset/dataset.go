// Package dataset opens configured datasets as record streams.
//
// File datasets (csv, json, ndjson) read one or more inputs in order; each
// input gets its own parser so CSV headers are read per file. API datasets
// page through HTTP endpoints. Multi datasets join their sources on a key
// field; see joinReader. Transforms named in params (normalize, rename,
// columns, require) are returned separately so callers apply them per batch.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/datasource"
	"github.com/xaviermathew/Aragog/internal/datasource/file"
	"github.com/xaviermathew/Aragog/internal/datasource/httpds"
	"github.com/xaviermathew/Aragog/internal/parser"
	csvp "github.com/xaviermathew/Aragog/internal/parser/csv"
	jsonp "github.com/xaviermathew/Aragog/internal/parser/json"
	"github.com/xaviermathew/Aragog/internal/transformer"
	"github.com/xaviermathew/Aragog/internal/transformer/builtin"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// Credentials are the basic-auth pair sent with every request.
type Credentials struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// HTTPParams are the dataset params that configure the HTTP client.
type HTTPParams struct {
	Credentials        Credentials       `mapstructure:"credentials"`
	Timeout            time.Duration     `mapstructure:"timeout"`
	MaxRetries         int               `mapstructure:"max_retries"`
	InsecureSkipVerify bool              `mapstructure:"insecure_skip_verify"`
	Headers            map[string]string `mapstructure:"headers"`
}

// Client builds the retrying HTTP client for these params.
func (p HTTPParams) Client() *httpds.Client {
	h := http.Header{}
	for k, v := range p.Headers {
		h.Set(k, v)
	}
	return httpds.NewClient(httpds.Config{
		Timeout:            p.Timeout,
		MaxRetries:         p.MaxRetries,
		InsecureSkipVerify: p.InsecureSkipVerify,
		Username:           p.Credentials.Username,
		Password:           p.Credentials.Password,
		BaseHeaders:        h,
	})
}

// Stream is an open dataset.
type Stream struct {
	parser.RecordReader
	// Transforms are the per-batch transforms configured for the dataset.
	Transforms transformer.Chain
	closer     io.Closer
	skipped    int
}

// Skipped is the number of malformed input rows dropped so far. Those rows
// are not part of any inferred count.
func (s *Stream) Skipped() int { return s.skipped }

// Close releases the current input, if any.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Option configures Open.
type Option func(*opener)

type opener struct {
	log    *slog.Logger
	client *httpds.Client
}

// WithLogger sets the logger used for skipped rows and input progress.
func WithLogger(l *slog.Logger) Option { return func(o *opener) { o.log = l } }

// WithHTTPClient overrides the client built from the dataset params.
func WithHTTPClient(c *httpds.Client) Option { return func(o *opener) { o.client = c } }

// Open prepares ds for reading. Inputs are opened lazily by Next.
func Open(ctx context.Context, ds config.Dataset, opts ...Option) (*Stream, error) {
	o := opener{log: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	o.log = o.log.With("dataset", ds.Name)

	chain, err := builtin.FromParams(ds.Params)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
	}
	if o.client == nil {
		var hp HTTPParams
		if err := ds.Params.Decode(&hp); err != nil {
			return nil, fmt.Errorf("dataset %s: http params: %w", ds.Name, err)
		}
		o.client = hp.Client()
	}

	switch ds.Type {
	case config.TypeCSV, config.TypeJSON, config.TypeNDJSON:
		srcs, err := sources(ds.Params, o.client)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
		st := &Stream{Transforms: chain}
		open, err := fileParser(ds, o.log, func() { st.skipped++ })
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
		m := &multi{srcs: srcs, open: open, log: o.log}
		st.RecordReader, st.closer = m, m
		return st, nil

	case config.TypeMulti:
		st := &Stream{}
		jr, err := newJoinReader(ds, opts, o.log, &st.skipped)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
		if st.Transforms, err = builtin.FromParams(keepColumn(ds.Params, jr.join.On)); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
		st.RecordReader = jr
		return st, nil

	case config.TypeAPIDRF, config.TypeAPIGeneric:
		rd, err := newAPIReader(ds, o.client, o.log)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
		return &Stream{RecordReader: rd, Transforms: chain}, nil

	default:
		return nil, fmt.Errorf("dataset %s: unknown type %q", ds.Name, ds.Type)
	}
}

// sources lists the inputs of a file dataset. A path or list_file wins over url.
func sources(p config.Options, client *httpds.Client) ([]datasource.Source, error) {
	path, list := p.String("path", ""), p.String("list_file", "")
	if path != "" || list != "" {
		paths, err := file.Resolve(path, list)
		if err != nil {
			return nil, err
		}
		out := make([]datasource.Source, len(paths))
		for i, pth := range paths {
			out[i] = file.NewLocal(pth)
		}
		return out, nil
	}
	if u := p.String("url", ""); u != "" {
		return []datasource.Source{httpds.URL{Client: client, Href: u}}, nil
	}
	return nil, errors.New("params.path, params.list_file or params.url is required")
}

// keepColumn adds field to a configured column projection that lacks it.
func keepColumn(p config.Options, field string) config.Options {
	cols := p.StringSlice("columns")
	if len(cols) == 0 || slices.Contains(cols, field) {
		return p
	}
	out := make(config.Options, len(p))
	for k, v := range p {
		out[k] = v
	}
	out["columns"] = append([]string{field}, cols...)
	return out
}

type openFunc func(ctx context.Context, r io.Reader) (parser.RecordReader, error)

func fileParser(ds config.Dataset, log *slog.Logger, onSkip func()) (openFunc, error) {
	if ds.Type == config.TypeCSV {
		opt, err := csvp.FromConfigOptions(ds.Params)
		if err != nil {
			return nil, err
		}
		onErr := func(line int, err error) {
			log.Warn("csv row skipped", "line", line, "err", err)
			onSkip()
		}
		return func(ctx context.Context, r io.Reader) (parser.RecordReader, error) {
			rd, err := csvp.NewReader(ctx, r, opt, onErr)
			if err != nil {
				return nil, err
			}
			return rd, nil
		}, nil
	}
	opt, err := jsonp.FromConfigOptions(ds.Params)
	if err != nil {
		return nil, err
	}
	if opt.Records != "" {
		if _, err := jsonp.CompileQuery(opt.Records); err != nil {
			return nil, err
		}
	}
	return func(_ context.Context, r io.Reader) (parser.RecordReader, error) {
		rd, err := jsonp.NewReader(r, opt)
		if err != nil {
			return nil, err
		}
		return rd, nil
	}, nil
}

// multi reads its sources one after another.
type multi struct {
	srcs []datasource.Source
	open openFunc
	log  *slog.Logger

	idx int
	cur parser.RecordReader
	rc  io.ReadCloser
}

func (m *multi) Next(ctx context.Context) (records.Record, error) {
	for {
		if m.cur == nil {
			if m.idx >= len(m.srcs) {
				return nil, io.EOF
			}
			src := m.srcs[m.idx]
			m.idx++
			rc, err := src.Open(ctx)
			if err != nil {
				return nil, err
			}
			rd, err := m.open(ctx, rc)
			if err != nil {
				rc.Close()
				return nil, fmt.Errorf("input %d: %w", m.idx, err)
			}
			m.log.Debug("input opened", "input", m.idx, "of", len(m.srcs))
			m.cur, m.rc = rd, rc
		}
		rec, err := m.cur.Next(ctx)
		if err == io.EOF {
			if cerr := m.Close(); cerr != nil {
				return nil, cerr
			}
			continue
		}
		return rec, err
	}
}

func (m *multi) Close() error {
	m.cur = nil
	if m.rc == nil {
		return nil
	}
	err := m.rc.Close()
	m.rc = nil
	return err
}
