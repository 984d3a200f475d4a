package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/dustin/go-humanize"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/datasource/httpds"
	jsonp "github.com/xaviermathew/Aragog/internal/parser/json"
	"github.com/xaviermathew/Aragog/pkg/records"
)

// apiReader pages through an HTTP API.
//
// For api_drf each page is an envelope {"next": url|null, "results": [...]};
// paging stops when next is empty or max_pages is reached. api_generic makes
// one request whose body is an array of objects (or a single object). In both
// cases a params.records jq expression, when set, replaces the default
// extraction and runs over the whole page.
type apiReader struct {
	client   *httpds.Client
	opt      jsonp.Options
	query    *jsonp.Query
	paged    bool
	maxPages int
	log      *slog.Logger

	next    string
	pages   int
	seen    int
	pending []map[string]any
}

func newAPIReader(ds config.Dataset, client *httpds.Client, log *slog.Logger) (*apiReader, error) {
	opt, err := jsonp.FromConfigOptions(ds.Params)
	if err != nil {
		return nil, err
	}
	start := ds.Params.String("url", "")
	if start == "" {
		return nil, fmt.Errorf("params.url is required")
	}
	r := &apiReader{
		client:   client,
		opt:      opt,
		paged:    ds.Type == config.TypeAPIDRF,
		maxPages: ds.Params.Int("max_pages", 0),
		log:      log,
		next:     start,
	}
	if opt.Records != "" {
		if r.query, err = jsonp.CompileQuery(opt.Records); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *apiReader) Next(ctx context.Context) (records.Record, error) {
	for len(r.pending) == 0 {
		if r.next == "" {
			return nil, io.EOF
		}
		if err := r.fetch(ctx); err != nil {
			return nil, err
		}
	}
	m := r.pending[0]
	r.pending = r.pending[1:]
	r.seen++
	return r.opt.Record(m), nil
}

func (r *apiReader) fetch(ctx context.Context) error {
	cur := r.next
	r.log.Info("fetching page", "url", cur, "page", r.pages+1, "records_so_far", humanize.Comma(int64(r.seen)))

	var page any
	if err := r.client.GetJSON(ctx, cur, &page); err != nil {
		return err
	}
	r.pages++
	r.next = ""

	if r.paged {
		env, ok := page.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected a paged object, got %T", cur, page)
		}
		if n, _ := env["next"].(string); n != "" && (r.maxPages <= 0 || r.pages < r.maxPages) {
			next, err := resolve(cur, n)
			if err != nil {
				return err
			}
			r.next = next
		}
		if r.query == nil {
			res, ok := env["results"].([]any)
			if !ok {
				return fmt.Errorf("%s: page has no results array", cur)
			}
			page = res
		}
	}

	var err error
	if r.query != nil {
		r.pending, err = r.query.Select(ctx, page)
	} else {
		r.pending, err = jsonp.Objects(page, true)
	}
	return err
}

// resolve makes a possibly relative next link absolute against the page URL.
func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse next link %q: %w", ref, err)
	}
	return b.ResolveReference(u).String(), nil
}
