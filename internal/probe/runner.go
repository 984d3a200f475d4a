// Package probe runs schema inference over partitioned datasets.
//
// A run builds one partial schema per partition on a bounded worker pool,
// reusing cached partials for partitions whose fingerprint was seen before,
// then tree-reduces the partials and unifies every field. The first failure
// (a read error or an ambiguous field) cancels the run; no schema is returned
// in that case.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xaviermathew/Aragog/internal/cache"
	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/metrics"
	"github.com/xaviermathew/Aragog/internal/partition"
	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/internal/telemetry"
)

// Runner drives partitions through the schema core.
type Runner struct {
	workers    int
	fanIn      int
	maxChoices int
	policy     schema.Policy
	cache      cache.Store
	log        *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds concurrent partition builds. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option { return func(r *Runner) { r.workers = n } }

// WithFanIn sets how many partials one merge step combines.
func WithFanIn(n int) Option { return func(r *Runner) { r.fanIn = n } }

// WithMaxChoices sets the categorical tally cap.
func WithMaxChoices(n int) Option { return func(r *Runner) { r.maxChoices = n } }

// WithPolicy sets the unification policy.
func WithPolicy(p schema.Policy) Option { return func(r *Runner) { r.policy = p } }

// WithCache sets the partial-schema cache.
func WithCache(s cache.Store) Option { return func(r *Runner) { r.cache = s } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.log = l } }

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option { return func(r *Runner) { r.tracer = t } }

// New returns a Runner with defaults: GOMAXPROCS workers, the default fan-in
// and tally cap, strict unification, no cache.
func New(opts ...Option) *Runner {
	r := &Runner{
		fanIn:      config.DefaultFanIn,
		maxChoices: schema.DefaultMaxChoices,
		cache:      cache.Nop{},
		log:        slog.Default(),
		tracer:     telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.maxChoices <= 0 {
		r.maxChoices = schema.DefaultMaxChoices
	}
	return r
}

// FromConfig maps the inference section of a job onto Runner options.
func FromConfig(in config.Inference, opts ...Option) *Runner {
	base := []Option{
		WithWorkers(in.Workers),
		WithFanIn(in.FanIn),
		WithMaxChoices(in.MaxChoices),
		WithPolicy(schema.Policy{WidenNumeric: in.WidenNumeric}),
	}
	return New(append(base, opts...)...)
}

// Result is the outcome of a successful run.
type Result struct {
	RunID   string
	Dataset string
	Schema  *schema.Schema
	// Fingerprint identifies the partition contents the schema was built from.
	Fingerprint string
	Partitions  int
	Cached      int
	// Skipped counts malformed input rows the reader dropped. They are in
	// none of the schema's counts.
	Skipped  int
	Duration time.Duration
}

type built struct {
	partial *schema.PartialSchema
	key     string
	cached  bool
}

// Run consumes parts and returns the canonical schema for dataset name.
func (r *Runner) Run(ctx context.Context, name string, parts partition.Iterator) (res *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.log.With("dataset", name, "run_id", runID)

	ctx, span := r.tracer.Start(ctx, "probe.run", trace.WithAttributes(
		attribute.String("dataset", name),
		attribute.String("run_id", runID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log.Info("inference started", "workers", r.workers, "max_choices", r.maxChoices, "widen_numeric", r.policy.WidenNumeric)

	var (
		mu      sync.Mutex
		results []built
		readDur time.Duration
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	readErr := func() error {
		for {
			t0 := time.Now()
			p, err := parts.Next(gctx)
			readDur += time.Since(t0)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read partition: %w", err)
			}
			mu.Lock()
			pos := len(results)
			results = append(results, built{})
			mu.Unlock()

			g.Go(func() error {
				b, err := r.buildPartition(gctx, name, p)
				if err != nil {
					return err
				}
				mu.Lock()
				results[pos] = b
				mu.Unlock()
				return nil
			})
		}
	}()
	werr := g.Wait()
	metrics.RecordStep(name, "read", readErr, readDur)
	// A worker failure cancels gctx, which surfaces in the reader as a
	// context error; report the worker's error instead.
	if werr != nil && (readErr == nil || errors.Is(readErr, context.Canceled)) {
		readErr = werr
	}
	if readErr != nil {
		log.Error("inference aborted", "err", readErr)
		return nil, fmt.Errorf("dataset %s: %w", name, readErr)
	}

	partials := make([]*schema.PartialSchema, len(results))
	keys := make([]string, 0, len(results))
	cached := 0
	for i, b := range results {
		partials[i] = b.partial
		if b.key != "" {
			keys = append(keys, b.key)
		}
		if b.cached {
			cached++
		}
	}

	t0 := time.Now()
	_, mspan := r.tracer.Start(ctx, "probe.merge", trace.WithAttributes(attribute.Int("partials", len(partials))))
	merged := schema.Reduce(partials, r.fanIn)
	mspan.End()
	metrics.RecordStep(name, "merge", nil, time.Since(t0))

	t0 = time.Now()
	s, err := merged.Finalize(r.policy)
	metrics.RecordStep(name, "finalize", err, time.Since(t0))
	if err != nil {
		log.Error("schema unification failed", "err", err)
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}

	var overflowed int64
	for _, f := range s.Fields {
		if f.Overflowed {
			overflowed++
		}
	}
	metrics.RecordOverflowed(name, overflowed)
	metrics.RecordPartitions(name, "cached", int64(cached))
	metrics.RecordPartitions(name, "built", int64(len(results)-cached))

	res = &Result{
		RunID:       runID,
		Dataset:     name,
		Schema:      s,
		Fingerprint: RunFingerprint(keys),
		Partitions:  len(results),
		Cached:      cached,
		Duration:    time.Since(start),
	}
	span.SetAttributes(
		attribute.Int64("records", s.Records),
		attribute.Int("fields", len(s.Fields)),
		attribute.Int("partitions", res.Partitions),
	)
	log.Info("inference finished",
		"records", humanize.Comma(s.Records),
		"fields", len(s.Fields),
		"partitions", res.Partitions,
		"cached", cached,
		"overflowed", overflowed,
		"took", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

// buildPartition returns the partial for p, from the cache when possible.
// Cache failures are logged and never fail the run.
func (r *Runner) buildPartition(ctx context.Context, name string, p partition.Partition) (built, error) {
	if err := ctx.Err(); err != nil {
		return built{}, err
	}
	ctx, span := r.tracer.Start(ctx, "probe.partition", trace.WithAttributes(
		attribute.Int("index", p.Index),
		attribute.Int("records", len(p.Records)),
	))
	defer span.End()

	key, err := PartitionKey(p.Records, r.maxChoices)
	if err != nil {
		r.log.Debug("partition not cacheable", "dataset", name, "partition", p.Index, "err", err)
		key = ""
	}
	if key != "" {
		cp, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.Warn("cache get failed", "dataset", name, "partition", p.Index, "err", err)
		}
		if ok {
			span.SetAttributes(attribute.Bool("cached", true))
			metrics.RecordRecords(name, cp.Records())
			return built{partial: cp, key: key, cached: true}, nil
		}
	}

	t0 := time.Now()
	partial := schema.Build(p.Records, schema.WithMaxChoices(r.maxChoices))
	metrics.RecordStep(name, "build", nil, time.Since(t0))
	metrics.RecordRecords(name, partial.Records())
	r.log.Debug("partition built", "dataset", name, "partition", p.Index, "records", humanize.Comma(partial.Records()), "fields", partial.Len())

	if key != "" {
		if err := r.cache.Put(ctx, key, partial); err != nil {
			r.log.Warn("cache put failed", "dataset", name, "partition", p.Index, "err", err)
		}
	}
	return built{partial: partial, key: key}, nil
}
