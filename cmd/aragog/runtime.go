package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/xaviermathew/Aragog/internal/cache"
	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/logging"
	"github.com/xaviermathew/Aragog/internal/metrics"
	"github.com/xaviermathew/Aragog/internal/metrics/datadog"
	"github.com/xaviermathew/Aragog/internal/metrics/prompush"
	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/internal/storage"
	"github.com/xaviermathew/Aragog/internal/telemetry"
)

// loadJob reads and lints the job file. Lint errors abort; warnings are
// logged by the caller once logging is configured.
func loadJob(f *rootFlags) (config.Job, []config.Issue, error) {
	job, err := config.Load(f.config)
	if err != nil {
		return config.Job{}, nil, err
	}
	if f.logLevel != "" {
		job.Logging.Level = f.logLevel
	}
	issues := config.ValidateJob(job)
	if config.HasErrors(issues) {
		return job, issues, fmt.Errorf("invalid job %s: %w", f.config, errors.Join(issuesAsErrors(issues, config.SeverityError)...))
	}
	return job, issues, nil
}

func issuesAsErrors(issues []config.Issue, sev config.IssueSeverity) []error {
	var out []error
	for _, is := range issues {
		if is.Severity == sev {
			out = append(out, is)
		}
	}
	return out
}

// runtimeEnv holds process-wide collaborators set up from the job.
type runtimeEnv struct {
	log      *slog.Logger
	cache    cache.Store
	closers  []func() error
	shutdown func(context.Context) error
}

// setupRuntime configures logging, metrics, tracing and the partial cache.
// Failures of optional backends are logged and fall back to no-ops.
func setupRuntime(ctx context.Context, job config.Job, stderr io.Writer) (*runtimeEnv, error) {
	log, closeLog, err := logging.Setup(job.Logging, stderr)
	if err != nil {
		return nil, err
	}
	env := &runtimeEnv{log: log, closers: []func() error{closeLog}}

	switch job.Metrics.Backend {
	case "prometheus":
		b, err := prompush.NewBackend(job.Name, job.Metrics.PushgatewayURL)
		if err != nil {
			log.Warn("metrics disabled", "backend", "prometheus", "err", err)
			break
		}
		metrics.SetBackend(b)
		env.closers = append(env.closers, metrics.Flush)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      job.Metrics.DatadogAddr,
			Namespace: job.Metrics.Namespace,
			Tags:      job.Metrics.Tags,
		})
		if err != nil {
			log.Warn("metrics disabled", "backend", "datadog", "err", err)
			break
		}
		metrics.SetBackend(b)
		env.closers = append(env.closers, b.Close)
	}

	tp, err := telemetry.Init(ctx, job.Telemetry, version)
	if err != nil {
		log.Warn("tracing disabled", "err", err)
	}
	env.shutdown = tp.Shutdown

	store, err := cache.Open(job.Cache)
	if err != nil {
		env.close()
		return nil, err
	}
	env.cache = store
	env.closers = append(env.closers, store.Close)
	return env, nil
}

// close releases everything in reverse order of setup.
func (e *runtimeEnv) close() {
	if e.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.shutdown(ctx); err != nil {
			e.log.Warn("telemetry shutdown", "err", err)
		}
		cancel()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Warn("shutdown", "err", err)
		}
	}
}

func storageConfig(s config.Storage) storage.Config {
	return storage.Config{Kind: s.Kind, DSN: s.DSN, Table: s.Table}
}

// loadSchema reads a canonical schema from a JSON file, or from the registry
// when file is empty.
func loadSchema(ctx context.Context, job config.Job, name, file string) (*schema.Schema, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var s schema.Schema
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		return &s, nil
	}
	if job.Storage.Kind == "" {
		return nil, errors.New("no --schema file given and storage.kind is not configured")
	}
	repo, err := storage.New(ctx, storageConfig(job.Storage))
	if err != nil {
		return nil, err
	}
	defer repo.Close()
	rec, err := repo.LoadSchema(ctx, name)
	if err != nil {
		return nil, err
	}
	return rec.Schema, nil
}
