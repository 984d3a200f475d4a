package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load.
const (
	DefaultMaxChoices    = 100
	DefaultPartitionSize = 10000
	DefaultFanIn         = 8
	DefaultCacheSize     = 1024
	DefaultLogLevel      = "info"
	DefaultServiceName   = "aragog"
)

// Load reads a job file. Files ending in .json are decoded as JSON, anything
// else as YAML. Defaults and ARAGOG_* environment overrides are applied.
func Load(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job %s: %w", path, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	job, err := Parse(b, format)
	if err != nil {
		return Job{}, fmt.Errorf("parse job %s: %w", path, err)
	}
	ApplyEnv(&job, os.LookupEnv)
	return job, nil
}

// Parse decodes a job document ("yaml" or "json") and applies defaults.
// Unknown JSON keys are rejected.
func Parse(b []byte, format string) (Job, error) {
	var job Job
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&job); err != nil {
			return Job{}, err
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&job); err != nil {
			return Job{}, err
		}
	default:
		return Job{}, fmt.Errorf("unknown job format %q", format)
	}
	ApplyDefaults(&job)
	return job, nil
}

// ApplyDefaults fills zero values with the package defaults.
func ApplyDefaults(job *Job) {
	if job.Inference.MaxChoices <= 0 {
		job.Inference.MaxChoices = DefaultMaxChoices
	}
	if job.Inference.PartitionSize <= 0 {
		job.Inference.PartitionSize = DefaultPartitionSize
	}
	if job.Inference.FanIn < 2 {
		job.Inference.FanIn = DefaultFanIn
	}
	if job.Cache.Kind == "" {
		job.Cache.Kind = "none"
	}
	if job.Cache.Size <= 0 {
		job.Cache.Size = DefaultCacheSize
	}
	if job.Metrics.Backend == "" {
		job.Metrics.Backend = "none"
	}
	if job.Logging.Level == "" {
		job.Logging.Level = DefaultLogLevel
	}
	if job.Telemetry.ServiceName == "" {
		job.Telemetry.ServiceName = DefaultServiceName
	}
	for i := range job.Datasets {
		if job.Datasets[i].Params == nil {
			job.Datasets[i].Params = Options{}
		}
	}
}

// ApplyEnv overrides connection settings from the environment so secrets can
// stay out of job files:
//
//	ARAGOG_STORAGE_KIND, ARAGOG_STORAGE_DSN, ARAGOG_CACHE_ADDR,
//	ARAGOG_CACHE_PASSWORD, ARAGOG_LOG_LEVEL, ARAGOG_WORKERS,
//	ARAGOG_PUSHGATEWAY_URL, ARAGOG_DATADOG_ADDR, ARAGOG_OTLP_ENDPOINT
//
// Setting ARAGOG_OTLP_ENDPOINT also enables tracing.
func ApplyEnv(job *Job, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("ARAGOG_STORAGE_KIND", &job.Storage.Kind)
	set("ARAGOG_STORAGE_DSN", &job.Storage.DSN)
	set("ARAGOG_CACHE_ADDR", &job.Cache.Addr)
	set("ARAGOG_CACHE_PASSWORD", &job.Cache.Password)
	set("ARAGOG_LOG_LEVEL", &job.Logging.Level)
	set("ARAGOG_PUSHGATEWAY_URL", &job.Metrics.PushgatewayURL)
	set("ARAGOG_DATADOG_ADDR", &job.Metrics.DatadogAddr)
	if v, ok := lookup("ARAGOG_OTLP_ENDPOINT"); ok && v != "" {
		job.Telemetry.Endpoint = v
		job.Telemetry.Enabled = true
	}
	if v, ok := lookup("ARAGOG_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			job.Inference.Workers = n
		}
	}
}

// Dataset returns the dataset named name.
func (j Job) Dataset(name string) (Dataset, bool) {
	for _, d := range j.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}
