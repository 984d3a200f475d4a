package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single lint finding. Path is a dotted path into the job, e.g.
// "datasets[1].params.url".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob lints a decoded job without mutating it.
func ValidateJob(j Job) []Issue {
	var issues []Issue
	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{SeverityError, "name", "name must not be empty; it labels metrics and registry rows"})
	}
	issues = append(issues, validateDatasets(j.Datasets)...)
	issues = append(issues, validateInference(j.Inference)...)
	issues = append(issues, validateCache(j.Cache)...)
	issues = append(issues, validateStorage(j.Storage)...)
	issues = append(issues, validateMetrics(j.Metrics)...)
	issues = append(issues, validateTelemetry(j.Telemetry)...)
	return issues
}

func validateDatasets(ds []Dataset) []Issue {
	var issues []Issue
	if len(ds) == 0 {
		return append(issues, Issue{SeverityError, "datasets", "at least one dataset is required"})
	}
	seen := map[string]int{}
	for i, d := range ds {
		p := fmt.Sprintf("datasets[%d]", i)
		if strings.TrimSpace(d.Name) == "" {
			issues = append(issues, Issue{SeverityError, p + ".name", "dataset name must not be empty"})
		} else if j, dup := seen[d.Name]; dup {
			issues = append(issues, Issue{SeverityError, p + ".name", fmt.Sprintf("duplicate dataset name %q (also datasets[%d])", d.Name, j)})
		} else {
			seen[d.Name] = i
		}

		issues = append(issues, validateDataset(p, d)...)
	}
	return issues
}

// validateDataset checks the type and params of one dataset, recursing into
// the sources of a multi dataset.
func validateDataset(p string, d Dataset) []Issue {
	var issues []Issue
	path, rawURL := d.Params.String("path", ""), d.Params.String("url", "")
	switch d.Type {
	case TypeCSV, TypeJSON, TypeNDJSON:
		if path == "" && rawURL == "" && d.Params.String("list_file", "") == "" {
			issues = append(issues, Issue{SeverityError, p + ".params", d.Type + " dataset requires params.path, params.list_file or params.url"})
		}
		if path != "" && rawURL != "" {
			issues = append(issues, Issue{SeverityWarning, p + ".params", "both path and url set; path wins"})
		}
	case TypeAPIDRF, TypeAPIGeneric:
		if rawURL == "" {
			issues = append(issues, Issue{SeverityError, p + ".params.url", d.Type + " dataset requires params.url"})
		}
	case TypeMulti:
		issues = append(issues, validateMulti(p, d)...)
	case "":
		issues = append(issues, Issue{SeverityError, p + ".type", "dataset type must not be empty"})
	default:
		issues = append(issues, Issue{SeverityError, p + ".type", fmt.Sprintf("unknown dataset type %q", d.Type)})
	}
	if rawURL != "" {
		if u, err := url.Parse(rawURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			issues = append(issues, Issue{SeverityError, p + ".params.url", fmt.Sprintf("invalid http(s) url %q", rawURL)})
		}
	}
	if d.Type == TypeCSV {
		if c := d.Params.String("comma", ","); len([]rune(c)) != 1 {
			issues = append(issues, Issue{SeverityError, p + ".params.comma", "comma must be a single character"})
		}
	}
	if v, ok := d.Params["columns"]; ok && len(d.Params.StringSlice("columns")) == 0 {
		issues = append(issues, Issue{SeverityWarning, p + ".params.columns", fmt.Sprintf("columns %v selects no fields", v)})
	}
	return issues
}

func validateMulti(p string, d Dataset) []Issue {
	mp, err := d.Multi()
	if err != nil {
		return []Issue{{SeverityError, p + ".params", fmt.Sprintf("multi params: %v", err)}}
	}
	var issues []Issue
	if len(mp.Sources) < 2 {
		issues = append(issues, Issue{SeverityError, p + ".params.sources", "multi dataset requires at least two sources"})
	}
	if strings.TrimSpace(mp.Join.On) == "" {
		issues = append(issues, Issue{SeverityError, p + ".params.join_params.on", "multi dataset requires a join key"})
	}
	switch mp.Join.How {
	case JoinInner, JoinLeft, JoinRight, JoinOuter:
	default:
		issues = append(issues, Issue{SeverityError, p + ".params.join_params.how", fmt.Sprintf("unknown join mode %q (inner, left, right, outer)", mp.Join.How)})
	}
	for i, src := range mp.Sources {
		issues = append(issues, validateDataset(fmt.Sprintf("%s.params.sources[%d]", p, i), src)...)
	}
	return issues
}

func validateInference(in Inference) []Issue {
	var issues []Issue
	if in.MaxChoices < 0 {
		issues = append(issues, Issue{SeverityError, "inference.max_choices", "max_choices must be >= 0"})
	}
	if in.PartitionSize < 0 {
		issues = append(issues, Issue{SeverityError, "inference.partition_size", "partition_size must be >= 0"})
	}
	if in.Workers < 0 {
		issues = append(issues, Issue{SeverityError, "inference.workers", "workers must be >= 0"})
	}
	if in.FanIn == 1 || in.FanIn < 0 {
		issues = append(issues, Issue{SeverityError, "inference.fan_in", "fan_in must be at least 2"})
	}
	if in.WidenNumeric {
		issues = append(issues, Issue{SeverityWarning, "inference.widen_numeric", "integer/float conflicts will resolve to float instead of failing"})
	}
	return issues
}

func validateCache(c Cache) []Issue {
	var issues []Issue
	switch c.Kind {
	case "", "none", "lru":
	case "redis":
		if strings.TrimSpace(c.Addr) == "" {
			issues = append(issues, Issue{SeverityError, "cache.addr", "redis cache requires addr"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "cache.kind", fmt.Sprintf("unknown cache kind %q", c.Kind)})
	}
	if c.TTL != "" {
		if _, err := time.ParseDuration(c.TTL); err != nil {
			issues = append(issues, Issue{SeverityError, "cache.ttl", fmt.Sprintf("invalid duration %q", c.TTL)})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if s.Kind == "" {
		if s.CreateTables {
			issues = append(issues, Issue{SeverityWarning, "storage.create_tables", "create_tables has no effect without storage.kind"})
		}
		return issues
	}
	known := map[string]struct{}{"postgres": {}, "sqlite": {}, "mssql": {}, "mysql": {}}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{SeverityWarning, "storage.kind", fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind)})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "storage requires a dsn"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "prometheus":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url", "prometheus backend requires pushgateway_url"})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{SeverityWarning, "metrics.datadog_addr", "datadog_addr empty; the client default agent address is used"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", m.Backend)})
	}
	return issues
}

func validateTelemetry(t Telemetry) []Issue {
	if t.Enabled && strings.TrimSpace(t.Endpoint) == "" {
		return []Issue{{SeverityError, "telemetry.endpoint", "tracing enabled without an OTLP endpoint"}}
	}
	return nil
}
