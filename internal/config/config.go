// Package config defines the job file that drives schema inference: which
// datasets to read, how to partition and merge them, where to cache partials,
// where to register the resulting schemas and how to report progress.
//
// Job files are YAML or JSON. Field names mirror the file structure:
//
//	name: nightly
//	inference: { max_choices: 100, partition_size: 10000, workers: 4 }
//	datasets:
//	  - name: users
//	    type: csv
//	    params: { path: data/users.csv, parse_dates: true }
//	cache:   { kind: redis, addr: localhost:6379 }
//	storage: { kind: sqlite, dsn: aragog.db, create_tables: true }
//
// Dataset params are free-form Options bags; each reader decodes the keys it
// understands into its own typed struct.
package config

// Dataset types understood by the readers.
const (
	TypeCSV        = "csv"
	TypeJSON       = "json"
	TypeNDJSON     = "ndjson"
	TypeAPIDRF     = "api_drf"
	TypeAPIGeneric = "api_generic"
	// TypeMulti joins several source datasets on a key column.
	TypeMulti = "multi"
)

// Join modes of a multi dataset. They follow the usual relational meaning;
// JoinInner is the default.
const (
	JoinInner = "inner"
	JoinLeft  = "left"
	JoinRight = "right"
	JoinOuter = "outer"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	// Name labels metrics, traces and log lines for the run.
	Name      string    `yaml:"name" json:"name"`
	Datasets  []Dataset `yaml:"datasets" json:"datasets"`
	Inference Inference `yaml:"inference" json:"inference"`
	Cache     Cache     `yaml:"cache" json:"cache"`
	Storage   Storage   `yaml:"storage" json:"storage"`
	Logging   Logging   `yaml:"logging" json:"logging"`
	Metrics   Metrics   `yaml:"metrics" json:"metrics"`
	Telemetry Telemetry `yaml:"telemetry" json:"telemetry"`
}

// Dataset names one input and how to read it.
type Dataset struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	// Type is one of the Type* constants.
	Type string `yaml:"type" json:"type" mapstructure:"type"`
	// Params carries reader options, e.g. path, url, columns, has_header,
	// comma, parse_dates, records, flatten, credentials. Multi datasets list
	// their children under sources and the join under join_params.
	Params Options `yaml:"params" json:"params" mapstructure:"params"`
}

// Join configures how a multi dataset combines its sources.
type Join struct {
	// On names the key field every source must carry.
	On string `mapstructure:"on"`
	// How is one of the Join* constants.
	How string `mapstructure:"how"`
}

// MultiParams are the params of a multi dataset.
type MultiParams struct {
	Sources []Dataset `mapstructure:"sources"`
	Join    Join      `mapstructure:"join_params"`
}

// Multi decodes the multi-dataset params of d. An empty join mode becomes
// JoinInner.
func (d Dataset) Multi() (MultiParams, error) {
	var mp MultiParams
	if err := d.Params.Decode(&mp); err != nil {
		return MultiParams{}, err
	}
	if mp.Join.How == "" {
		mp.Join.How = JoinInner
	}
	for i := range mp.Sources {
		if mp.Sources[i].Params == nil {
			mp.Sources[i].Params = Options{}
		}
	}
	return mp, nil
}

// Inference tunes the schema engine and the runner.
type Inference struct {
	// MaxChoices caps the distinct values tracked per field.
	MaxChoices int `yaml:"max_choices" json:"max_choices"`
	// WidenNumeric resolves {integer, float} to float instead of failing.
	WidenNumeric bool `yaml:"widen_numeric" json:"widen_numeric"`
	// PartitionSize is the number of records per partition.
	PartitionSize int `yaml:"partition_size" json:"partition_size"`
	// Workers bounds concurrent partition builds.
	Workers int `yaml:"workers" json:"workers"`
	// FanIn is the arity of the merge tree.
	FanIn int `yaml:"fan_in" json:"fan_in"`
}

// Cache selects where partial schemas are memoized.
type Cache struct {
	// Kind is "none", "lru" or "redis".
	Kind     string `yaml:"kind" json:"kind"`
	Size     int    `yaml:"size" json:"size"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	// TTL is a Go duration string, e.g. "24h". Empty keeps entries forever.
	TTL string `yaml:"ttl" json:"ttl"`
}

// Storage selects the schema registry backend.
type Storage struct {
	// Kind is a registered backend ("postgres", "sqlite", "mssql", "mysql").
	// Empty disables the registry.
	Kind string `yaml:"kind" json:"kind"`
	DSN  string `yaml:"dsn" json:"dsn"`
	// Table is the registry table.
	Table string `yaml:"table" json:"table"`
	// CreateTables also creates one table per dataset shaped after its schema.
	CreateTables bool `yaml:"create_tables" json:"create_tables"`
	// Schema qualifies created dataset tables, e.g. "public".
	Schema string `yaml:"schema" json:"schema"`
}

// Logging configures log/slog output.
type Logging struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "prometheus" or "datadog".
	Backend        string   `yaml:"backend" json:"backend"`
	PushgatewayURL string   `yaml:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string   `yaml:"datadog_addr" json:"datadog_addr"`
	Namespace      string   `yaml:"namespace" json:"namespace"`
	Tags           []string `yaml:"tags" json:"tags"`
}

// Telemetry configures OpenTelemetry tracing.
type Telemetry struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Endpoint is the OTLP gRPC collector address.
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	ServiceName string `yaml:"service_name" json:"service_name"`
}
