package ddl

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	pg := Dialect{Name: "postgres ddl", QuoteIdent: DoubleQuote, IfNotExists: true}

	tests := []struct {
		name        string
		dialect     Dialect
		def         TableDef
		wantSQL     string
		wantErr     bool
		errContains string
	}{
		{
			name:    "generic with pk and default",
			dialect: Generic,
			def: TableDef{
				FQN: "public.events",
				Columns: []ColumnDef{
					{Name: "id", SQLType: "BIGINT", PrimaryKey: true},
					{Name: "note", SQLType: "TEXT", Nullable: true, Default: "''"},
				},
			},
			wantSQL: "CREATE TABLE public.events (\n  id BIGINT NOT NULL,\n  note TEXT DEFAULT '',\n  PRIMARY KEY (id)\n);",
		},
		{
			name:    "quoted with guard",
			dialect: pg,
			def: TableDef{
				FQN:     "raw.people",
				Columns: []ColumnDef{{Name: "full name", SQLType: "TEXT", Nullable: true}},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"raw\".\"people\" (\n  \"full name\" TEXT\n);",
		},
		{
			name:        "empty fqn",
			dialect:     Generic,
			def:         TableDef{Columns: []ColumnDef{{Name: "a", SQLType: "TEXT"}}},
			wantErr:     true,
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns",
			dialect:     pg,
			def:         TableDef{FQN: "t"},
			wantErr:     true,
			errContains: "postgres ddl: at least one column is required",
		},
		{
			name:        "empty column name",
			dialect:     Generic,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "TEXT"}}},
			wantErr:     true,
			errContains: "column with empty name in table t",
		},
		{
			name:        "missing type",
			dialect:     Generic,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}}},
			wantErr:     true,
			errContains: "column a missing SQLType",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tt.dialect, tt.def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BuildCreateTableSQL() error = nil, want error containing %q", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("BuildCreateTableSQL() error = %q, want to contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCreateTableSQL() unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("BuildCreateTableSQL() =\n%s\nwant\n%s", got, tt.wantSQL)
			}
		})
	}
}
