package ddl

import (
	"strings"
	"testing"

	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "simple", id: "name", want: "[name]"},
		{name: "empty", id: "", want: "[]"},
		{name: "with space", id: "order id", want: "[order id]"},
		{name: "escape closing bracket", id: "weird]id", want: "[weird]]id]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := QuoteIdent(tt.id); got != tt.want {
				t.Fatalf("QuoteIdent(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fqn  string
		want string
	}{
		{"Users", "[Users]"},
		{"dbo.Users", "[dbo].[Users]"},
		{" dbo . Users ", "[dbo].[Users]"},
		{".dbo..Users.", "[dbo].[Users]"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := QuoteFQN(tt.fqn); got != tt.want {
			t.Fatalf("QuoteFQN(%q) = %q, want %q", tt.fqn, got, tt.want)
		}
	}
}

func TestBuildCreateTableSQLBasic(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "dbo.Users",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: "BIGINT", PrimaryKey: true},
			{Name: "name", SQLType: "NVARCHAR(100)", Nullable: true, Default: "N''"},
		},
	}
	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := "" +
		"IF OBJECT_ID(N'[dbo].[Users]', N'U') IS NULL\n" +
		"BEGIN\n" +
		"  CREATE TABLE [dbo].[Users] (\n" +
		"    [id] BIGINT NOT NULL,\n" +
		"    [name] NVARCHAR(100) DEFAULT N'',\n" +
		"    PRIMARY KEY ([id])\n" +
		"  );\n" +
		"END;"
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	for _, def := range []gddl.TableDef{
		{FQN: "   ", Columns: []gddl.ColumnDef{{Name: "id", SQLType: "BIGINT"}}},
		{FQN: "dbo.Users"},
		{FQN: "dbo.Users", Columns: []gddl.ColumnDef{{Name: "  ", SQLType: "INT"}}},
		{FQN: "dbo.Users", Columns: []gddl.ColumnDef{{Name: "id"}}},
	} {
		got, err := BuildCreateTableSQL(def)
		if err == nil || got != "" {
			t.Fatalf("BuildCreateTableSQL(%+v) = %q, %v; want error", def, got, err)
		}
		if !strings.HasPrefix(err.Error(), "mssql ddl:") {
			t.Fatalf("error %q lacks dialect prefix", err)
		}
	}
}

func TestCreateTableMapsKinds(t *testing.T) {
	t.Parallel()

	s := &schema.Schema{Fields: map[string]schema.Field{
		"flag":  {Type: schema.Boolean, Required: true},
		"ratio": {Type: schema.Float},
		"seen":  {Type: schema.Datetime},
	}}
	got, err := CreateTable("dbo.facts", s)
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	for _, frag := range []string{"[flag] BIT NOT NULL", "[ratio] FLOAT", "[seen] DATETIME2"} {
		if !strings.Contains(got, frag) {
			t.Fatalf("CreateTable() missing %q:\n%s", frag, got)
		}
	}
}
