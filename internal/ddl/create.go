// Package ddl turns a canonical schema into table definitions and renders
// them as CREATE TABLE statements.
//
// The model (TableDef, ColumnDef) is dialect-neutral. Describe and FromSchema
// form the storage-shape boundary: they map each inferred field to a logical
// kind, a column identifier and nullability. Backend packages under
// internal/storage/<kind>/ddl supply the dialect: a TypeMapper and a Dialect
// (or their own builder where the generic shape does not fit).
package ddl

import (
	"fmt"
	"strings"
)

// Dialect controls how BuildCreateTableSQL renders identifiers and guards.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string
	// QuoteIdent quotes a single identifier. Nil emits identifiers verbatim.
	QuoteIdent func(string) string
	// IfNotExists adds IF NOT EXISTS after CREATE TABLE.
	IfNotExists bool
}

// Generic emits identifiers as-is without IF NOT EXISTS.
var Generic = Dialect{Name: "ddl"}

// QuoteFQN quotes each dot-separated part of fqn with quote.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = quote(strings.TrimSpace(p))
	}
	return strings.Join(parts, ".")
}

// DoubleQuote quotes an identifier ANSI style, doubling embedded quotes.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ColumnList validates t and renders its column and primary key clauses.
// Dialects that need a different statement shape build around it.
func ColumnList(d Dialect, t TableDef) ([]string, error) {
	quote := d.QuoteIdent
	if quote == nil {
		quote = func(s string) string { return s }
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols, nil
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE [IF NOT EXISTS] <fqn> (
//	  <col> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...
//	  [PRIMARY KEY (<cols>)]
//	);
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	cols, err := ColumnList(d, t)
	if err != nil {
		return "", err
	}
	fqn := strings.TrimSpace(t.FQN)
	if d.QuoteIdent != nil {
		fqn = QuoteFQN(fqn, d.QuoteIdent)
	}
	guard := ""
	if d.IfNotExists {
		guard = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (\n  %s\n);", guard, fqn, strings.Join(cols, ",\n  ")), nil
}
