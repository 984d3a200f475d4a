// Package ddl renders SQLite tables for inferred schemas.
package ddl

import (
	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// Dialect quotes identifiers with double quotes and guards with IF NOT EXISTS.
var Dialect = gddl.Dialect{Name: "sqlite ddl", QuoteIdent: gddl.DoubleQuote, IfNotExists: true}

// MapType maps a logical kind to a SQLite column type. SQLite has type
// affinities rather than strict types: booleans are stored as 0/1 and
// dates as ISO-8601 text.
func MapType(kind string) string {
	switch kind {
	case gddl.KindBigInt, gddl.KindBoolean:
		return "INTEGER"
	case gddl.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders def as CREATE TABLE IF NOT EXISTS.
func BuildCreateTableSQL(def gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(Dialect, def)
}

// CreateTable renders the table for s named fqn.
func CreateTable(fqn string, s *schema.Schema) (string, error) {
	def, err := gddl.FromSchema(fqn, s, MapType)
	if err != nil {
		return "", err
	}
	return BuildCreateTableSQL(def)
}
