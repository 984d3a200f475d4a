// Package ddl renders MySQL tables for inferred schemas.
package ddl

import (
	"strings"

	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// Dialect quotes identifiers with backticks and emits IF NOT EXISTS.
var Dialect = gddl.Dialect{Name: "mysql ddl", QuoteIdent: QuoteIdent, IfNotExists: true}

// MapType maps a logical kind to a MySQL column type.
func MapType(kind string) string {
	switch kind {
	case gddl.KindBigInt:
		return "BIGINT"
	case gddl.KindFloat:
		return "DOUBLE"
	case gddl.KindBoolean:
		return "BOOLEAN"
	case gddl.KindDate:
		return "DATE"
	case gddl.KindDatetime:
		return "DATETIME(6)"
	default:
		return "LONGTEXT"
	}
}

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// BuildCreateTableSQL renders def for MySQL.
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
