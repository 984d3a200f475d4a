// Package ddl renders Postgres tables for inferred schemas.
package ddl

import (
	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// Dialect double-quotes identifiers and emits CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{Name: "postgres ddl", QuoteIdent: gddl.DoubleQuote, IfNotExists: true}

// MapType maps a logical kind to a Postgres type.
//
//	bigint   -> BIGINT
//	float    -> DOUBLE PRECISION
//	boolean  -> BOOLEAN
//	date     -> DATE
//	datetime -> TIMESTAMP
//	text     -> TEXT
func MapType(kind string) string {
	switch kind {
	case gddl.KindBigInt:
		return "BIGINT"
	case gddl.KindFloat:
		return "DOUBLE PRECISION"
	case gddl.KindBoolean:
		return "BOOLEAN"
	case gddl.KindDate:
		return "DATE"
	case gddl.KindDatetime:
		// Inferred datetimes carry no zone.
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders def for Postgres.
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
