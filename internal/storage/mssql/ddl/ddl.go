// Package ddl renders SQL Server tables for inferred schemas.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement is wrapped in an
// IF OBJECT_ID(...) IS NULL guard. Identifiers use bracket quoting.
package ddl

import (
	"fmt"
	"strings"

	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// Dialect renders bracket-quoted identifiers.
var Dialect = gddl.Dialect{Name: "mssql ddl", QuoteIdent: QuoteIdent}

// MapType maps a logical kind to a SQL Server column type. Text falls back to
// NVARCHAR(MAX).
func MapType(kind string) string {
	switch kind {
	case gddl.KindBigInt:
		return "BIGINT"
	case gddl.KindFloat:
		return "FLOAT"
	case gddl.KindBoolean:
		return "BIT"
	case gddl.KindDate:
		return "DATE"
	case gddl.KindDatetime:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// BuildCreateTableSQL returns a guarded T-SQL script:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL] [DEFAULT expr],
//	    PRIMARY KEY ([pk1])
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.ColumnList(Dialect, t)
	if err != nil {
		return "", err
	}
	fqn := QuoteFQN(strings.TrimSpace(t.FQN))
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"), fqn, strings.Join(cols, ",\n    "),
	), nil
}

// CreateTable renders the table for s named fqn.
func CreateTable(fqn string, s *schema.Schema) (string, error) {
	def, err := gddl.FromSchema(fqn, s, MapType)
	if err != nil {
		return "", err
	}
	return BuildCreateTableSQL(def)
}

// QuoteIdent quotes one identifier segment, escaping closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified name, skipping empty segments:
//
//	"dbo.Users" -> [dbo].[Users]
func QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
