package ddl

// ColumnDef describes one column of a generated table.
//
//   - Name: column identifier (unquoted; renderers quote it)
//   - Source: the inferred field the column was derived from
//   - SQLType: dialect type (e.g. TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression
type ColumnDef struct {
	Name       string
	Source     string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the dotted table name (e.g. "schema.table") and its ordered
// columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TypeMapper maps a logical kind (see Kind* constants) to a dialect type.
type TypeMapper func(kind string) string
