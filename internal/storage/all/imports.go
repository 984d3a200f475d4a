// Package all wires every built-in storage backend into the storage factory.
//
// Import it for side effects only:
//
//	import _ "github.com/xaviermathew/Aragog/internal/storage/all"
//
// which makes the "postgres", "mssql", "mysql" and "sqlite" kinds available to
// storage.New and storage.BuildCreateTable.
package all

import (
	_ "github.com/xaviermathew/Aragog/internal/storage/mssql"
	_ "github.com/xaviermathew/Aragog/internal/storage/mysql"
	_ "github.com/xaviermathew/Aragog/internal/storage/postgres"
	_ "github.com/xaviermathew/Aragog/internal/storage/sqlite"
)
