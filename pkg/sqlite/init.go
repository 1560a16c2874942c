// Package sqlite registers the database driver used by the storage
// layer. Full-text search relies on the FTS5 extension, so binaries
// must be built with the sqlite_fts5 build tag.
package sqlite

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

func init() {
	sql.Register("sqlite3_fts", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec("PRAGMA journal_mode = WAL", nil); err != nil {
				return err
			}
			_, err := conn.Exec("PRAGMA foreign_keys = ON", nil)
			return err
		},
	})
}
