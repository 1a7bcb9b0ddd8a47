// Package sqlite3 establishes a file-backed SQLite connection for the global
// database instance.
package sqlite3

import (
	"database/sql"
	"path/filepath"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/rhinoxpay/rhinoxcore/database"
)

// Connect opens a connection to an SQLite database and registers it on the
// global instance
func Connect(cfg *database.Config, dataPath string) (*database.Instance, error) {
	if cfg == nil {
		return nil, database.ErrNilConfig
	}
	if cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}

	dsn := "file:" + filepath.Join(dataPath, cfg.Database) +
		"?_loc=UTC&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite3 open")
	}

	if err = database.DB.SetConfig(cfg); err != nil {
		return nil, err
	}
	database.DB.SetSQLiteConnection(db)
	database.DB.SetConnected(true)
	return database.DB, nil
}
