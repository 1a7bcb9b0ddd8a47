// Package postgres establishes a lib/pq backed connection for the global
// database instance.
package postgres

import (
	"database/sql"
	"fmt"

	"github.com/kat-co/vala"
	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/rhinoxpay/rhinoxcore/database"
)

// Connect opens a connection to a Postgres database and registers it on the
// global instance
func Connect(cfg *database.Config) (*database.Instance, error) {
	if cfg == nil {
		return nil, database.ErrNilConfig
	}

	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(cfg.Host, "host"),
		vala.StringNotEmpty(cfg.Username, "username"),
		vala.StringNotEmpty(cfg.Database, "database"),
		vala.Not(vala.Equals(cfg.Port, 0, "port")),
	).Check(); err != nil {
		return nil, err
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "postgres open")
	}

	if err = database.DB.SetConfig(cfg); err != nil {
		return nil, err
	}
	if err = database.DB.SetPostgresConnection(db); err != nil {
		return nil, errors.Wrap(err, "postgres connect")
	}
	database.DB.SetConnected(true)
	return database.DB, nil
}
