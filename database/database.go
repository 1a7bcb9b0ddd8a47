// Package database manages the SQL connection shared by all repositories and
// provides the serializable transaction scope every balance mutation runs in.
package database

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/rhinoxpay/rhinoxcore/common"
)

// Supported drivers
const (
	DBSQLite3  = "sqlite3"
	DBPostgres = "postgres"
)

var (
	// DB is the global database instance populated at startup
	DB = &Instance{}

	// ErrNilInstance defines an error for a nil database instance
	ErrNilInstance = errors.New("nil database instance")
	// ErrNilConfig defines an error for a nil database config
	ErrNilConfig = errors.New("nil database config")
	// ErrNilSQL defines an error for an unset SQL connection
	ErrNilSQL = errors.New("database connection not established")
	// ErrDatabaseSupportDisabled defines an error for disabled db support
	ErrDatabaseSupportDisabled = errors.New("database support is disabled")
	// ErrNoDatabaseProvided defines an error when no database name is set
	ErrNoDatabaseProvided = errors.New("no database provided")
)

// Config holds connection details for either driver
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     uint16 `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	Verbose  bool   `mapstructure:"verbose"`
}

// Instance holds the database connection and its config
type Instance struct {
	SQL       *sql.DB
	m         sync.RWMutex
	config    *Config
	connected bool
}

// SetConfig safely sets the instance config
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return ErrNilInstance
	}
	if cfg == nil {
		return ErrNilConfig
	}
	i.m.Lock()
	i.config = cfg
	i.m.Unlock()
	return nil
}

// GetConfig safely returns a copy of the config
func (i *Instance) GetConfig() *Config {
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return &Config{}
	}
	cpy := *i.config
	return &cpy
}

// SetSQLiteConnection safely sets the connection to use SQLite
func (i *Instance) SetSQLiteConnection(con *sql.DB) {
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(1)
}

// SetPostgresConnection safely sets the connection to use Postgres
func (i *Instance) SetPostgresConnection(con *sql.DB) error {
	if err := con.Ping(); err != nil {
		return err
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(10)
	i.SQL.SetMaxIdleConns(2)
	i.SQL.SetConnMaxLifetime(time.Hour)
	return nil
}

// SetConnected safely sets the connected status
func (i *Instance) SetConnected(v bool) {
	i.m.Lock()
	i.connected = v
	i.m.Unlock()
}

// IsConnected safely checks the connection status
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// GetSQL returns the underlying connection
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, ErrNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return nil, ErrNilSQL
	}
	return i.SQL, nil
}

// CloseConnection safely disconnects the instance
func (i *Instance) CloseConnection() error {
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return ErrNilSQL
	}
	i.connected = false
	return i.SQL.Close()
}

// Ping pings the database
func (i *Instance) Ping() error {
	if i == nil {
		return ErrNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return ErrNilSQL
	}
	return i.SQL.Ping()
}

// TranslateError maps driver-level failures onto the domain error taxonomy.
// Unique violations become ErrDuplicateKey, foreign key violations become
// ErrNotFound, absent rows become ErrNotFound.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return common.ErrDuplicateKey
		case "23503":
			return common.ErrNotFound
		case "40001", "40P01":
			return common.ErrConflict
		}
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return common.ErrDuplicateKey
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return common.ErrNotFound
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"):
		return common.ErrConflict
	}
	return err
}

// IsRetryable reports whether an error is a serialization conflict worth
// retrying inside WithTransaction
func IsRetryable(err error) bool {
	return errors.Is(TranslateError(err), common.ErrConflict)
}
