// Package repository holds the executor contract and dialect helpers shared
// by the per-entity repositories.
package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"sync"

	"github.com/rhinoxpay/rhinoxcore/database"
)

// Executor is satisfied by both *sql.DB and *sql.Tx so every repository
// operation can run inside or outside a transaction scope.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	m       sync.RWMutex
	dialect = database.DBSQLite3
)

// SetSQLDialect sets the active dialect for placeholder rebinding
func SetSQLDialect(d string) {
	m.Lock()
	dialect = d
	m.Unlock()
}

// GetSQLDialect returns the active dialect
func GetSQLDialect() string {
	m.RLock()
	defer m.RUnlock()
	return dialect
}

// Rebind converts ?-style placeholders to the active dialect's form.
// Queries are written with ? throughout; postgres gets $1..$n.
func Rebind(query string) string {
	if GetSQLDialect() != database.DBPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
