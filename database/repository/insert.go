package repository

import (
	"context"

	"github.com/rhinoxpay/rhinoxcore/database"
)

// InsertReturningID runs an INSERT and returns the generated row id across
// dialects. lib/pq does not implement LastInsertId, so postgres inserts are
// suffixed with RETURNING id.
func InsertReturningID(ctx context.Context, exec Executor, query string, args ...interface{}) (int64, error) {
	if GetSQLDialect() == database.DBPostgres {
		var id int64
		err := exec.QueryRowContext(ctx, Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, database.TranslateError(err)
		}
		return id, nil
	}
	res, err := exec.ExecContext(ctx, Rebind(query), args...)
	if err != nil {
		return 0, database.TranslateError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, database.TranslateError(err)
	}
	return id, nil
}
