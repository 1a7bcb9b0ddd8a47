// Package exchangerate persists the administered rate table.
package exchangerate

import (
	"context"
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// ExchangeRate is an administered (from, to) rate row
type ExchangeRate struct {
	ID           int64
	FromCurrency currency.Code
	ToCurrency   currency.Code
	Rate         money.Amount
	InverseRate  null.String
	Active       bool
	UpdatedAt    time.Time
}

// StoredInverse parses the stored inverse rate if present
func (e *ExchangeRate) StoredInverse() (money.Amount, bool) {
	if !e.InverseRate.Valid || e.InverseRate.String == "" {
		return money.Zero, false
	}
	a, err := money.Parse(e.InverseRate.String)
	if err != nil {
		return money.Zero, false
	}
	return a, true
}

const selectColumns = `id, from_currency, to_currency, rate, inverse_rate, active, updated_at`

func scan(row interface{ Scan(...interface{}) error }) (*ExchangeRate, error) {
	var e ExchangeRate
	err := row.Scan(&e.ID, &e.FromCurrency, &e.ToCurrency, &e.Rate,
		&e.InverseRate, &e.Active, &e.UpdatedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &e, nil
}

// One returns the active rate row for (from, to)
func One(ctx context.Context, exec repository.Executor, from, to currency.Code) (*ExchangeRate, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM exchange_rates
		 WHERE from_currency = ? AND to_currency = ? AND active = ?`),
		from.String(), to.String(), true))
}

// All returns the rate table, optionally restricted to active rows
func All(ctx context.Context, exec repository.Executor, activeOnly bool) ([]ExchangeRate, error) {
	query := `SELECT ` + selectColumns + ` FROM exchange_rates`
	var args []interface{}
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY from_currency, to_currency`
	rows, err := exec.QueryContext(ctx, repository.Rebind(query), args...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []ExchangeRate
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, database.TranslateError(rows.Err())
}

// AllFromBase returns active rates quoted from the base currency
func AllFromBase(ctx context.Context, exec repository.Executor, base currency.Code) ([]ExchangeRate, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM exchange_rates
		 WHERE from_currency = ? AND active = ? ORDER BY to_currency`),
		base.String(), true)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []ExchangeRate
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, database.TranslateError(rows.Err())
}

// Upsert inserts or replaces the rate for (from, to)
func Upsert(ctx context.Context, exec repository.Executor, e *ExchangeRate) error {
	now := time.Now().UTC()
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE exchange_rates SET rate = ?, inverse_rate = ?, active = ?, updated_at = ?
		 WHERE from_currency = ? AND to_currency = ?`),
		e.Rate, e.InverseRate, e.Active, now,
		e.FromCurrency.String(), e.ToCurrency.String())
	if err != nil {
		return database.TranslateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.TranslateError(err)
	}
	if n > 0 {
		return nil
	}
	_, err = repository.InsertReturningID(ctx, exec,
		`INSERT INTO exchange_rates (from_currency, to_currency, rate, inverse_rate, active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.FromCurrency.String(), e.ToCurrency.String(), e.Rate, e.InverseRate,
		e.Active, now)
	return err
}
