// Package wallet persists fiat wallets and the synthetic crypto wallets that
// anchor ledger entries. Fiat rows carry authoritative balances; crypto rows
// exist only so transactions have a wallet to reference.
package wallet

import (
	"context"
	"database/sql"
	"time"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Wallet kinds
const (
	KindFiat   = "fiat"
	KindCrypto = "crypto"
)

// Wallet is a balance row for one (user, currency, kind)
type Wallet struct {
	ID            int64
	UserID        int64
	Currency      currency.Code
	Kind          string
	Balance       money.Amount
	LockedBalance money.Amount
	Active        bool
	Metadata      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available returns balance minus locked balance
func (w *Wallet) Available() money.Amount {
	return w.Balance.Sub(w.LockedBalance)
}

const selectColumns = `id, user_id, currency, kind, balance, locked_balance,
	active, metadata, created_at, updated_at`

func scan(row interface{ Scan(...interface{}) error }) (*Wallet, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Currency, &w.Kind, &w.Balance,
		&w.LockedBalance, &w.Active, &w.Metadata, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &w, nil
}

// Insert stores a new wallet row
func Insert(ctx context.Context, exec repository.Executor, w *Wallet) (int64, error) {
	metadata := w.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO wallets (user_id, currency, kind, balance, locked_balance, active, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.UserID, w.Currency.String(), w.Kind, w.Balance, w.LockedBalance,
		w.Active, metadata)
}

// One returns a wallet by id
func One(ctx context.Context, exec repository.Executor, id int64) (*Wallet, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM wallets WHERE id = ?`), id))
}

// OneByUserCurrency returns the wallet for (user, currency, kind)
func OneByUserCurrency(ctx context.Context, exec repository.Executor, userID int64, code currency.Code, kind string) (*Wallet, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM wallets WHERE user_id = ? AND currency = ? AND kind = ?`),
		userID, code.String(), kind))
}

// AllByUser returns every wallet owned by the user, optionally filtered by
// kind (empty string matches both)
func AllByUser(ctx context.Context, exec repository.Executor, userID int64, kind string) ([]Wallet, error) {
	query := `SELECT ` + selectColumns + ` FROM wallets WHERE user_id = ?`
	args := []interface{}{userID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY currency`
	rows, err := exec.QueryContext(ctx, repository.Rebind(query), args...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []Wallet
	for rows.Next() {
		w, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, database.TranslateError(rows.Err())
}

// UpdateBalances persists new balance and locked balance values. Callers are
// responsible for invariant checks; this is a plain write.
func UpdateBalances(ctx context.Context, exec repository.Executor, id int64, balance, locked money.Amount) error {
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE wallets SET balance = ?, locked_balance = ?, updated_at = ? WHERE id = ?`),
		balance, locked, time.Now().UTC(), id)
	if err != nil {
		return database.TranslateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.TranslateError(err)
	}
	if n == 0 {
		return database.TranslateError(sql.ErrNoRows)
	}
	return nil
}

// WalletIDsByUser returns the ids of every wallet owned by the user
func WalletIDsByUser(ctx context.Context, exec repository.Executor, userID int64) ([]int64, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT id FROM wallets WHERE user_id = ?`), userID)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, database.TranslateError(err)
		}
		out = append(out, id)
	}
	return out, database.TranslateError(rows.Err())
}
