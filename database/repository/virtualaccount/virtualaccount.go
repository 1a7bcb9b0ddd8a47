// Package virtualaccount persists custodial crypto balances. The gap between
// account balance and available balance is the amount frozen in escrow for
// in-flight P2P orders.
package virtualaccount

import (
	"context"
	"database/sql"
	"time"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// VirtualAccount is a crypto balance row for one (user, blockchain, currency)
type VirtualAccount struct {
	ID               int64
	UserID           int64
	Blockchain       currency.Blockchain
	Currency         currency.Code
	AccountBalance   money.Amount
	AvailableBalance money.Amount
	Active           bool
	Frozen           bool
	Metadata         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FrozenAmount returns the escrowed portion of the account balance
func (v *VirtualAccount) FrozenAmount() money.Amount {
	return v.AccountBalance.Sub(v.AvailableBalance)
}

const selectColumns = `id, user_id, blockchain, currency, account_balance,
	available_balance, active, frozen, metadata, created_at, updated_at`

func scan(row interface{ Scan(...interface{}) error }) (*VirtualAccount, error) {
	var v VirtualAccount
	err := row.Scan(&v.ID, &v.UserID, &v.Blockchain, &v.Currency,
		&v.AccountBalance, &v.AvailableBalance, &v.Active, &v.Frozen,
		&v.Metadata, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &v, nil
}

// Insert stores a new virtual account row
func Insert(ctx context.Context, exec repository.Executor, v *VirtualAccount) (int64, error) {
	metadata := v.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO virtual_accounts (user_id, blockchain, currency, account_balance,
		 available_balance, active, frozen, metadata) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.UserID, v.Blockchain.String(), v.Currency.String(), v.AccountBalance,
		v.AvailableBalance, v.Active, v.Frozen, metadata)
}

// One returns a virtual account by id
func One(ctx context.Context, exec repository.Executor, id int64) (*VirtualAccount, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM virtual_accounts WHERE id = ?`), id))
}

// OneByUserCurrency returns the user's account holding the given currency.
// When more than one chain hosts the asset the first active account wins;
// the caller supplies the blockchain when it matters.
func OneByUserCurrency(ctx context.Context, exec repository.Executor, userID int64, code currency.Code) (*VirtualAccount, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM virtual_accounts
		 WHERE user_id = ? AND currency = ? AND active = ?
		 ORDER BY id LIMIT 1`),
		userID, code.String(), true))
}

// OneByUserChainCurrency returns the account for (user, blockchain, currency)
func OneByUserChainCurrency(ctx context.Context, exec repository.Executor, userID int64, chain currency.Blockchain, code currency.Code) (*VirtualAccount, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM virtual_accounts
		 WHERE user_id = ? AND blockchain = ? AND currency = ?`),
		userID, chain.String(), code.String()))
}

// AllByUser returns every virtual account owned by the user
func AllByUser(ctx context.Context, exec repository.Executor, userID int64) ([]VirtualAccount, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM virtual_accounts WHERE user_id = ? ORDER BY currency, blockchain`),
		userID)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []VirtualAccount
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, database.TranslateError(rows.Err())
}

// UpdateBalances persists new account and available balances
func UpdateBalances(ctx context.Context, exec repository.Executor, id int64, account, available money.Amount) error {
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE virtual_accounts SET account_balance = ?, available_balance = ?, updated_at = ?
		 WHERE id = ?`),
		account, available, time.Now().UTC(), id)
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
