// Package transaction persists immutable ledger entries. Rows are only ever
// inserted or status-completed; balances live on wallets and virtual
// accounts.
package transaction

import (
	"context"
	"strings"
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Transaction is a single signed ledger entry
type Transaction struct {
	ID            int64
	WalletID      int64
	Type          string
	Status        string
	Amount        money.Amount
	Currency      currency.Code
	Fee           money.Amount
	Reference     string
	Channel       null.String
	Description   null.String
	P2PStep       null.String
	CorrelationID null.String
	Metadata      string
	CreatedAt     time.Time
	CompletedAt   null.Time
}

const selectColumns = `id, wallet_id, type, status, amount, currency, fee,
	reference, channel, description, p2p_step, correlation_id, metadata,
	created_at, completed_at`

func scan(row interface{ Scan(...interface{}) error }) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Type, &t.Status, &t.Amount,
		&t.Currency, &t.Fee, &t.Reference, &t.Channel, &t.Description,
		&t.P2PStep, &t.CorrelationID, &t.Metadata, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &t, nil
}

// Insert stores a new ledger entry; a duplicate reference surfaces
// ErrDuplicateKey
func Insert(ctx context.Context, exec repository.Executor, t *Transaction) (int64, error) {
	metadata := t.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO transactions (wallet_id, type, status, amount, currency, fee,
		 reference, channel, description, p2p_step, correlation_id, metadata,
		 created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.WalletID, t.Type, t.Status, t.Amount, t.Currency.String(), t.Fee,
		t.Reference, t.Channel, t.Description, t.P2PStep, t.CorrelationID,
		metadata, createdAt, t.CompletedAt)
}

// One returns a ledger entry by id
func One(ctx context.Context, exec repository.Executor, id int64) (*Transaction, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM transactions WHERE id = ?`), id))
}

// OneByReference returns a ledger entry by its unique reference
func OneByReference(ctx context.Context, exec repository.Executor, reference string) (*Transaction, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM transactions WHERE reference = ?`), reference))
}

// Filter narrows history queries. Zero values are ignored.
type Filter struct {
	WalletIDs []int64
	Types     []string
	Status    string
	Currency  currency.Code
	Start     time.Time
	End       time.Time
	Limit     int
	Offset    int
}

// AllByFilter returns ledger entries matching the filter ordered newest
// first
func AllByFilter(ctx context.Context, exec repository.Executor, f *Filter) ([]Transaction, error) {
	if len(f.WalletIDs) == 0 {
		return nil, nil
	}
	var (
		conds []string
		args  []interface{}
	)
	placeholders := make([]string, len(f.WalletIDs))
	for x := range f.WalletIDs {
		placeholders[x] = "?"
		args = append(args, f.WalletIDs[x])
	}
	conds = append(conds, "wallet_id IN ("+strings.Join(placeholders, ",")+")")
	if len(f.Types) > 0 {
		tp := make([]string, len(f.Types))
		for x := range f.Types {
			tp[x] = "?"
			args = append(args, f.Types[x])
		}
		conds = append(conds, "type IN ("+strings.Join(tp, ",")+")")
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if !f.Currency.IsEmpty() {
		conds = append(conds, "currency = ?")
		args = append(args, f.Currency.String())
	}
	if !f.Start.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Start)
	}
	if !f.End.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.End)
	}
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}
	rows, err := exec.QueryContext(ctx, repository.Rebind(query), args...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, database.TranslateError(rows.Err())
}

// SumCompletedByWallet returns the signed sum of completed entry amounts
// minus completed fees for one wallet; the reconciliation input for the
// per-wallet balance invariant.
func SumCompletedByWallet(ctx context.Context, exec repository.Executor, walletID int64) (money.Amount, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT amount, fee FROM transactions WHERE wallet_id = ? AND status = ?`),
		walletID, "completed")
	if err != nil {
		return money.Zero, database.TranslateError(err)
	}
	defer rows.Close()
	total := money.Zero
	for rows.Next() {
		var amount, fee money.Amount
		if err := rows.Scan(&amount, &fee); err != nil {
			return money.Zero, database.TranslateError(err)
		}
		total = total.Add(amount).Sub(fee)
	}
	return total, database.TranslateError(rows.Err())
}
