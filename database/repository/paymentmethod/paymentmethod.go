// Package paymentmethod persists user payout channels used for P2P
// settlement matching.
package paymentmethod

import (
	"context"
	"strings"
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
)

// Method types
const (
	TypeBankAccount = "bank_account"
	TypeMobileMoney = "mobile_money"
	TypeRhinoxPayID = "rhinoxpay_id"
)

// PaymentMethod is a user-owned payout channel
type PaymentMethod struct {
	ID             int64
	UserID         int64
	Type           string
	BankName       null.String
	ProviderID     null.String
	RhinoxCurrency null.String
	AccountName    null.String
	AccountNumber  null.String
	IsActive       bool
	CreatedAt      time.Time
}

const selectColumns = `id, user_id, type, bank_name, provider_id,
	rhinox_currency, account_name, account_number, is_active, created_at`

func scan(row interface{ Scan(...interface{}) error }) (*PaymentMethod, error) {
	var p PaymentMethod
	err := row.Scan(&p.ID, &p.UserID, &p.Type, &p.BankName, &p.ProviderID,
		&p.RhinoxCurrency, &p.AccountName, &p.AccountNumber, &p.IsActive,
		&p.CreatedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &p, nil
}

// Insert stores a new payment method
func Insert(ctx context.Context, exec repository.Executor, p *PaymentMethod) (int64, error) {
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO payment_methods (user_id, type, bank_name, provider_id,
		 rhinox_currency, account_name, account_number, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Type, p.BankName, p.ProviderID, p.RhinoxCurrency,
		p.AccountName, p.AccountNumber, p.IsActive)
}

// One returns a payment method by id
func One(ctx context.Context, exec repository.Executor, id int64) (*PaymentMethod, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM payment_methods WHERE id = ?`), id))
}

// AllByIDs returns the payment methods for the given ids
func AllByIDs(ctx context.Context, exec repository.Executor, ids []int64) ([]PaymentMethod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for x := range ids {
		placeholders[x] = "?"
		args[x] = ids[x]
	}
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM payment_methods WHERE id IN (`+
			strings.Join(placeholders, ",")+`)`), args...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []PaymentMethod
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, database.TranslateError(rows.Err())
}

// AllByUser returns every active payment method owned by the user
func AllByUser(ctx context.Context, exec repository.Executor, userID int64) ([]PaymentMethod, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM payment_methods WHERE user_id = ? AND is_active = ?`),
		userID, true)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	var out []PaymentMethod
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, database.TranslateError(rows.Err())
}
