// Package p2porder persists P2P orders. Status transitions are owned by the
// p2p state machine; this package only reads and writes rows.
package p2porder

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Order is a single exchange between a counterparty and an ad's vendor
type Order struct {
	ID                   int64
	AdID                 int64
	VendorUserID         int64
	CounterpartyUserID   int64
	AdType               string
	CryptoCurrency       currency.Code
	FiatCurrency         currency.Code
	CryptoAmount         money.Amount
	FiatAmount           money.Amount
	Price                money.Amount
	PaymentMethodID      int64
	CounterpartyMethodID int64
	PaymentChannel       string
	Status               string
	BuyerID              int64
	SellerID             int64
	ChatThreadID         string
	ProcessingTime       int
	Metadata             string
	CreatedAt            time.Time
	AcceptedAt           null.Time
	ExpiresAt            null.Time
	PaymentMadeAt        null.Time
	PaymentReceivedAt    null.Time
	CompletedAt          null.Time
	CancelledAt          null.Time
}

const selectColumns = `id, ad_id, vendor_user_id, counterparty_user_id,
	ad_type, crypto_currency, fiat_currency, crypto_amount, fiat_amount,
	price, payment_method_id, counterparty_method_id, payment_channel,
	status, buyer_id, seller_id, chat_thread_id, processing_time_minutes,
	metadata, created_at, accepted_at, expires_at, payment_made_at,
	payment_received_at, completed_at, cancelled_at`

func scan(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.AdID, &o.VendorUserID, &o.CounterpartyUserID,
		&o.AdType, &o.CryptoCurrency, &o.FiatCurrency, &o.CryptoAmount,
		&o.FiatAmount, &o.Price, &o.PaymentMethodID, &o.CounterpartyMethodID,
		&o.PaymentChannel, &o.Status, &o.BuyerID, &o.SellerID, &o.ChatThreadID,
		&o.ProcessingTime, &o.Metadata, &o.CreatedAt, &o.AcceptedAt,
		&o.ExpiresAt, &o.PaymentMadeAt, &o.PaymentReceivedAt, &o.CompletedAt,
		&o.CancelledAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &o, nil
}

// Insert stores a new order
func Insert(ctx context.Context, exec repository.Executor, o *Order) (int64, error) {
	metadata := o.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO p2p_orders (ad_id, vendor_user_id, counterparty_user_id,
		 ad_type, crypto_currency, fiat_currency, crypto_amount, fiat_amount,
		 price, payment_method_id, counterparty_method_id, payment_channel,
		 status, buyer_id, seller_id, chat_thread_id, processing_time_minutes,
		 metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.AdID, o.VendorUserID, o.CounterpartyUserID, o.AdType,
		o.CryptoCurrency.String(), o.FiatCurrency.String(), o.CryptoAmount,
		o.FiatAmount, o.Price, o.PaymentMethodID, o.CounterpartyMethodID,
		o.PaymentChannel, o.Status, o.BuyerID, o.SellerID, o.ChatThreadID,
		o.ProcessingTime, metadata)
}

// One returns an order by id
func One(ctx context.Context, exec repository.Executor, id int64) (*Order, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM p2p_orders WHERE id = ?`), id))
}

// UpdateStatus transitions an order row from one status to another, writing
// the supplied timestamp columns. It fails with ErrNotFound when the row is
// no longer in fromStatus, which is how replayed transitions are rejected at
// the storage layer.
func UpdateStatus(ctx context.Context, exec repository.Executor, id int64, fromStatus, toStatus string, stamps map[string]time.Time) error {
	setClauses := []string{"status = ?"}
	args := []interface{}{toStatus}
	for _, col := range []string{"accepted_at", "expires_at", "payment_made_at",
		"payment_received_at", "completed_at", "cancelled_at"} {
		if ts, ok := stamps[col]; ok {
			setClauses = append(setClauses, col+" = ?")
			args = append(args, ts)
		}
	}
	args = append(args, id, fromStatus)
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE p2p_orders SET `+strings.Join(setClauses, ", ")+
			` WHERE id = ? AND status = ?`), args...)
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

// Filter narrows order listings. Zero values are ignored.
type Filter struct {
	ParticipantID int64 // matches vendor or counterparty
	AdID          int64
	Status        string
	Limit         int
	Offset        int
}

// AllByFilter returns orders matching the filter, newest first
func AllByFilter(ctx context.Context, exec repository.Executor, f *Filter) ([]Order, error) {
	conds := []string{"1 = 1"}
	var args []interface{}
	if f.ParticipantID != 0 {
		conds = append(conds, "(vendor_user_id = ? OR counterparty_user_id = ?)")
		args = append(args, f.ParticipantID, f.ParticipantID)
	}
	if f.AdID != 0 {
		conds = append(conds, "ad_id = ?")
		args = append(args, f.AdID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	query := `SELECT ` + selectColumns + ` FROM p2p_orders WHERE ` +
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
	var out []Order
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, database.TranslateError(rows.Err())
}

// ExpiredAwaitingPayment returns ids of orders in awaiting_payment whose
// expiry has passed, oldest first, capped at limit
func ExpiredAwaitingPayment(ctx context.Context, exec repository.Executor, now time.Time, limit int) ([]int64, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT id FROM p2p_orders
		 WHERE status = ? AND expires_at IS NOT NULL AND expires_at < ?
		 ORDER BY expires_at LIMIT ?`),
		"awaiting_payment", now, limit)
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

// CountByStatus returns the number of the participant's orders per status
func CountByStatus(ctx context.Context, exec repository.Executor, participantID int64) (map[string]int64, error) {
	rows, err := exec.QueryContext(ctx, repository.Rebind(
		`SELECT status, COUNT(1) FROM p2p_orders
		 WHERE vendor_user_id = ? OR counterparty_user_id = ?
		 GROUP BY status`),
		participantID, participantID)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, database.TranslateError(err)
		}
		out[status] = n
	}
	return out, database.TranslateError(rows.Err())
}
