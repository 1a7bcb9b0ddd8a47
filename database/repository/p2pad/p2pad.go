// Package p2pad persists vendor-published standing offers.
package p2pad

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Ad statuses
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
	StatusPaused      = "paused"
)

// Ad is a standing offer owned by a vendor. AdType is from the vendor's
// perspective: on a buy ad the vendor buys crypto.
type Ad struct {
	ID               int64
	VendorUserID     int64
	AdType           string
	CryptoCurrency   currency.Code
	FiatCurrency     currency.Code
	Price            money.Amount
	Volume           money.Amount
	MinOrder         money.Amount
	MaxOrder         money.Amount
	AutoAccept       bool
	PaymentMethodIDs []int64
	ProcessingTime   int
	Status           string
	IsOnline         bool
	OrdersReceived   int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const selectColumns = `id, vendor_user_id, ad_type, crypto_currency,
	fiat_currency, price, volume, min_order, max_order, auto_accept,
	payment_method_ids, processing_time_minutes, status, is_online,
	orders_received, created_at, updated_at`

func scan(row interface{ Scan(...interface{}) error }) (*Ad, error) {
	var (
		a   Ad
		ids string
	)
	err := row.Scan(&a.ID, &a.VendorUserID, &a.AdType, &a.CryptoCurrency,
		&a.FiatCurrency, &a.Price, &a.Volume, &a.MinOrder, &a.MaxOrder,
		&a.AutoAccept, &ids, &a.ProcessingTime, &a.Status, &a.IsOnline,
		&a.OrdersReceived, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	if err := json.Unmarshal([]byte(ids), &a.PaymentMethodIDs); err != nil {
		return nil, err
	}
	return &a, nil
}

func encodeIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Insert stores a new ad
func Insert(ctx context.Context, exec repository.Executor, a *Ad) (int64, error) {
	ids, err := encodeIDs(a.PaymentMethodIDs)
	if err != nil {
		return 0, err
	}
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO p2p_ads (vendor_user_id, ad_type, crypto_currency, fiat_currency,
		 price, volume, min_order, max_order, auto_accept, payment_method_ids,
		 processing_time_minutes, status, is_online)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.VendorUserID, a.AdType, a.CryptoCurrency.String(),
		a.FiatCurrency.String(), a.Price, a.Volume, a.MinOrder, a.MaxOrder,
		a.AutoAccept, ids, a.ProcessingTime, a.Status, a.IsOnline)
}

// One returns an ad by id
func One(ctx context.Context, exec repository.Executor, id int64) (*Ad, error) {
	return scan(exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT `+selectColumns+` FROM p2p_ads WHERE id = ?`), id))
}

// Filter narrows ad listings. Zero values are ignored.
type Filter struct {
	VendorUserID   int64
	AdType         string
	CryptoCurrency currency.Code
	FiatCurrency   currency.Code
	Status         string
	OnlineOnly     bool
	Limit          int
	Offset         int
}

// AllByFilter returns ads matching the filter, newest first
func AllByFilter(ctx context.Context, exec repository.Executor, f *Filter) ([]Ad, error) {
	conds := []string{"1 = 1"}
	var args []interface{}
	if f.VendorUserID != 0 {
		conds = append(conds, "vendor_user_id = ?")
		args = append(args, f.VendorUserID)
	}
	if f.AdType != "" {
		conds = append(conds, "ad_type = ?")
		args = append(args, f.AdType)
	}
	if !f.CryptoCurrency.IsEmpty() {
		conds = append(conds, "crypto_currency = ?")
		args = append(args, f.CryptoCurrency.String())
	}
	if !f.FiatCurrency.IsEmpty() {
		conds = append(conds, "fiat_currency = ?")
		args = append(args, f.FiatCurrency.String())
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.OnlineOnly {
		conds = append(conds, "is_online = ?")
		args = append(args, true)
	}
	query := `SELECT ` + selectColumns + ` FROM p2p_ads WHERE ` +
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
	var out []Ad
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, database.TranslateError(rows.Err())
}

// Update persists mutable ad fields
func Update(ctx context.Context, exec repository.Executor, a *Ad) error {
	ids, err := encodeIDs(a.PaymentMethodIDs)
	if err != nil {
		return err
	}
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE p2p_ads SET price = ?, volume = ?, min_order = ?, max_order = ?,
		 auto_accept = ?, payment_method_ids = ?, processing_time_minutes = ?,
		 status = ?, is_online = ?, updated_at = ? WHERE id = ?`),
		a.Price, a.Volume, a.MinOrder, a.MaxOrder, a.AutoAccept, ids,
		a.ProcessingTime, a.Status, a.IsOnline, time.Now().UTC(), a.ID)
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

// IncrementOrdersReceived bumps the ad order counter inside the creation
// scope
func IncrementOrdersReceived(ctx context.Context, exec repository.Executor, id int64) error {
	res, err := exec.ExecContext(ctx, repository.Rebind(
		`UPDATE p2p_ads SET orders_received = orders_received + 1, updated_at = ? WHERE id = ?`),
		time.Now().UTC(), id)
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
