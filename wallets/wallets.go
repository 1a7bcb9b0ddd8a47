// Package wallets manages fiat wallet and virtual account provisioning and
// the balance views served to users.
package wallets

import (
	"context"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/virtualaccount"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/log"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/rates"
)

// Manager provisions wallets and builds balance views
type Manager struct {
	db    *database.Instance
	rates *rates.Service
}

// NewManager returns a wallet manager
func NewManager(db *database.Instance, rateSvc *rates.Service) *Manager {
	return &Manager{db: db, rates: rateSvc}
}

// CreateWallet provisions a balance container for (user, currency). Fiat
// currencies get a wallet row; crypto currencies get a virtual account on the
// asset's default chain plus the synthetic ledger anchor. Duplicate
// provisioning surfaces ErrDuplicateKey.
func (m *Manager) CreateWallet(ctx context.Context, userID int64, code currency.Code, chain currency.Blockchain) (int64, error) {
	if code.IsEmpty() {
		return 0, fmt.Errorf("%w: currency is required", common.ErrInvalidInput)
	}
	db, err := m.db.GetSQL()
	if err != nil {
		return 0, err
	}

	if code.IsFiat() {
		return wallet.Insert(ctx, db, &wallet.Wallet{
			UserID:   userID,
			Currency: code,
			Kind:     wallet.KindFiat,
			Active:   true,
		})
	}

	if chain.IsEmpty() {
		chain = code.DefaultChain()
	}
	if chain.IsEmpty() {
		return 0, fmt.Errorf("%w: no custody chain for %s", common.ErrInvalidInput, code)
	}
	id, err := virtualaccount.Insert(ctx, db, &virtualaccount.VirtualAccount{
		UserID:     userID,
		Blockchain: chain,
		Currency:   code,
		Active:     true,
	})
	if err != nil {
		return 0, err
	}
	// anchor row so ledger entries have a wallet to hang off
	if _, err := wallet.Insert(ctx, db, &wallet.Wallet{
		UserID:   userID,
		Currency: code,
		Kind:     wallet.KindCrypto,
		Active:   true,
	}); err != nil && !errors.Is(err, common.ErrDuplicateKey) {
		return 0, err
	}
	return id, nil
}

// FiatBalance is one fiat wallet in a balance view
type FiatBalance struct {
	WalletID  int64
	Currency  currency.Code
	Balance   money.Amount
	Locked    money.Amount
	Available money.Amount
}

// CryptoBalance is one virtual account in a balance view
type CryptoBalance struct {
	AccountID  int64
	Blockchain currency.Blockchain
	Currency   currency.Code
	Account    money.Amount
	Available  money.Amount
	Frozen     money.Amount
}

// Balances is the full per-user balance view with USD-normalized totals
type Balances struct {
	Fiat           []FiatBalance
	Crypto         []CryptoBalance
	FiatTotalUSD   money.Amount
	CryptoTotalUSD money.Amount
	TotalUSD       money.Amount
}

// ListWallets returns the user's fiat wallet rows
func (m *Manager) ListWallets(ctx context.Context, userID int64) ([]wallet.Wallet, error) {
	db, err := m.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return wallet.AllByUser(ctx, db, userID, wallet.KindFiat)
}

// GetBalances builds the user's balance view. USD normalization failures are
// tolerated per item: the native balances are always served and the affected
// total contribution reports zero.
func (m *Manager) GetBalances(ctx context.Context, userID int64) (*Balances, error) {
	db, err := m.db.GetSQL()
	if err != nil {
		return nil, err
	}
	fiatWallets, err := wallet.AllByUser(ctx, db, userID, "")
	if err != nil {
		return nil, err
	}
	accounts, err := virtualaccount.AllByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	out := &Balances{}
	for x := range fiatWallets {
		w := &fiatWallets[x]
		if w.Kind != wallet.KindFiat {
			continue
		}
		out.Fiat = append(out.Fiat, FiatBalance{
			WalletID:  w.ID,
			Currency:  w.Currency,
			Balance:   w.Balance,
			Locked:    w.LockedBalance,
			Available: w.Available(),
		})
		out.FiatTotalUSD = out.FiatTotalUSD.Add(m.toUSD(ctx, w.Balance, w.Currency, ""))
	}
	for x := range accounts {
		v := &accounts[x]
		out.Crypto = append(out.Crypto, CryptoBalance{
			AccountID:  v.ID,
			Blockchain: v.Blockchain,
			Currency:   v.Currency,
			Account:    v.AccountBalance,
			Available:  v.AvailableBalance,
			Frozen:     v.FrozenAmount(),
		})
		out.CryptoTotalUSD = out.CryptoTotalUSD.Add(
			m.toUSD(ctx, v.AccountBalance, v.Currency, v.Metadata))
	}
	out.TotalUSD = out.FiatTotalUSD.Add(out.CryptoTotalUSD)
	return out, nil
}

// toUSD normalizes one balance. Metadata, when present, may carry a
// tokenPriceUsd override used for crypto assets without an administered rate.
func (m *Manager) toUSD(ctx context.Context, amount money.Amount, code currency.Code, metadata string) money.Amount {
	if amount.IsZero() || code == currency.USD {
		return amount.Round(money.FiatScale)
	}
	if metadata != "" {
		if price, err := jsonparser.GetString([]byte(metadata), "tokenPriceUsd"); err == nil {
			if p, err := money.Parse(price); err == nil {
				return amount.Mul(p).Round(money.FiatScale)
			}
		}
	}
	converted, err := m.rates.Convert(ctx, amount, code, currency.USD)
	if err != nil {
		log.Warnf(log.WalletMgr, "USD normalization for %s: %v", code, err)
		return money.Zero
	}
	return converted.Round(money.FiatScale)
}
