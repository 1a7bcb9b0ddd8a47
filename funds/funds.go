// Package funds is the balance-reservation engine. Fiat reservations move
// the locked balance on a wallet; crypto escrow moves the available balance
// on a virtual account while the account balance holds until settlement.
// Every operation must run on a serializable scope executor so concurrent
// reservations serialize through the row they contend on.
package funds

import (
	"context"
	"fmt"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/database/repository/virtualaccount"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Engine mutates wallet and virtual account balances under reservation
// semantics
type Engine struct{}

// NewEngine returns a reservation engine
func NewEngine() *Engine { return &Engine{} }

func requirePositive(amount money.Amount) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: reservation amount must be positive, got %s",
			common.ErrInvalidInput, amount)
	}
	return nil
}

// Reserve locks amount on a fiat wallet. Fails with ErrInsufficientFunds if
// the available balance (balance minus locked) is short.
func (e *Engine) Reserve(ctx context.Context, exec repository.Executor, walletID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	w, err := wallet.One(ctx, exec, walletID)
	if err != nil {
		return err
	}
	if !w.Active {
		return fmt.Errorf("%w: wallet %d is inactive", common.ErrForbidden, walletID)
	}
	if w.Available().LessThan(amount) {
		return &common.InsufficientFundsError{
			Required:  amount.String(),
			Available: w.Available().String(),
		}
	}
	return wallet.UpdateBalances(ctx, exec, walletID,
		w.Balance, w.LockedBalance.Add(amount))
}

// Release returns a fiat reservation to the available balance
func (e *Engine) Release(ctx context.Context, exec repository.Executor, walletID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	w, err := wallet.One(ctx, exec, walletID)
	if err != nil {
		return err
	}
	if w.LockedBalance.LessThan(amount) {
		// releasing more than is locked would corrupt the invariant
		return fmt.Errorf("%w: release %s exceeds locked %s on wallet %d",
			common.ErrInternal, amount, w.LockedBalance, walletID)
	}
	return wallet.UpdateBalances(ctx, exec, walletID,
		w.Balance, w.LockedBalance.Sub(amount))
}

// Settle consumes a fiat reservation: the funds have left the wallet, so
// balance and locked balance both decrease
func (e *Engine) Settle(ctx context.Context, exec repository.Executor, walletID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	w, err := wallet.One(ctx, exec, walletID)
	if err != nil {
		return err
	}
	if w.LockedBalance.LessThan(amount) || w.Balance.LessThan(amount) {
		return fmt.Errorf("%w: settle %s exceeds reservation on wallet %d (balance %s locked %s)",
			common.ErrInternal, amount, walletID, w.Balance, w.LockedBalance)
	}
	return wallet.UpdateBalances(ctx, exec, walletID,
		w.Balance.Sub(amount), w.LockedBalance.Sub(amount))
}

// Credit increases a fiat wallet balance with no reservation involved
func (e *Engine) Credit(ctx context.Context, exec repository.Executor, walletID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	w, err := wallet.One(ctx, exec, walletID)
	if err != nil {
		return err
	}
	if !w.Active {
		return fmt.Errorf("%w: wallet %d is inactive", common.ErrForbidden, walletID)
	}
	return wallet.UpdateBalances(ctx, exec, walletID,
		w.Balance.Add(amount), w.LockedBalance)
}

// Freeze escrows amount on a virtual account: available drops, account
// balance holds. Fails with ErrInsufficientFunds when available is short.
func (e *Engine) Freeze(ctx context.Context, exec repository.Executor, accountID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	v, err := virtualaccount.One(ctx, exec, accountID)
	if err != nil {
		return err
	}
	if !v.Active || v.Frozen {
		return fmt.Errorf("%w: virtual account %d is unavailable",
			common.ErrForbidden, accountID)
	}
	if v.AvailableBalance.LessThan(amount) {
		return &common.InsufficientFundsError{
			Required:  amount.String(),
			Available: v.AvailableBalance.String(),
		}
	}
	return virtualaccount.UpdateBalances(ctx, exec, accountID,
		v.AccountBalance, v.AvailableBalance.Sub(amount))
}

// Unfreeze returns escrowed crypto to the available balance
func (e *Engine) Unfreeze(ctx context.Context, exec repository.Executor, accountID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	v, err := virtualaccount.One(ctx, exec, accountID)
	if err != nil {
		return err
	}
	if v.AvailableBalance.Add(amount).GreaterThan(v.AccountBalance) {
		// more unfreeze than outstanding escrow
		return fmt.Errorf("%w: unfreeze %s exceeds escrow %s on account %d",
			common.ErrInternal, amount, v.FrozenAmount(), accountID)
	}
	return virtualaccount.UpdateBalances(ctx, exec, accountID,
		v.AccountBalance, v.AvailableBalance.Add(amount))
}

// SettleOut removes escrowed crypto from the account entirely: the escrow
// has been delivered to the counterparty
func (e *Engine) SettleOut(ctx context.Context, exec repository.Executor, accountID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	v, err := virtualaccount.One(ctx, exec, accountID)
	if err != nil {
		return err
	}
	if v.FrozenAmount().LessThan(amount) {
		return fmt.Errorf("%w: settle-out %s exceeds escrow %s on account %d",
			common.ErrInternal, amount, v.FrozenAmount(), accountID)
	}
	return virtualaccount.UpdateBalances(ctx, exec, accountID,
		v.AccountBalance.Sub(amount), v.AvailableBalance)
}

// SettleIn credits received crypto, immediately available
func (e *Engine) SettleIn(ctx context.Context, exec repository.Executor, accountID int64, amount money.Amount) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	v, err := virtualaccount.One(ctx, exec, accountID)
	if err != nil {
		return err
	}
	if !v.Active {
		return fmt.Errorf("%w: virtual account %d is inactive",
			common.ErrForbidden, accountID)
	}
	return virtualaccount.UpdateBalances(ctx, exec, accountID,
		v.AccountBalance.Add(amount), v.AvailableBalance.Add(amount))
}
