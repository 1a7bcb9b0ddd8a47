// Package transfer executes atomic two-sided fiat movements: conversion
// legs, direct wallet transfers and the automatic rhinoxpay leg of P2P
// payment. The whole flow runs on one serializable scope.
package transfer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/funds"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/log"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Executor performs two-sided transfers
type Executor struct {
	db     *database.Instance
	ledger *ledger.Service
	funds  *funds.Engine
}

// NewExecutor returns a transfer executor
func NewExecutor(db *database.Instance, ledgerSvc *ledger.Service, fundsEng *funds.Engine) *Executor {
	return &Executor{db: db, ledger: ledgerSvc, funds: fundsEng}
}

// Params describes a transfer between two fiat wallets of the same currency
type Params struct {
	SourceWalletID int64
	DestWalletID   int64
	Amount         money.Amount
	Fee            money.Amount
	Type           string // ledger type; defaults to transfer
	Channel        string
	Description    string
	DebitStep      string // optional p2p step tags for P2P fiat legs
	CreditStep     string
	Metadata       map[string]interface{}
}

// Result reports the posted pair
type Result struct {
	CorrelationID string
	Amount        money.Amount
	Fee           money.Amount
}

// Transfer runs Execute inside its own serializable scope
func (e *Executor) Transfer(ctx context.Context, p *Params) (*Result, error) {
	var res *Result
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var txErr error
		res, txErr = e.Execute(ctx, tx, p)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Execute performs the transfer on the supplied scope executor:
// validate → reserve → post debit → post credit → settle and credit.
// Failures after the reservation release it before returning.
func (e *Executor) Execute(ctx context.Context, exec repository.Executor, p *Params) (*Result, error) {
	if p == nil {
		return nil, common.ErrNilPointer
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive, got %s",
			common.ErrInvalidInput, p.Amount)
	}
	if p.Fee.IsNegative() {
		return nil, fmt.Errorf("%w: fee cannot be negative", common.ErrInvalidInput)
	}
	if p.SourceWalletID == p.DestWalletID {
		return nil, fmt.Errorf("%w: source and destination are the same wallet",
			common.ErrInvalidInput)
	}

	src, err := wallet.One(ctx, exec, p.SourceWalletID)
	if err != nil {
		return nil, err
	}
	dst, err := wallet.One(ctx, exec, p.DestWalletID)
	if err != nil {
		return nil, err
	}
	if !src.Active || !dst.Active {
		return nil, fmt.Errorf("%w: both wallets must be active", common.ErrForbidden)
	}
	if !src.Currency.Equal(dst.Currency) {
		return nil, fmt.Errorf("%w: currency mismatch %s vs %s",
			common.ErrInvalidInput, src.Currency, dst.Currency)
	}

	total := p.Amount.Add(p.Fee)
	if err := e.funds.Reserve(ctx, exec, src.ID, total); err != nil {
		return nil, err
	}

	res, err := e.postAndSettle(ctx, exec, src, dst, p, total)
	if err != nil {
		// hand the reservation back before surfacing the cause
		if relErr := e.funds.Release(ctx, exec, src.ID, total); relErr != nil {
			log.Errorf(log.FundsSys,
				"release after failed transfer on wallet %d: %v", src.ID, relErr)
		}
		return nil, err
	}
	return res, nil
}

func (e *Executor) postAndSettle(ctx context.Context, exec repository.Executor, src, dst *wallet.Wallet, p *Params, total money.Amount) (*Result, error) {
	txType := p.Type
	if txType == "" {
		txType = ledger.TypeTransfer
	}
	corrID, err := e.ledger.PostPair(ctx, exec,
		&ledger.PostParams{
			WalletID:    src.ID,
			Type:        txType,
			Status:      ledger.StatusCompleted,
			Amount:      p.Amount,
			Currency:    src.Currency,
			Fee:         p.Fee,
			Channel:     p.Channel,
			Description: p.Description,
			P2PStep:     p.DebitStep,
			Metadata:    p.Metadata,
		},
		&ledger.PostParams{
			WalletID:    dst.ID,
			Type:        txType,
			Status:      ledger.StatusCompleted,
			Amount:      p.Amount,
			Currency:    dst.Currency,
			Channel:     p.Channel,
			Description: p.Description,
			P2PStep:     p.CreditStep,
			Metadata:    p.Metadata,
		})
	if err != nil {
		return nil, err
	}

	if err := e.funds.Settle(ctx, exec, src.ID, total); err != nil {
		return nil, err
	}
	if err := e.funds.Credit(ctx, exec, dst.ID, p.Amount); err != nil {
		return nil, err
	}
	return &Result{CorrelationID: corrID, Amount: p.Amount, Fee: p.Fee}, nil
}
