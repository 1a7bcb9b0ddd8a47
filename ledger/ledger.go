// Package ledger is the append-only journal. Posting an entry never mutates
// a balance; wallets and virtual accounts are settled by the funds engine,
// and this package records the matching immutable entries.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/database/repository/transaction"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Transaction types
const (
	TypeDeposit     = "deposit"
	TypeWithdrawal  = "withdrawal"
	TypeTransfer    = "transfer"
	TypeConversion  = "conversion"
	TypeP2P         = "p2p"
	TypeBillPayment = "bill_payment"
)

// Transaction statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// P2P legs recorded on ledger entries. These drive history aggregation, so
// additions here need matching treatment in the history package.
const (
	StepOrderAccepted   = "order_accepted"
	StepPaymentReceived = "payment_received"
	StepCryptoFrozen    = "crypto_frozen"
	StepCryptoUnfrozen  = "crypto_unfrozen"
	StepCryptoDebited   = "crypto_debited"
	StepCryptoCredited  = "crypto_credited"
	StepFiatSent        = "fiat_sent"
	StepFiatReceived    = "fiat_received"
	StepFiatDebited     = "fiat_debited"
	StepFiatCredited    = "fiat_credited"
)

// Service posts journal entries
type Service struct {
	clock common.Clock
}

// NewService returns a ledger service using the supplied clock
func NewService(clock common.Clock) *Service {
	if clock == nil {
		clock = common.RealClock{}
	}
	return &Service{clock: clock}
}

// PostParams describes one journal entry. Amount is signed: credits are
// positive, debits negative. Reference is optional; when supplied it acts as
// the idempotency key and a replay surfaces ErrDuplicateKey.
type PostParams struct {
	WalletID      int64
	Type          string
	Status        string
	Amount        money.Amount
	Currency      currency.Code
	Fee           money.Amount
	Channel       string
	Description   string
	P2PStep       string
	CorrelationID string
	Reference     string
	Metadata      map[string]interface{}
}

// Post records a single journal entry and returns it
func (s *Service) Post(ctx context.Context, exec repository.Executor, p *PostParams) (*transaction.Transaction, error) {
	if p == nil {
		return nil, common.ErrNilPointer
	}
	if p.WalletID == 0 {
		return nil, fmt.Errorf("%w: ledger post requires a wallet", common.ErrInvalidInput)
	}
	if p.Type == "" || p.Status == "" {
		return nil, fmt.Errorf("%w: ledger post requires type and status", common.ErrInvalidInput)
	}
	if p.Currency.IsEmpty() {
		return nil, fmt.Errorf("%w: ledger post requires a currency", common.ErrInvalidInput)
	}

	reference := p.Reference
	if reference == "" {
		var err error
		reference, err = s.NewReference()
		if err != nil {
			return nil, err
		}
	}

	metadata := "{}"
	if len(p.Metadata) > 0 {
		b, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: encode metadata: %v", common.ErrInternal, err)
		}
		metadata = string(b)
	}

	now := s.clock.Now()
	entry := &transaction.Transaction{
		WalletID:      p.WalletID,
		Type:          p.Type,
		Status:        p.Status,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Fee:           p.Fee,
		Reference:     reference,
		Channel:       null.NewString(p.Channel, p.Channel != ""),
		Description:   null.NewString(p.Description, p.Description != ""),
		P2PStep:       null.NewString(p.P2PStep, p.P2PStep != ""),
		CorrelationID: null.NewString(p.CorrelationID, p.CorrelationID != ""),
		Metadata:      metadata,
		CreatedAt:     now,
	}
	if p.Status == StatusCompleted {
		entry.CompletedAt = null.TimeFrom(now)
	}

	id, err := transaction.Insert(ctx, exec, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	return entry, nil
}

// PostPair records a correlated debit/credit pair for a two-sided movement.
// Both entries share a generated correlation id so history can pair them.
func (s *Service) PostPair(ctx context.Context, exec repository.Executor, debit, credit *PostParams) (string, error) {
	if debit == nil || credit == nil {
		return "", common.ErrNilPointer
	}
	correlation, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("%w: correlation id: %v", common.ErrInternal, err)
	}
	corrID := correlation.String()
	debit.CorrelationID = corrID
	credit.CorrelationID = corrID
	if debit.Amount.IsPositive() {
		debit.Amount = debit.Amount.Neg()
	}
	if credit.Amount.IsNegative() {
		credit.Amount = credit.Amount.Neg()
	}
	if _, err := s.Post(ctx, exec, debit); err != nil {
		return "", err
	}
	if _, err := s.Post(ctx, exec, credit); err != nil {
		return "", err
	}
	return corrID, nil
}

// CryptoWalletRef finds or creates the synthetic crypto wallet anchoring
// ledger entries for (user, crypto currency). The row carries zero balances;
// the authoritative balance lives on the virtual account.
func (s *Service) CryptoWalletRef(ctx context.Context, exec repository.Executor, userID int64, code currency.Code) (int64, error) {
	w, err := wallet.OneByUserCurrency(ctx, exec, userID, code, wallet.KindCrypto)
	if err == nil {
		return w.ID, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return 0, err
	}
	return wallet.Insert(ctx, exec, &wallet.Wallet{
		UserID:   userID,
		Currency: code,
		Kind:     wallet.KindCrypto,
		Active:   true,
	})
}
