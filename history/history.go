// Package history aggregates ledger entries into user-facing summaries:
// incoming/outgoing totals, an hourly activity chart and per-type totals
// normalized to USD.
package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/buger/jsonparser"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/transaction"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/log"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/rates"
)

// P2P step sets classifying p2p legs as money in or money out. Escrow
// bookkeeping steps (order_accepted, crypto_unfrozen) belong to neither.
var (
	incomingSteps = map[string]struct{}{
		ledger.StepCryptoCredited: {},
		ledger.StepFiatReceived:   {},
		ledger.StepFiatCredited:   {},
	}
	outgoingSteps = map[string]struct{}{
		ledger.StepCryptoDebited: {},
		ledger.StepCryptoFrozen:  {},
		ledger.StepFiatSent:      {},
		ledger.StepFiatDebited:   {},
	}
	outgoingTypes = map[string]struct{}{
		ledger.TypeWithdrawal:  {},
		ledger.TypeTransfer:    {},
		ledger.TypeBillPayment: {},
	}
)

// Aggregator builds history views from the ledger
type Aggregator struct {
	db    *database.Instance
	rates *rates.Service
	clock common.Clock
}

// NewAggregator returns a history aggregator
func NewAggregator(db *database.Instance, rateSvc *rates.Service, clock common.Clock) *Aggregator {
	if clock == nil {
		clock = common.RealClock{}
	}
	return &Aggregator{db: db, rates: rateSvc, clock: clock}
}

// Summary holds the incoming/outgoing totals over a range
type Summary struct {
	Incoming money.Amount
	Outgoing money.Amount
	Net      money.Amount
}

// Bucket is one hour of chart data
type Bucket struct {
	Label string
	Total money.Amount
}

// TypeEntry is one row of the per-type summary
type TypeEntry struct {
	Type       string
	Currency   currency.Code
	WalletKind string
	Count      int64
	Total      money.Amount
	TotalUSD   money.Amount
}

// View is the full history response for one range
type View struct {
	Start       time.Time
	End         time.Time
	Summary     Summary
	HourlyChart []Bucket
	TypeSummary []TypeEntry
}

// GetHistory builds the summary, hourly chart and type summary for the
// user's wallets over the resolved period
func (a *Aggregator) GetHistory(ctx context.Context, userID int64, period string, start, end time.Time, code currency.Code) (*View, error) {
	rangeStart, rangeEnd, err := ResolveRange(a.clock.Now(), period, start, end)
	if err != nil {
		return nil, err
	}

	db, err := a.db.GetSQL()
	if err != nil {
		return nil, err
	}
	wallets, err := wallet.AllByUser(ctx, db, userID, "")
	if err != nil {
		return nil, err
	}
	walletsByID := make(map[int64]*wallet.Wallet, len(wallets))
	walletIDs := make([]int64, 0, len(wallets))
	for x := range wallets {
		walletsByID[wallets[x].ID] = &wallets[x]
		walletIDs = append(walletIDs, wallets[x].ID)
	}

	view := &View{Start: rangeStart, End: rangeEnd, HourlyChart: emptyChart()}
	if len(walletIDs) == 0 {
		return view, nil
	}

	entries, err := transaction.AllByFilter(ctx, db, &transaction.Filter{
		WalletIDs: walletIDs,
		Currency:  code,
		Start:     rangeStart,
		End:       rangeEnd,
	})
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		txType string
		code   currency.Code
		kind   string
	}
	groups := make(map[groupKey]*TypeEntry)

	for x := range entries {
		e := &entries[x]
		abs := e.Amount.Abs()

		switch classify(e) {
		case directionIn:
			view.Summary.Incoming = view.Summary.Incoming.Add(abs)
		case directionOut:
			view.Summary.Outgoing = view.Summary.Outgoing.Add(abs)
		}

		hour := e.CreatedAt.In(rangeEnd.Location()).Hour()
		view.HourlyChart[hour].Total = view.HourlyChart[hour].Total.Add(abs)

		kind := wallet.KindFiat
		if w, ok := walletsByID[e.WalletID]; ok {
			kind = w.Kind
		}
		key := groupKey{txType: e.Type, code: e.Currency, kind: kind}
		g, ok := groups[key]
		if !ok {
			g = &TypeEntry{Type: e.Type, Currency: e.Currency, WalletKind: kind}
			groups[key] = g
		}
		g.Count++
		g.Total = g.Total.Add(abs)
	}
	view.Summary.Net = view.Summary.Incoming.Sub(view.Summary.Outgoing)

	for key, g := range groups {
		var anchor *wallet.Wallet
		for x := range wallets {
			if wallets[x].Currency.Equal(key.code) && wallets[x].Kind == key.kind {
				anchor = &wallets[x]
				break
			}
		}
		g.TotalUSD = a.normalizeUSD(ctx, g.Total, key.code, key.kind, anchor)
		view.TypeSummary = append(view.TypeSummary, *g)
	}
	sort.Slice(view.TypeSummary, func(i, j int) bool {
		left, right := view.TypeSummary[i], view.TypeSummary[j]
		if left.Type != right.Type {
			return left.Type < right.Type
		}
		if left.Currency != right.Currency {
			return left.Currency < right.Currency
		}
		return left.WalletKind < right.WalletKind
	})
	return view, nil
}

type direction int

const (
	directionNone direction = iota
	directionIn
	directionOut
)

func classify(e *transaction.Transaction) direction {
	if e.Type == ledger.TypeP2P {
		if !e.P2PStep.Valid {
			return directionNone
		}
		if _, ok := incomingSteps[e.P2PStep.String]; ok {
			return directionIn
		}
		if _, ok := outgoingSteps[e.P2PStep.String]; ok {
			return directionOut
		}
		return directionNone
	}
	if e.Type == ledger.TypeDeposit {
		return directionIn
	}
	if _, ok := outgoingTypes[e.Type]; ok {
		return directionOut
	}
	return directionNone
}

// normalizeUSD converts a native-currency total to USD. Crypto totals use the
// token price carried on the wallet metadata; fiat totals go through the rate
// service. Unresolvable totals report zero and log.
func (a *Aggregator) normalizeUSD(ctx context.Context, total money.Amount, code currency.Code, kind string, anchor *wallet.Wallet) money.Amount {
	if code == currency.USD {
		return total
	}
	if kind == wallet.KindCrypto {
		if anchor != nil {
			if price, err := jsonparser.GetString([]byte(anchor.Metadata), "tokenPriceUsd"); err == nil {
				if p, err := money.Parse(price); err == nil {
					return total.Mul(p).Round(money.FiatScale)
				}
			}
		}
		// stablecoin rows without metadata still resolve through the rate table
	}
	converted, err := a.rates.Convert(ctx, total, code, currency.USD)
	if err != nil {
		log.Warnf(log.HistorySys, "USD normalization for %s: %v", code, err)
		return money.Zero
	}
	return converted.Round(money.FiatScale)
}

func emptyChart() []Bucket {
	chart := make([]Bucket, 24)
	for h := range chart {
		chart[h].Label = hourLabel(h)
	}
	return chart
}

// ListByType returns the user's ledger entries of the given types over the
// resolved period, newest first
func (a *Aggregator) ListByType(ctx context.Context, userID int64, types []string, period string, start, end time.Time, limit, offset int) ([]transaction.Transaction, error) {
	rangeStart, rangeEnd, err := ResolveRange(a.clock.Now(), period, start, end)
	if err != nil {
		return nil, err
	}
	db, err := a.db.GetSQL()
	if err != nil {
		return nil, err
	}
	walletIDs, err := wallet.WalletIDsByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if len(walletIDs) == 0 {
		return nil, nil
	}
	return transaction.AllByFilter(ctx, db, &transaction.Filter{
		WalletIDs: walletIDs,
		Types:     types,
		Start:     rangeStart,
		End:       rangeEnd,
		Limit:     limit,
		Offset:    offset,
	})
}

// TransactionDetails returns one ledger entry after verifying the caller owns
// its wallet
func (a *Aggregator) TransactionDetails(ctx context.Context, userID, txID int64) (*transaction.Transaction, error) {
	db, err := a.db.GetSQL()
	if err != nil {
		return nil, err
	}
	entry, err := transaction.One(ctx, db, txID)
	if err != nil {
		return nil, err
	}
	w, err := wallet.One(ctx, db, entry.WalletID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, fmt.Errorf("%w: transaction %d does not belong to the caller",
			common.ErrForbidden, txID)
	}
	return entry, nil
}
