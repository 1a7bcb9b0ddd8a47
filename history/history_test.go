package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
	"github.com/rhinoxpay/rhinoxcore/history"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/rates"
)

type postClock struct{ t time.Time }

func (c *postClock) Now() time.Time { return c.t }

type fixture struct {
	instance   *database.Instance
	aggregator *history.Aggregator
	ledger     *ledger.Service
	rates      *rates.Service
	clock      *postClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	instance := testhelpers.NewTestDatabase(t)
	clock := &postClock{t: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)}
	rateSvc := rates.NewService(instance, clock)
	return &fixture{
		instance:   instance,
		aggregator: history.NewAggregator(instance, rateSvc, clock),
		ledger:     ledger.NewService(clock),
		rates:      rateSvc,
		clock:      clock,
	}
}

func (f *fixture) post(t *testing.T, walletID int64, txType string, amount string, code currency.Code, step string) {
	t.Helper()
	db, err := f.instance.GetSQL()
	require.NoError(t, err)
	_, err = f.ledger.Post(context.Background(), db, &ledger.PostParams{
		WalletID: walletID,
		Type:     txType,
		Status:   ledger.StatusCompleted,
		Amount:   money.MustParse(amount),
		Currency: code,
		P2PStep:  step,
	})
	require.NoError(t, err)
}

func TestSummaryClassification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testhelpers.InsertUser(t, f.instance, "hist1")
	walletID := testhelpers.InsertFiatWallet(t, f.instance, userID, currency.NGN, "0")

	f.post(t, walletID, ledger.TypeDeposit, "5000", currency.NGN, "")
	f.post(t, walletID, ledger.TypeWithdrawal, "-1200", currency.NGN, "")
	f.post(t, walletID, ledger.TypeP2P, "3000", currency.NGN, ledger.StepFiatReceived)
	f.post(t, walletID, ledger.TypeP2P, "-800", currency.NGN, ledger.StepFiatSent)
	// escrow bookkeeping counts in neither direction
	f.post(t, walletID, ledger.TypeP2P, "2", currency.NGN, ledger.StepOrderAccepted)
	f.post(t, walletID, ledger.TypeP2P, "2", currency.NGN, ledger.StepCryptoUnfrozen)

	view, err := f.aggregator.GetHistory(ctx, userID, history.PeriodDay,
		time.Time{}, time.Time{}, currency.Code(""))
	require.NoError(t, err)

	assert.True(t, view.Summary.Incoming.Equal(money.MustParse("8000")),
		"got %s", view.Summary.Incoming)
	assert.True(t, view.Summary.Outgoing.Equal(money.MustParse("2000")),
		"got %s", view.Summary.Outgoing)
	assert.True(t, view.Summary.Net.Equal(money.MustParse("6000")))
}

func TestHourlyChartBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testhelpers.InsertUser(t, f.instance, "hist2")
	walletID := testhelpers.InsertFiatWallet(t, f.instance, userID, currency.NGN, "0")

	// midnight boundary entry lands in the first bucket
	f.clock.t = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	f.post(t, walletID, ledger.TypeDeposit, "100", currency.NGN, "")
	f.clock.t = time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)
	f.post(t, walletID, ledger.TypeDeposit, "250", currency.NGN, "")
	f.post(t, walletID, ledger.TypeDeposit, "250", currency.NGN, "")

	view, err := f.aggregator.GetHistory(ctx, userID, history.PeriodDay,
		time.Time{}, time.Time{}, currency.Code(""))
	require.NoError(t, err)

	require.Len(t, view.HourlyChart, 24)
	assert.Equal(t, "12 AM - 1 AM", view.HourlyChart[0].Label)
	assert.Equal(t, "11 PM - 12 AM", view.HourlyChart[23].Label)
	assert.Equal(t, "12 PM - 1 PM", view.HourlyChart[12].Label)
	assert.True(t, view.HourlyChart[0].Total.Equal(money.MustParse("100")))
	assert.True(t, view.HourlyChart[13].Total.Equal(money.MustParse("500")))
	for h := 1; h < 24; h++ {
		if h == 13 {
			continue
		}
		assert.True(t, view.HourlyChart[h].Total.IsZero(), "bucket %d", h)
	}
}

func TestTypeSummaryUSDNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := testhelpers.InsertUser(t, f.instance, "hist3")
	ngnWallet := testhelpers.InsertFiatWallet(t, f.instance, userID, currency.NGN, "0")
	ghsWallet := testhelpers.InsertFiatWallet(t, f.instance, userID, currency.GHS, "0")

	db, err := f.instance.GetSQL()
	require.NoError(t, err)
	usdtWallet, err := wallet.Insert(ctx, db, &wallet.Wallet{
		UserID:   userID,
		Currency: currency.USDT,
		Kind:     wallet.KindCrypto,
		Active:   true,
		Metadata: `{"tokenPriceUsd":"1.00"}`,
	})
	require.NoError(t, err)

	require.NoError(t, f.rates.SetRate(ctx, currency.NGN, currency.USD,
		money.MustParse("0.0012"), nil))

	f.post(t, ngnWallet, ledger.TypeDeposit, "1000000", currency.NGN, "")
	f.post(t, usdtWallet, ledger.TypeP2P, "25", currency.USDT, ledger.StepCryptoCredited)
	// no GHS rate administered: totalUSD reports zero
	f.post(t, ghsWallet, ledger.TypeDeposit, "500", currency.GHS, "")

	view, err := f.aggregator.GetHistory(ctx, userID, history.PeriodDay,
		time.Time{}, time.Time{}, currency.Code(""))
	require.NoError(t, err)
	require.Len(t, view.TypeSummary, 3)

	// sorted by type then currency: deposit/GHS, deposit/NGN, p2p/USDT
	assert.Equal(t, ledger.TypeDeposit, view.TypeSummary[0].Type)
	assert.Equal(t, currency.GHS, view.TypeSummary[0].Currency)
	assert.True(t, view.TypeSummary[0].TotalUSD.IsZero())

	assert.Equal(t, currency.NGN, view.TypeSummary[1].Currency)
	assert.True(t, view.TypeSummary[1].TotalUSD.Equal(money.MustParse("1200")),
		"got %s", view.TypeSummary[1].TotalUSD)

	assert.Equal(t, ledger.TypeP2P, view.TypeSummary[2].Type)
	assert.Equal(t, wallet.KindCrypto, view.TypeSummary[2].WalletKind)
	assert.EqualValues(t, 1, view.TypeSummary[2].Count)
	assert.True(t, view.TypeSummary[2].TotalUSD.Equal(money.MustParse("25")),
		"token price applies, got %s", view.TypeSummary[2].TotalUSD)
}

func TestResolveRange(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	start, end, err := history.ResolveRange(now, history.PeriodDay, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)

	start, _, err = history.ResolveRange(now, history.PeriodWeek, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), start)

	_, _, err = history.ResolveRange(now, history.PeriodCustom,
		now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	// start == end is a valid instant range
	_, _, err = history.ResolveRange(now, history.PeriodCustom, now, now)
	assert.NoError(t, err)

	_, _, err = history.ResolveRange(now, "Y", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTransactionDetailsOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testhelpers.InsertUser(t, f.instance, "hist4")
	stranger := testhelpers.InsertUser(t, f.instance, "hist4s")
	walletID := testhelpers.InsertFiatWallet(t, f.instance, owner, currency.NGN, "0")
	f.post(t, walletID, ledger.TypeDeposit, "100", currency.NGN, "")

	list, err := f.aggregator.ListByType(ctx, owner, []string{ledger.TypeDeposit},
		history.PeriodDay, time.Time{}, time.Time{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	entry, err := f.aggregator.TransactionDetails(ctx, owner, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].Reference, entry.Reference)

	_, err = f.aggregator.TransactionDetails(ctx, stranger, list[0].ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
