package transfer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/transaction"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
	"github.com/rhinoxpay/rhinoxcore/funds"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/transfer"
)

func newExecutor(instance *database.Instance) *transfer.Executor {
	return transfer.NewExecutor(instance, ledger.NewService(nil), funds.NewEngine())
}

func TestTransferHappyPath(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	alice := testhelpers.InsertUser(t, instance, "transfer1a")
	bob := testhelpers.InsertUser(t, instance, "transfer1b")
	src := testhelpers.InsertFiatWallet(t, instance, alice, currency.NGN, "100000")
	dst := testhelpers.InsertFiatWallet(t, instance, bob, currency.NGN, "0")
	exec := newExecutor(instance)
	ctx := context.Background()

	res, err := exec.Transfer(ctx, &transfer.Params{
		SourceWalletID: src,
		DestWalletID:   dst,
		Amount:         money.MustParse("3000"),
		Fee:            money.MustParse("50"),
		Channel:        "rhinoxpay",
		Description:    "direct transfer",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.CorrelationID)

	db, err := instance.GetSQL()
	require.NoError(t, err)

	srcW, err := wallet.One(ctx, db, src)
	require.NoError(t, err)
	dstW, err := wallet.One(ctx, db, dst)
	require.NoError(t, err)

	assert.True(t, srcW.Balance.Equal(money.MustParse("96950")), "got %s", srcW.Balance)
	assert.True(t, srcW.LockedBalance.IsZero(), "reservation must be consumed")
	assert.True(t, dstW.Balance.Equal(money.MustParse("3000")))

	// wallet balances reconcile against the signed completed ledger sums
	srcSum, err := transaction.SumCompletedByWallet(ctx, db, src)
	require.NoError(t, err)
	assert.True(t, srcW.Balance.Sub(money.MustParse("100000")).Equal(srcSum),
		"source delta %s vs ledger %s",
		srcW.Balance.Sub(money.MustParse("100000")), srcSum)
	dstSum, err := transaction.SumCompletedByWallet(ctx, db, dst)
	require.NoError(t, err)
	assert.True(t, dstW.Balance.Equal(dstSum))

	// both legs share the correlation id
	entries, err := transaction.AllByFilter(ctx, db, &transaction.Filter{
		WalletIDs: []int64{src, dst},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].CorrelationID.String, entries[1].CorrelationID.String)
}

func TestTransferInsufficientFunds(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	alice := testhelpers.InsertUser(t, instance, "transfer2a")
	bob := testhelpers.InsertUser(t, instance, "transfer2b")
	src := testhelpers.InsertFiatWallet(t, instance, alice, currency.NGN, "1000")
	dst := testhelpers.InsertFiatWallet(t, instance, bob, currency.NGN, "0")
	exec := newExecutor(instance)
	ctx := context.Background()

	_, err := exec.Transfer(ctx, &transfer.Params{
		SourceWalletID: src,
		DestWalletID:   dst,
		Amount:         money.MustParse("990"),
		Fee:            money.MustParse("20"), // amount+fee exceeds balance
	})
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)

	db, err := instance.GetSQL()
	require.NoError(t, err)
	srcW, err := wallet.One(ctx, db, src)
	require.NoError(t, err)
	assert.True(t, srcW.Balance.Equal(money.MustParse("1000")), "no mutation on failure")
	assert.True(t, srcW.LockedBalance.IsZero())
}

func TestTransferCurrencyMismatch(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	alice := testhelpers.InsertUser(t, instance, "transfer3a")
	bob := testhelpers.InsertUser(t, instance, "transfer3b")
	src := testhelpers.InsertFiatWallet(t, instance, alice, currency.NGN, "1000")
	dst := testhelpers.InsertFiatWallet(t, instance, bob, currency.USD, "0")
	exec := newExecutor(instance)

	_, err := exec.Transfer(context.Background(), &transfer.Params{
		SourceWalletID: src,
		DestWalletID:   dst,
		Amount:         money.MustParse("100"),
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTransferSelfRejected(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	alice := testhelpers.InsertUser(t, instance, "transfer4")
	src := testhelpers.InsertFiatWallet(t, instance, alice, currency.NGN, "1000")
	exec := newExecutor(instance)

	_, err := exec.Transfer(context.Background(), &transfer.Params{
		SourceWalletID: src,
		DestWalletID:   src,
		Amount:         money.MustParse("100"),
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTransferMissingWallet(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	alice := testhelpers.InsertUser(t, instance, "transfer5")
	src := testhelpers.InsertFiatWallet(t, instance, alice, currency.NGN, "1000")
	exec := newExecutor(instance)

	_, err := exec.Transfer(context.Background(), &transfer.Params{
		SourceWalletID: src,
		DestWalletID:   424242,
		Amount:         money.MustParse("100"),
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
