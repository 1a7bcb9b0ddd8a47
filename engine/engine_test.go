package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/config"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/p2porder"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
	"github.com/rhinoxpay/rhinoxcore/database/repository/provisionjob"
	"github.com/rhinoxpay/rhinoxcore/database/repository/virtualaccount"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
	"github.com/rhinoxpay/rhinoxcore/engine"
	"github.com/rhinoxpay/rhinoxcore/funds"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/p2p"
	"github.com/rhinoxpay/rhinoxcore/transfer"
)

func newEngine(t *testing.T, instance *database.Instance) *engine.Engine {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	e, err := engine.New(cfg, instance)
	require.NoError(t, err)
	return e
}

type pastClock struct{ t time.Time }

func (c *pastClock) Now() time.Time { return c.t }

// expiredOrderFixture builds an accepted order whose payment deadline lies in
// the past relative to the real clock
func expiredOrderFixture(t *testing.T, instance *database.Instance) (orderID, vendorVA int64) {
	t.Helper()
	ctx := context.Background()
	db, err := instance.GetSQL()
	require.NoError(t, err)

	clock := &pastClock{t: time.Now().UTC().Add(-2 * time.Hour)}
	ledgerSvc := ledger.NewService(clock)
	fundsEng := funds.NewEngine()
	svc := p2p.NewService(instance, ledgerSvc, fundsEng,
		transfer.NewExecutor(instance, ledgerSvc, fundsEng), clock)

	vendor := testhelpers.InsertUser(t, instance, "eng1v")
	counterparty := testhelpers.InsertUser(t, instance, "eng1c")
	vendorVA = testhelpers.InsertVirtualAccount(t, instance, vendor,
		currency.Tron, currency.USDT, "10")
	vendorMethod, err := paymentmethod.Insert(ctx, db, &paymentmethod.PaymentMethod{
		UserID: vendor, Type: paymentmethod.TypeBankAccount,
		BankName: null.StringFrom("GT Bank"), IsActive: true,
	})
	require.NoError(t, err)
	cpMethod, err := paymentmethod.Insert(ctx, db, &paymentmethod.PaymentMethod{
		UserID: counterparty, Type: paymentmethod.TypeBankAccount,
		BankName: null.StringFrom("GT Bank"), IsActive: true,
	})
	require.NoError(t, err)

	ad, err := svc.CreateAd(ctx, vendor, &p2p.AdParams{
		AdType:           p2p.AdTypeSell,
		CryptoCurrency:   currency.USDT,
		FiatCurrency:     currency.NGN,
		Price:            money.MustParse("1500"),
		Volume:           money.MustParse("10"),
		MinOrder:         money.MustParse("1500"),
		MaxOrder:         money.MustParse("15000"),
		PaymentMethodIDs: []int64{vendorMethod},
		ProcessingTime:   30,
		IsOnline:         true,
	})
	require.NoError(t, err)
	order, err := svc.CreateOrder(ctx, counterparty, &p2p.OrderParams{
		AdID: ad.ID, CryptoAmount: money.MustParse("2"), PaymentMethodID: cpMethod,
	})
	require.NoError(t, err)
	order, err = svc.Accept(ctx, vendor, order.ID)
	require.NoError(t, err)
	require.Equal(t, p2p.StatusAwaitingPayment, order.Status)
	return order.ID, vendorVA
}

func TestSweepExpiredOrders(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	e := newEngine(t, instance)
	ctx := context.Background()
	orderID, vendorVA := expiredOrderFixture(t, instance)

	e.SweepExpiredOrders(ctx)

	db, err := instance.GetSQL()
	require.NoError(t, err)
	va, err := virtualaccount.One(ctx, db, vendorVA)
	require.NoError(t, err)
	assert.True(t, va.AvailableBalance.Equal(money.MustParse("10")), "escrow returned")

	order, err := p2porder.One(ctx, db, orderID)
	require.NoError(t, err)
	assert.Equal(t, p2p.StatusExpired, order.Status)

	// a second pass finds nothing to do
	e.SweepExpiredOrders(ctx)
	va, err = virtualaccount.One(ctx, db, vendorVA)
	require.NoError(t, err)
	assert.True(t, va.AvailableBalance.Equal(money.MustParse("10")))
}

func TestProvisioningWorker(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	e := newEngine(t, instance)
	ctx := context.Background()
	userID := testhelpers.InsertUser(t, instance, "eng2")

	require.NoError(t, e.EnqueueProvisioning(ctx, userID))
	// enqueue is idempotent per user
	require.NoError(t, e.EnqueueProvisioning(ctx, userID))

	e.DrainProvisioningQueue(ctx)

	db, err := instance.GetSQL()
	require.NoError(t, err)
	w, err := wallet.OneByUserCurrency(ctx, db, userID, currency.NGN, wallet.KindFiat)
	require.NoError(t, err)
	assert.True(t, w.Active)
	va, err := virtualaccount.OneByUserCurrency(ctx, db, userID, currency.USDT)
	require.NoError(t, err)
	assert.Equal(t, currency.Tron, va.Blockchain)

	// replaying the drain creates nothing new
	require.NoError(t, e.EnqueueProvisioning(ctx, userID))
	e.DrainProvisioningQueue(ctx)
	accounts, err := virtualaccount.AllByUser(ctx, db, userID)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	jobs, err := provisionjob.NextQueued(ctx, db, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs, "queue drained")
}
