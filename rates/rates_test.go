package rates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/rates"
)

func TestGetRateIdentity(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)

	q, err := svc.GetRate(context.Background(), currency.NGN, currency.NGN)
	require.NoError(t, err)
	assert.True(t, q.Rate.Equal(money.FromInt(1)))
}

func TestSetAndGetRate(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)
	ctx := context.Background()

	inverse := money.MustParse("833.33")
	require.NoError(t, svc.SetRate(ctx, currency.NGN, currency.USD,
		money.MustParse("0.0012"), &inverse))

	q, err := svc.GetRate(ctx, currency.NGN, currency.USD)
	require.NoError(t, err)
	assert.True(t, q.Rate.Equal(money.MustParse("0.0012")))
	assert.True(t, q.Inverse.Equal(money.MustParse("833.33")))

	// reverse direction resolves via the stored row's inverse
	rq, err := svc.GetRate(ctx, currency.USD, currency.NGN)
	require.NoError(t, err)
	assert.True(t, rq.Rate.Equal(money.MustParse("833.33")))
	assert.True(t, rq.Inverse.Equal(money.MustParse("0.0012")))
}

func TestGetRateComputedReciprocal(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetRate(ctx, currency.USD, currency.NGN,
		money.MustParse("1500"), nil))

	q, err := svc.GetRate(ctx, currency.NGN, currency.USD)
	require.NoError(t, err)
	assert.True(t, q.Rate.Equal(money.MustParse("0.00066667")),
		"expected computed 1/1500, got %s", q.Rate)
}

func TestConvert(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)
	ctx := context.Background()

	inverse := money.MustParse("833.33")
	require.NoError(t, svc.SetRate(ctx, currency.NGN, currency.USD,
		money.MustParse("0.0012"), &inverse))

	out, err := svc.Convert(ctx, money.MustParse("1000000"), currency.NGN, currency.USD)
	require.NoError(t, err)
	assert.True(t, out.Equal(money.MustParse("1200")), "got %s", out)
}

func TestRateUnavailable(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)

	_, err := svc.GetRate(context.Background(), currency.GHS, currency.KES)
	assert.ErrorIs(t, err, common.ErrRateUnavailable)
}

func TestSetRateValidation(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)
	ctx := context.Background()

	err := svc.SetRate(ctx, currency.NGN, currency.USD, money.Zero, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = svc.SetRate(ctx, currency.NGN, currency.NGN, money.FromInt(1), nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	neg := money.MustParse("-1")
	err = svc.SetRate(ctx, currency.NGN, currency.USD, money.FromInt(1), &neg)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSetRateOverwrites(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetRate(ctx, currency.USD, currency.NGN,
		money.MustParse("1400"), nil))
	require.NoError(t, svc.SetRate(ctx, currency.USD, currency.NGN,
		money.MustParse("1500"), nil))

	q, err := svc.GetRate(ctx, currency.USD, currency.NGN)
	require.NoError(t, err)
	assert.True(t, q.Rate.Equal(money.MustParse("1500")))

	table, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, table, 1, "upsert must not create a second row")
}

func TestListFromBase(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	svc := rates.NewService(instance, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetRate(ctx, currency.USD, currency.NGN, money.MustParse("1500"), nil))
	require.NoError(t, svc.SetRate(ctx, currency.USD, currency.GHS, money.MustParse("15"), nil))
	require.NoError(t, svc.SetRate(ctx, currency.NGN, currency.GHS, money.MustParse("0.01"), nil))

	rows, err := svc.ListFromBase(ctx, currency.USD)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
