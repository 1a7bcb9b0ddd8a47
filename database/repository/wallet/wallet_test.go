package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
	"github.com/rhinoxpay/rhinoxcore/money"
)

func TestInsertAndLookup(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	userID := testhelpers.InsertUser(t, instance, "wallet1")
	ctx := context.Background()
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}

	id, err := wallet.Insert(ctx, db, &wallet.Wallet{
		UserID:   userID,
		Currency: currency.NGN,
		Kind:     wallet.KindFiat,
		Balance:  money.MustParse("100000"),
		Active:   true,
	})
	if err != nil {
		t.Fatal(err)
	}

	w, err := wallet.One(ctx, db, id)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Balance.Equal(money.MustParse("100000")) {
		t.Fatalf("unexpected balance %s", w.Balance)
	}
	if !w.Available().Equal(money.MustParse("100000")) {
		t.Fatalf("unexpected available %s", w.Available())
	}

	w2, err := wallet.OneByUserCurrency(ctx, db, userID, currency.NGN, wallet.KindFiat)
	if err != nil {
		t.Fatal(err)
	}
	if w2.ID != id {
		t.Fatalf("expected wallet %d got %d", id, w2.ID)
	}
}

func TestUniqueUserCurrencyKind(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	userID := testhelpers.InsertUser(t, instance, "wallet2")
	ctx := context.Background()
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}

	row := &wallet.Wallet{
		UserID: userID, Currency: currency.NGN, Kind: wallet.KindFiat, Active: true,
	}
	if _, err := wallet.Insert(ctx, db, row); err != nil {
		t.Fatal(err)
	}
	if _, err := wallet.Insert(ctx, db, row); !errors.Is(err, common.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey got %v", err)
	}
	// a crypto anchor wallet for the same currency is a distinct row
	row.Kind = wallet.KindCrypto
	if _, err := wallet.Insert(ctx, db, row); err != nil {
		t.Fatalf("crypto kind should not collide: %v", err)
	}
}

func TestUpdateBalances(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	userID := testhelpers.InsertUser(t, instance, "wallet3")
	id := testhelpers.InsertFiatWallet(t, instance, userID, currency.NGN, "500")
	ctx := context.Background()
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}

	err = wallet.UpdateBalances(ctx, db, id,
		money.MustParse("400"), money.MustParse("150"))
	if err != nil {
		t.Fatal(err)
	}
	w, err := wallet.One(ctx, db, id)
	if err != nil {
		t.Fatal(err)
	}
	if !w.LockedBalance.Equal(money.MustParse("150")) {
		t.Fatalf("unexpected locked %s", w.LockedBalance)
	}
	if !w.Available().Equal(money.MustParse("250")) {
		t.Fatalf("unexpected available %s", w.Available())
	}

	err = wallet.UpdateBalances(ctx, db, 99999, money.Zero, money.Zero)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestMissingWallet(t *testing.T) {
	instance := testhelpers.NewTestDatabase(t)
	db, err := instance.GetSQL()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wallet.One(context.Background(), db, 42); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
