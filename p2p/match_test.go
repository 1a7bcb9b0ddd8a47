package p2p

import (
	"errors"
	"testing"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
)

func bankMethod(id int64, bank string, active bool) paymentmethod.PaymentMethod {
	return paymentmethod.PaymentMethod{
		ID:       id,
		Type:     paymentmethod.TypeBankAccount,
		BankName: null.StringFrom(bank),
		IsActive: active,
	}
}

func TestMatchBankAccount(t *testing.T) {
	t.Parallel()
	vendor := []paymentmethod.PaymentMethod{
		bankMethod(1, "GT Bank", true),
		bankMethod(2, "Access Bank", true),
	}

	chosen := bankMethod(9, "  gt bank ", true)
	got, err := MatchPaymentMethod(&chosen, vendor)
	if err != nil {
		t.Fatalf("folded bank names should match: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("expected vendor method 1, got %d", got.ID)
	}

	chosen = bankMethod(9, "Zenith", true)
	if _, err := MatchPaymentMethod(&chosen, vendor); !errors.Is(err, common.ErrPaymentMethodMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	// empty bank names never match each other
	chosen = bankMethod(9, "   ", true)
	empty := []paymentmethod.PaymentMethod{bankMethod(1, "", true)}
	if _, err := MatchPaymentMethod(&chosen, empty); !errors.Is(err, common.ErrPaymentMethodMismatch) {
		t.Fatalf("expected mismatch on empty names, got %v", err)
	}
}

func TestMatchMobileMoney(t *testing.T) {
	t.Parallel()
	vendor := []paymentmethod.PaymentMethod{
		{ID: 1, Type: paymentmethod.TypeMobileMoney, ProviderID: null.StringFrom("mtn-momo"), IsActive: true},
	}
	chosen := paymentmethod.PaymentMethod{
		Type: paymentmethod.TypeMobileMoney, ProviderID: null.StringFrom("mtn-momo"), IsActive: true,
	}
	got, err := MatchPaymentMethod(&chosen, vendor)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 1 {
		t.Fatalf("expected vendor method 1, got %d", got.ID)
	}

	chosen.ProviderID = null.StringFrom("airtel")
	if _, err := MatchPaymentMethod(&chosen, vendor); !errors.Is(err, common.ErrPaymentMethodMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestMatchRhinoxPayID(t *testing.T) {
	t.Parallel()
	vendor := []paymentmethod.PaymentMethod{
		{ID: 1, Type: paymentmethod.TypeRhinoxPayID, RhinoxCurrency: null.StringFrom("NGN"), IsActive: true},
	}

	chosen := paymentmethod.PaymentMethod{
		Type: paymentmethod.TypeRhinoxPayID, RhinoxCurrency: null.StringFrom("ngn"),
	}
	if _, err := MatchPaymentMethod(&chosen, vendor); err != nil {
		t.Fatalf("case-insensitive currency should match: %v", err)
	}

	// a method without a declared currency matches any rhinoxpay method
	chosen.RhinoxCurrency = null.String{}
	if _, err := MatchPaymentMethod(&chosen, vendor); err != nil {
		t.Fatalf("unset currency should match: %v", err)
	}

	chosen.RhinoxCurrency = null.StringFrom("USD")
	if _, err := MatchPaymentMethod(&chosen, vendor); !errors.Is(err, common.ErrPaymentMethodMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestMatchSkipsInactiveVendorMethods(t *testing.T) {
	t.Parallel()
	vendor := []paymentmethod.PaymentMethod{bankMethod(1, "GT Bank", false)}
	chosen := bankMethod(9, "GT Bank", true)
	_, err := MatchPaymentMethod(&chosen, vendor)
	if !errors.Is(err, common.ErrPaymentMethodMismatch) {
		t.Fatalf("inactive vendor method must not match, got %v", err)
	}
}

func TestChannelForMethod(t *testing.T) {
	t.Parallel()
	m := paymentmethod.PaymentMethod{Type: paymentmethod.TypeRhinoxPayID}
	if channelForMethod(&m) != ChannelRhinoxPayID {
		t.Fatal("rhinoxpay id methods settle on the internal channel")
	}
	m.Type = paymentmethod.TypeBankAccount
	if channelForMethod(&m) != ChannelOffline {
		t.Fatal("bank methods settle offline")
	}
}
