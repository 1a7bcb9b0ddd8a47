package p2p

import (
	"errors"
	"testing"

	"github.com/rhinoxpay/rhinoxcore/common"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	tester := []struct {
		AdType         string
		Vendor         int64
		Counterparty   int64
		ExpectedBuyer  int64
		ExpectedSeller int64
		ExpectedErr    error
	}{
		{AdType: AdTypeBuy, Vendor: 1, Counterparty: 2, ExpectedBuyer: 1, ExpectedSeller: 2},
		{AdType: AdTypeSell, Vendor: 1, Counterparty: 2, ExpectedBuyer: 2, ExpectedSeller: 1},
		{AdType: "swap", Vendor: 1, Counterparty: 2, ExpectedErr: common.ErrInvalidInput},
		{AdType: AdTypeBuy, Vendor: 1, Counterparty: 1, ExpectedErr: common.ErrInvalidInput},
		{AdType: AdTypeBuy, Vendor: 0, Counterparty: 2, ExpectedErr: common.ErrInvalidInput},
	}
	for x := range tester {
		roles, err := Resolve(tester[x].AdType, tester[x].Vendor, tester[x].Counterparty)
		if !errors.Is(err, tester[x].ExpectedErr) {
			t.Fatalf("test %d: expected error %v got %v", x, tester[x].ExpectedErr, err)
		}
		if err != nil {
			continue
		}
		if roles.BuyerID != tester[x].ExpectedBuyer || roles.SellerID != tester[x].ExpectedSeller {
			t.Fatalf("test %d: expected buyer %d seller %d got %+v",
				x, tester[x].ExpectedBuyer, tester[x].ExpectedSeller, roles)
		}
	}
}

func TestUserAction(t *testing.T) {
	t.Parallel()
	if UserAction(AdTypeBuy) != "sell" {
		t.Fatal("counterparty sells into a vendor buy ad")
	}
	if UserAction(AdTypeSell) != "buy" {
		t.Fatal("counterparty buys from a vendor sell ad")
	}
}

func TestIsTerminalStatus(t *testing.T) {
	t.Parallel()
	for _, s := range []string{StatusCompleted, StatusCancelled, StatusExpired, StatusRefunded} {
		if !IsTerminalStatus(s) {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []string{StatusPending, StatusAwaitingPayment, StatusPaymentMade, StatusDisputed} {
		if IsTerminalStatus(s) {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
