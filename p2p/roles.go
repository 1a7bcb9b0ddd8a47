package p2p

import (
	"fmt"

	"github.com/rhinoxpay/rhinoxcore/common"
)

// Roles carries the resolved buyer and seller for one order. Crypto settles
// only seller to buyer; every code path that moves crypto must obtain its
// direction from Resolve and use it unchanged.
type Roles struct {
	BuyerID  int64
	SellerID int64
}

// Resolve derives buyer and seller purely from the ad type and the two known
// principals. On a buy ad the vendor is buying crypto; on a sell ad the
// vendor is selling it. Stored buyer/seller ids on an order row are a cache
// of this function's output, never the source of truth.
func Resolve(adType string, vendorID, counterpartyID int64) (Roles, error) {
	if vendorID == 0 || counterpartyID == 0 || vendorID == counterpartyID {
		return Roles{}, fmt.Errorf("%w: vendor and counterparty must be distinct principals",
			common.ErrInvalidInput)
	}
	switch adType {
	case AdTypeBuy:
		return Roles{BuyerID: vendorID, SellerID: counterpartyID}, nil
	case AdTypeSell:
		return Roles{BuyerID: counterpartyID, SellerID: vendorID}, nil
	default:
		return Roles{}, fmt.Errorf("%w: unknown ad type %q", common.ErrInvalidInput, adType)
	}
}

// UserAction returns the action label shown to the counterparty: a vendor
// buy ad is what the counterparty sells into. Display only; no internal
// logic may switch on this value.
func UserAction(adType string) string {
	if adType == AdTypeBuy {
		return "sell"
	}
	return "buy"
}
