// Package p2p implements vendor ads and the order state machine that moves
// custodial crypto between counterparties through escrow.
package p2p

// Ad types, from the vendor's perspective
const (
	AdTypeBuy  = "buy"
	AdTypeSell = "sell"
)

// Order statuses
const (
	StatusPending             = "pending"
	StatusAwaitingPayment     = "awaiting_payment"
	StatusPaymentMade         = "payment_made"
	StatusAwaitingCoinRelease = "awaiting_coin_release"
	StatusCompleted           = "completed"
	StatusCancelled           = "cancelled"
	StatusExpired             = "expired"
	StatusDisputed            = "disputed"
	StatusRefunded            = "refunded"
)

// Payment channels
const (
	ChannelOffline     = "offline"
	ChannelRhinoxPayID = "rhinoxpay_id"
)

// IsTerminalStatus reports whether no further transitions are allowed
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	}
	return false
}

// ValidAdType reports whether s is a known ad type
func ValidAdType(s string) bool {
	return s == AdTypeBuy || s == AdTypeSell
}
