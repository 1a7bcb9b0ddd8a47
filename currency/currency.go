// Package currency defines the currency code and blockchain identifiers used
// by wallets, virtual accounts and the administered rate table.
package currency

import "strings"

// Code is an upper-cased currency identifier, eg NGN, USD, USDT
type Code string

// Currencies commonly administered on the platform
const (
	USD  Code = "USD"
	NGN  Code = "NGN"
	GHS  Code = "GHS"
	KES  Code = "KES"
	BTC  Code = "BTC"
	ETH  Code = "ETH"
	USDT Code = "USDT"
	USDC Code = "USDC"
)

// NewCode returns a canonical Code from user input
func NewCode(s string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(s)))
}

// String implements fmt.Stringer
func (c Code) String() string { return string(c) }

// IsEmpty reports whether the code is unset
func (c Code) IsEmpty() bool { return c == "" }

// Equal compares codes case-insensitively
func (c Code) Equal(o Code) bool {
	return strings.EqualFold(string(c), string(o))
}

var cryptoCodes = map[Code]struct{}{
	BTC:  {},
	ETH:  {},
	USDT: {},
	USDC: {},
}

// IsCrypto reports whether the code names a supported crypto asset
func (c Code) IsCrypto() bool {
	_, ok := cryptoCodes[NewCode(string(c))]
	return ok
}

// IsFiat reports whether the code names a fiat currency. Anything not in the
// crypto set is treated as fiat; the rate table is the authority on which
// fiat codes are actually tradable.
func (c Code) IsFiat() bool {
	return !c.IsEmpty() && !c.IsCrypto()
}

// Blockchain identifies the network a virtual account lives on
type Blockchain string

// Supported custody networks
const (
	Ethereum Blockchain = "ETHEREUM"
	Tron     Blockchain = "TRON"
	BSC      Blockchain = "BSC"
	Bitcoin  Blockchain = "BITCOIN"
)

var defaultChains = map[Code]Blockchain{
	BTC:  Bitcoin,
	ETH:  Ethereum,
	USDT: Tron,
	USDC: Ethereum,
}

// DefaultChain returns the custody network used when the caller does not name
// one for a crypto asset
func (c Code) DefaultChain() Blockchain {
	return defaultChains[NewCode(string(c))]
}

// NewBlockchain returns a canonical Blockchain from user input
func NewBlockchain(s string) Blockchain {
	return Blockchain(strings.ToUpper(strings.TrimSpace(s)))
}

// String implements fmt.Stringer
func (b Blockchain) String() string { return string(b) }

// IsEmpty reports whether the blockchain is unset
func (b Blockchain) IsEmpty() bool { return b == "" }
