// Package money provides fixed-point decimal arithmetic for every balance
// and amount in the custodial core. Binary floats are prohibited on all
// money paths; amounts enter and leave the system as decimal strings.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rhinoxpay/rhinoxcore/common"
)

// Rounding scales. Fiat amounts round to cents, crypto amounts to eight
// fractional digits (satoshi-style).
const (
	FiatScale   int32 = 2
	CryptoScale int32 = 8
)

var (
	// ErrInvalidNumber is returned when a decimal string fails to parse
	ErrInvalidNumber = fmt.Errorf("%w: invalid number", common.ErrInvalidInput)
	// ErrDivisionByZero is returned on division by a zero amount
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", common.ErrInvalidInput)
)

// Amount is an immutable arbitrary-precision decimal value.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity
var Zero = Amount{}

// Parse converts a decimal string into an Amount
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return Amount{d: d}, nil
}

// MustParse is Parse for literals in tests and seeds; panics on bad input
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInt returns an Amount holding the integer value n
func FromInt(n int64) Amount {
	return Amount{d: decimal.NewFromInt(n)}
}

// String renders the canonical decimal form
func (a Amount) String() string {
	return a.d.String()
}

// StringFixed renders with exactly scale fractional digits
func (a Amount) StringFixed(scale int32) string {
	return a.d.StringFixed(scale)
}

// Add returns a + b
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Mul returns a * b
func (a Amount) Mul(b Amount) Amount {
	return Amount{d: a.d.Mul(b.d)}
}

// Div returns a / b rounded half-even to the supplied scale. Scale must be
// at least FiatScale for fiat amounts and CryptoScale for crypto amounts.
func (a Amount) Div(b Amount, scale int32) (Amount, error) {
	if b.d.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	// DivisionPrecision guards the intermediate quotient; RoundBank applies
	// the half-even contract at the requested scale.
	q := a.d.DivRound(b.d, scale+4)
	return Amount{d: q.RoundBank(scale)}, nil
}

// Round returns a rounded half-even to the supplied scale
func (a Amount) Round(scale int32) Amount {
	return Amount{d: a.d.RoundBank(scale)}
}

// Abs returns the absolute value
func (a Amount) Abs() Amount {
	return Amount{d: a.d.Abs()}
}

// Neg returns the negated value
func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg()}
}

// Cmp compares a and b, returning -1, 0 or 1
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// Equal reports a == b by value
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// LessThan reports a < b
func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// GreaterThan reports a > b
func (a Amount) GreaterThan(b Amount) bool {
	return a.d.GreaterThan(b.d)
}

// Sign returns -1 for negative, 0 for zero, 1 for positive
func (a Amount) Sign() int {
	return a.d.Sign()
}

// IsZero reports whether a is exactly zero
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsPositive reports a > 0
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsNegative reports a < 0
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// Reciprocal returns 1/a rounded half-even to the supplied scale
func (a Amount) Reciprocal(scale int32) (Amount, error) {
	return FromInt(1).Div(a, scale)
}

// MarshalJSON emits the amount as a JSON string, never a JSON number
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.d.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer so amounts persist as decimal text
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner for TEXT and NUMERIC columns
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Zero
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		*a = FromInt(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into money.Amount",
			common.ErrInternal, src)
	}
}
