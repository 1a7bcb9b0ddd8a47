package common

import "time"

// Clock abstracts the time source so transition timestamps and expiry checks
// can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// RealClock sources time from the system clock in UTC.
type RealClock struct{}

// Now returns the current UTC time
func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the wrapped instant; test helper.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.T }
