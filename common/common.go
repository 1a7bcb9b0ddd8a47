// Package common holds shared helpers and the domain error taxonomy used
// across the custodial core.
package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateRandomHex returns a hex string of n random bytes, used for ledger
// reference suffixes and chat thread identifiers.
func GenerateRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// StringSliceContains reports whether haystack contains needle after
// trimming and case-folding both sides.
func StringSliceContains(haystack []string, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	for x := range haystack {
		if strings.ToLower(strings.TrimSpace(haystack[x])) == needle {
			return true
		}
	}
	return false
}
