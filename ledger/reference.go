package ledger

import (
	"fmt"
	"strings"

	"github.com/rhinoxpay/rhinoxcore/common"
)

const referencePrefix = "RX"

// NewReference generates a globally unique transaction reference: prefix,
// UTC timestamp to the second, and a random hex suffix. The suffix keeps
// references collision-free within one clock tick; the unique index on the
// transactions table is the final arbiter.
func (s *Service) NewReference() (string, error) {
	suffix, err := common.GenerateRandomHex(5)
	if err != nil {
		return "", fmt.Errorf("%w: reference suffix: %v", common.ErrInternal, err)
	}
	return fmt.Sprintf("%s%s%s",
		referencePrefix,
		s.clock.Now().UTC().Format("20060102150405"),
		strings.ToUpper(suffix)), nil
}
