package p2p

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
)

var foldCaser = cases.Fold()

func foldTrim(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// MatchPaymentMethod finds the vendor method compatible with the
// counterparty's chosen method:
//
//   - bank_account: trimmed, case-folded bank names must be equal and
//     non-empty
//   - mobile_money: provider ids must be equal
//   - rhinoxpay_id: type match; when both carry a currency they must agree
//
// Returns ErrPaymentMethodMismatch listing the accepted types when nothing
// matches.
func MatchPaymentMethod(chosen *paymentmethod.PaymentMethod, vendorMethods []paymentmethod.PaymentMethod) (*paymentmethod.PaymentMethod, error) {
	if chosen == nil {
		return nil, common.ErrNilPointer
	}
	for x := range vendorMethods {
		vm := &vendorMethods[x]
		if !vm.IsActive || vm.Type != chosen.Type {
			continue
		}
		switch chosen.Type {
		case paymentmethod.TypeBankAccount:
			name := foldTrim(chosen.BankName.String)
			if name != "" && name == foldTrim(vm.BankName.String) {
				return vm, nil
			}
		case paymentmethod.TypeMobileMoney:
			if chosen.ProviderID.Valid && vm.ProviderID.Valid &&
				chosen.ProviderID.String == vm.ProviderID.String {
				return vm, nil
			}
		case paymentmethod.TypeRhinoxPayID:
			if chosen.RhinoxCurrency.Valid && vm.RhinoxCurrency.Valid &&
				!strings.EqualFold(chosen.RhinoxCurrency.String, vm.RhinoxCurrency.String) {
				continue
			}
			return vm, nil
		}
	}
	return nil, fmt.Errorf("%w: ad accepts %s", common.ErrPaymentMethodMismatch,
		acceptedTypes(vendorMethods))
}

func acceptedTypes(methods []paymentmethod.PaymentMethod) string {
	seen := make(map[string]struct{}, len(methods))
	var out []string
	for x := range methods {
		if !methods[x].IsActive {
			continue
		}
		if _, dup := seen[methods[x].Type]; dup {
			continue
		}
		seen[methods[x].Type] = struct{}{}
		out = append(out, methods[x].Type)
	}
	if len(out) == 0 {
		return "no payment methods"
	}
	return strings.Join(out, ", ")
}

// channelForMethod maps a matched vendor method onto the settlement channel
func channelForMethod(m *paymentmethod.PaymentMethod) string {
	if m.Type == paymentmethod.TypeRhinoxPayID {
		return ChannelRhinoxPayID
	}
	return ChannelOffline
}
