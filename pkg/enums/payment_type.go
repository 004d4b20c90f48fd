package enums

import "fmt"

// PaymentType tags how a sales record settled.
type PaymentType string

const (
	PaymentTypeCash     PaymentType = "cash"
	PaymentTypeBalance  PaymentType = "balance"
	PaymentTypeRecharge PaymentType = "recharge"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeCash,
	PaymentTypeBalance,
	PaymentTypeRecharge,
}

// IsValid reports whether the value matches the canonical payment type enum.
func (t PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// CountsAsRevenue reports whether records of this type feed revenue aggregates.
// Balance settlements consume previously recognized revenue and are excluded.
func (t PaymentType) CountsAsRevenue() bool {
	return t == PaymentTypeCash || t == PaymentTypeRecharge
}

// ParsePaymentType converts raw input into PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
