package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts and limits are stored as NUMERIC(19, 2)
const (
	MoneyScale            = 2
	MaxMoneyIntegerDigits = 17
)

// maxMoney is the smallest magnitude the columns cannot hold
var maxMoney = decimal.New(1, MaxMoneyIntegerDigits)

// ValidateMoneyPrecision rejects values the storage columns would round or
// overflow. Trailing zeros past the scale are fine ("10.500").
func ValidateMoneyPrecision(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return NewFieldError(field, fmt.Sprintf("%s cannot have more than %d decimal places, got: %s", field, MoneyScale, amount.String()))
	}
	if amount.Abs().GreaterThanOrEqual(maxMoney) {
		return NewFieldError(field, fmt.Sprintf("%s must be less than %s", field, maxMoney.String()))
	}
	return nil
}
