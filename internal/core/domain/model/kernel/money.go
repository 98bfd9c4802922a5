package kernel

import (
	"fmt"

	"kitchenpos/internal/pkg/errs"
	"kitchenpos/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrMoneyIsNotConstructed is returned when validating a zero-value Money.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("Money must be created via NewMoney")

// Money is a non-negative decimal amount. The currency is implied by the restaurant.
// Amounts are kept exactly as supplied; no rounding is applied.
type Money struct {
	amount decimal.Decimal
	guard  guard.ConstructorGuard
}

// NewMoney validates that amount is not negative.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"total amount",
			fmt.Errorf("%s is less than 0", amount.String()),
		)
	}
	return Money{amount: amount, guard: guard.NewConstructorGuard()}, nil
}

// MustNewMoney is NewMoney for literals in tests and fixtures.
func MustNewMoney(amount string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount))
	if err != nil {
		panic(err)
	}
	return m
}

// Zero is a constructed zero amount.
func Zero() Money {
	return Money{amount: decimal.Zero, guard: guard.NewConstructorGuard()}
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.String()
}

// IsEqual compares amounts numerically, so 200 equals 200.00.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}
