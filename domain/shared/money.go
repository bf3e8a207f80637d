package shared

import (
	"encoding/json"
	"fmt"
	"math"
)

// Money is a non-negative finite amount paired with a Currency. It is
// immutable: every operation returns a new value.
type Money struct {
	amount   float64
	currency Currency
}

// NewMoney validates amount (must be finite, non-negative; zero is allowed
// at the value level — the aggregate separately rejects zero unit prices)
// and pairs it with currency.
func NewMoney(amount float64, currency Currency) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, Fail("amount", "must be a finite number")
	}
	if amount < 0 {
		return Money{}, Fail("amount", "must not be negative")
	}
	return Money{amount: amount, currency: currency}, nil
}

// Amount returns the numeric amount.
func (m Money) Amount() float64 { return m.amount }

// Currency returns the paired currency.
func (m Money) Currency() Currency { return m.currency }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// Add requires equal currency; fails otherwise.
func (m Money) Add(other Money) (Money, error) {
	if m.currency.Code() != other.currency.Code() {
		return Money{}, Fail("currency", fmt.Sprintf("cannot add %s to %s", other.currency.Code(), m.currency.Code()))
	}
	return NewMoney(m.amount+other.amount, m.currency)
}

// Multiply requires a non-negative finite factor.
func (m Money) Multiply(factor float64) (Money, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Money{}, Fail("factor", "must be a finite number")
	}
	if factor < 0 {
		return Money{}, Fail("factor", "must not be negative")
	}
	return NewMoney(m.amount*factor, m.currency)
}

// Equals implements ValueObject.
func (m Money) Equals(other interface{}) bool {
	o, ok := other.(Money)
	return ok && o.amount == m.amount && o.currency.Equals(m.currency)
}

// String renders "<symbol><amount.toFixed(2)>", matching the source's
// display format.
func (m Money) String() string {
	return fmt.Sprintf("%s%.2f", m.currency.Symbol(), m.amount)
}

type moneyJSON struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// MarshalJSON renders {amount, currency}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency.Code()})
}
