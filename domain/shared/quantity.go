package shared

import "math"

// Quantity is a strictly-positive integer count.
type Quantity struct {
	value int
}

// NewQuantity fails if n is not a finite integer or is not strictly
// positive.
func NewQuantity(n float64) (Quantity, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Quantity{}, Fail("quantity", "must be a finite number")
	}
	if n != math.Trunc(n) {
		return Quantity{}, Fail("quantity", "must be an integer")
	}
	if n <= 0 {
		return Quantity{}, Fail("quantity", "must be positive")
	}
	return Quantity{value: int(n)}, nil
}

// NewQuantityFromInt is the int-typed convenience constructor used once a
// value has already passed through an integer-typed boundary (e.g. a Go
// struct field bound from JSON as int).
func NewQuantityFromInt(n int) (Quantity, error) {
	return NewQuantity(float64(n))
}

// Value returns the underlying integer.
func (q Quantity) Value() int { return q.value }

// Add produces a new Quantity holding the sum.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value + other.value}
}

// Equals implements ValueObject.
func (q Quantity) Equals(other interface{}) bool {
	o, ok := other.(Quantity)
	return ok && o.value == q.value
}
