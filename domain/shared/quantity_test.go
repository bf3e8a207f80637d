package shared

import "testing"

// TestNewQuantity_Positivity covers P1: every non-positive-integer input
// fails, every strictly-positive integer succeeds with the same value.
func TestNewQuantity_Positivity(t *testing.T) {
	cases := []struct {
		name    string
		n       float64
		wantErr bool
	}{
		{"positive integer", 5, false},
		{"one", 1, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"fraction", 2.5, true},
		{"NaN", nan(), true},
		{"positive infinity", posInf(), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewQuantity(tc.n)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewQuantity(%v) succeeded, want error", tc.n)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewQuantity(%v) failed: %v", tc.n, err)
			}
			if q.Value() != int(tc.n) {
				t.Fatalf("Value() = %d, want %d", q.Value(), int(tc.n))
			}
		})
	}
}

func TestQuantity_Add(t *testing.T) {
	a, _ := NewQuantity(2)
	b, _ := NewQuantity(3)
	sum := a.Add(b)
	if sum.Value() != 5 {
		t.Fatalf("Add() = %d, want 5", sum.Value())
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}
