package shared

import "testing"

// TestNewMoney_NonNegativity covers P2: negative or non-finite amounts
// always fail; zero is accepted at the value level.
func TestNewMoney_NonNegativity(t *testing.T) {
	usd, err := NewCurrency("USD")
	if err != nil {
		t.Fatalf("NewCurrency(USD) failed: %v", err)
	}

	cases := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"positive", 19.99, false},
		{"zero", 0, false},
		{"negative", -0.01, true},
		{"NaN", nan(), true},
		{"infinity", posInf(), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMoney(tc.amount, usd)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewMoney(%v) succeeded, want error", tc.amount)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMoney(%v) failed: %v", tc.amount, err)
			}
			if m.Amount() != tc.amount {
				t.Fatalf("Amount() = %v, want %v", m.Amount(), tc.amount)
			}
		})
	}
}

func TestMoney_IsZero(t *testing.T) {
	usd, _ := NewCurrency("USD")
	zero, _ := NewMoney(0, usd)
	if !zero.IsZero() {
		t.Fatal("IsZero() = false for a zero amount")
	}
	nonZero, _ := NewMoney(1, usd)
	if nonZero.IsZero() {
		t.Fatal("IsZero() = true for a non-zero amount")
	}
}

func TestMoney_Add_RequiresMatchingCurrency(t *testing.T) {
	usd, _ := NewCurrency("USD")
	eur, _ := NewCurrency("EUR")
	a, _ := NewMoney(10, usd)
	b, _ := NewMoney(5, eur)

	if _, err := a.Add(b); err == nil {
		t.Fatal("Add() across currencies succeeded, want error")
	}

	c, _ := NewMoney(5, usd)
	sum, err := a.Add(c)
	if err != nil {
		t.Fatalf("Add() within one currency failed: %v", err)
	}
	if sum.Amount() != 15 {
		t.Fatalf("Add() = %v, want 15", sum.Amount())
	}
}

func TestMoney_Multiply(t *testing.T) {
	usd, _ := NewCurrency("USD")
	price, _ := NewMoney(12.5, usd)

	subtotal, err := price.Multiply(3)
	if err != nil {
		t.Fatalf("Multiply() failed: %v", err)
	}
	if subtotal.Amount() != 37.5 {
		t.Fatalf("Multiply() = %v, want 37.5", subtotal.Amount())
	}

	if _, err := price.Multiply(-1); err == nil {
		t.Fatal("Multiply(-1) succeeded, want error")
	}
}
