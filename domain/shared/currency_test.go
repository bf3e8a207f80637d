package shared

import "testing"

// TestNewCurrency_Closure covers P3: construction succeeds iff the
// upper-cased code is in the supported set and the input has no
// surrounding whitespace.
func TestNewCurrency_Closure(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"supported upper", "USD", false},
		{"supported lower normalizes", "eur", false},
		{"unsupported code", "XYZ", true},
		{"leading whitespace", " USD", true},
		{"trailing whitespace", "USD ", true},
		{"empty", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCurrency(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewCurrency(%q) succeeded, want error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCurrency(%q) failed: %v", tc.in, err)
			}
			if c.Code() == "" {
				t.Fatal("Code() is empty on success")
			}
		})
	}
}

func TestCurrency_Equals(t *testing.T) {
	a, _ := NewCurrency("USD")
	b, _ := NewCurrency("usd")
	if !a.Equals(b) {
		t.Fatal("Equals() = false for the same code in different case")
	}
}
