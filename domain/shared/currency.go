package shared

import "strings"

// Currency is an ISO-4217 three-letter code restricted to the closed set
// this service prices orders in. Construction is the only way to obtain a
// valid value; the zero value is never used across a component boundary.
type Currency struct {
	code string
}

type currencyInfo struct {
	symbol string
	name   string
}

var currencyTable = map[string]currencyInfo{
	"USD": {symbol: "$", name: "US Dollar"},
	"EUR": {symbol: "€", name: "Euro"},
	"GBP": {symbol: "£", name: "British Pound"},
	"JPY": {symbol: "¥", name: "Japanese Yen"},
	"MXN": {symbol: "MX$", name: "Mexican Peso"},
	"ARS": {symbol: "AR$", name: "Argentine Peso"},
	"CLP": {symbol: "CL$", name: "Chilean Peso"},
}

// NewCurrency normalizes s to upper-case and rejects anything outside the
// closed set. Unlike OrderId/ProductId, whitespace is never trimmed: a
// leading or trailing space is an invalid currency, not a forgivable typo
// (P3).
func NewCurrency(s string) (Currency, error) {
	if s != strings.TrimSpace(s) {
		return Currency{}, Fail("currency", "must not contain surrounding whitespace")
	}
	upper := strings.ToUpper(s)
	if _, ok := currencyTable[upper]; !ok {
		return Currency{}, Fail("currency", "unsupported currency: "+s)
	}
	return Currency{code: upper}, nil
}

// Code returns the normalized three-letter code.
func (c Currency) Code() string { return c.code }

// Symbol returns the display symbol, e.g. "$" for USD.
func (c Currency) Symbol() string { return currencyTable[c.code].symbol }

// Name returns the display name, e.g. "US Dollar".
func (c Currency) Name() string { return currencyTable[c.code].name }

// Equals implements ValueObject.
func (c Currency) Equals(other interface{}) bool {
	o, ok := other.(Currency)
	return ok && o.code == c.code
}

func (c Currency) String() string { return c.code }
