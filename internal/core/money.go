// Package core holds the tempo domain records and the money arithmetic
// shared by reporting, invoicing and the CSV import/export paths.
//
// Amounts are kept as int64 cents everywhere; floats only appear at the
// display boundary.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Negative values are rejected; zero is allowed
// so it can express "no rate".
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ApplyBps multiplies the amount by a basis-point rate with half-up
// rounding. Used for tax: subtotal.ApplyBps(2100) is 21% of subtotal.
func (m Money) ApplyBps(bps int64) Money {
	product := m.Cents * bps
	cents := product / 10000
	if rem := product % 10000; rem >= 5000 {
		cents++
	} else if rem <= -5000 {
		cents--
	}
	return Money{Cents: cents}
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Format renders the amount as a decimal string, e.g. "12.34" or "-0.05".
func (m Money) Format() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatCurrency prefixes the formatted amount with the currency symbol,
// falling back to the ISO code when no symbol is known.
func (m Money) FormatCurrency(currency string) string {
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		return currency + " " + m.Format()
	}
	if m.Cents < 0 {
		return "-" + symbol + Money{Cents: -m.Cents}.Format()
	}
	return symbol + m.Format()
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
