// Package money parses the loosely formatted currency strings found in carrier
// remittance exports and Venmo statements.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrEmpty = errors.New("empty amount")

// Parse accepts values such as "25", "$1,025.50", "+ $25.00", "- $25.00" and
// "(12.00)". Currency symbols, thousands separators, a leading plus sign and
// whitespace are removed before parsing.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-':
			negative = !negative
		case r == '+', r == ',', r == '$', r == '€', r == '£', r == ' ', r == '\t', r == ' ':
		default:
			return decimal.Zero, errors.New("invalid character in amount: " + string(r))
		}
	}
	if b.Len() == 0 {
		return decimal.Zero, ErrEmpty
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
