package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParseAmount turns user input into a non-negative amount rounded to cents.
// Empty, non-numeric and negative input is treated as zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

// NormalizeAmount clamps an already parsed amount the same way ParseAmount does
func NormalizeAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

// Total sums the item amounts. Order does not matter and the input is not modified.
func Total(items []RepairItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(NormalizeAmount(item.Amount))
	}
	return total
}

// FormatZAR renders an amount as South African rand, e.g. "R 1,700.00"
func FormatZAR(d decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("R %.2f", d.Round(2).InexactFloat64())
}

// Amount is a lenient JSON amount. It accepts numbers, numeric strings and
// null; anything else decodes to zero rather than failing the request.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d as an Amount
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: NormalizeAmount(d)}
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		s = unquoted
	}
	a.Decimal = ParseAmount(s)
	return nil
}

// MarshalJSON writes the amount as a bare JSON number
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.StringFixed(2)), nil
}
