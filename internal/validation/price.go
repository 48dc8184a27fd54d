package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a price value as it arrives on the wire. Clients send either a
// JSON number or a string ("12.99" vs "Twelve dollars"), and rejecting the
// latter is a validation concern, not a decode failure, so unmarshalling
// keeps the raw text and defers parsing to Decimal.
type Price struct {
	raw     string
	present bool
}

// PriceFrom builds a present Price from an already-parsed decimal. Used when
// merging partial updates over a stored record.
func PriceFrom(d decimal.Decimal) Price {
	return Price{raw: d.String(), present: true}
}

// PriceFromString builds a present Price from raw text.
func PriceFromString(s string) Price {
	return Price{raw: s, present: true}
}

// UnmarshalJSON accepts numbers, strings, and null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price{raw: s, present: true}
		return nil
	}
	*p = Price{raw: string(data), present: true}
	return nil
}

// Present reports whether a value was supplied at all.
func (p Price) Present() bool {
	return p.present && strings.TrimSpace(p.raw) != ""
}

// Decimal parses the supplied value. A non-numeric value yields an error,
// which the validation rules translate to "is not a number".
func (p Price) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(p.raw))
}
