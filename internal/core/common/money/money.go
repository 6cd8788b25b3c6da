// Package money parses the pt-BR formatted amounts typed into salary fields.
package money

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts strings such as "R$ 1.234.567,89" to 1234567.89.
// Every "." is treated as a thousands separator and the last "," as the decimal
// separator. Anything that is not a digit or the decimal point is dropped, so a
// leading minus sign never survives and the result is always >= 0.
func ParseAmount(s string) (float64, error) {
	var b strings.Builder
	b.Grow(len(s))

	comma := strings.LastIndex(s, ",")
	for i, r := range s {
		switch {
		case unicode.IsSpace(r), r == '.':
			continue
		case r == ',':
			if i == comma {
				b.WriteByte('.')
			}
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return 0, ErrInvalidAmount
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FromCents reads only the digits of s and treats them as cents, the way the
// masked salary input on the team screen submits values ("1.500,00" -> 1500).
// An empty value is zero.
func FromCents(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, nil
	}
	cents, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return float64(cents) / 100, nil
}

// Input is an amount field that accepts either the formatted string the forms
// submit or a plain JSON number. Numbers are rewritten as "1234,50" so both
// ParseAmount and FromCents read them correctly.
type Input string

func (in *Input) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*in = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	*in = Input(strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1))
	return nil
}

func (in Input) Empty() bool {
	return strings.TrimSpace(string(in)) == ""
}

// Parse runs ParseAmount on the input.
func (in Input) Parse() (float64, error) {
	return ParseAmount(string(in))
}

// Cents runs FromCents on the input.
func (in Input) Cents() (float64, error) {
	return FromCents(string(in))
}
