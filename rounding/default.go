package rounding

import (
	"sort"

	xcurrency "golang.org/x/text/currency"

	"go-moneta"
)

// DefaultName names the default rounding provider and the adaptive default rounding.
const DefaultName = "DEFAULT"

// DefaultProvider supplies the standard and cash roundings of the ISO
// currencies and plain scale roundings. It has no historic data: queries with
// a timestamp yield nothing.
type DefaultProvider struct {
	names []string
}

// NewDefaultProvider returns the default provider.
func NewDefaultProvider() *DefaultProvider {
	seen := map[string]bool{}
	it := xcurrency.Query()
	for it.Next() {
		seen[it.Unit().String()] = true
	}
	names := make([]string, 0, len(seen))
	for code := range seen {
		names = append(names, code)
	}
	sort.Strings(names)
	return &DefaultProvider{names: names}
}

func (p *DefaultProvider) Name() string {
	return DefaultName
}

// RoundingNames returns the ISO codes of the currencies in use.
func (p *DefaultProvider) RoundingNames() []string {
	return append([]string(nil), p.names...)
}

func (p *DefaultProvider) Rounding(q moneta.RoundingQuery) (moneta.Rounding, error) {
	if _, ok := q.Timestamp(); ok {
		return nil, nil
	}
	mode, ok := q.RoundingMode()
	if !ok {
		mode = moneta.HalfEven
	}

	if name, ok := q.RoundingName(); ok {
		u, err := xcurrency.ParseISO(name)
		if err != nil || u.String() != name {
			return nil, nil
		}
		scale, _ := xcurrency.Standard.Rounding(u)
		return NewScaleRounding(DefaultName, name, scale, mode), nil
	}

	scale, hasScale := q.Scale()
	currency, hasCurrency := q.Currency()
	switch {
	case hasCurrency && q.CashRounding():
		return p.cash(currency, mode), nil
	case hasCurrency && hasScale:
		return NewScaleRounding(DefaultName, currency.CurrencyCode(), scale, mode), nil
	case hasCurrency:
		digits := currency.DefaultFractionDigits()
		if digits < 0 {
			return nil, nil
		}
		return NewScaleRounding(DefaultName, currency.CurrencyCode(), digits, mode), nil
	case hasScale:
		return NewScaleRounding(DefaultName, "SCALE", scale, mode), nil
	}
	return nil, nil
}

// cash returns the rounding to the smallest coin of currency. Currencies
// unknown to the cash data round to their fraction digits.
func (p *DefaultProvider) cash(currency moneta.CurrencyUnit, mode moneta.RoundingMode) moneta.Rounding {
	code := currency.CurrencyCode()
	name := code + "-cash"
	u, err := xcurrency.ParseISO(code)
	if err != nil || u.String() != code {
		digits := currency.DefaultFractionDigits()
		if digits < 0 {
			digits = 0
		}
		return NewScaleRounding(DefaultName, name, digits, mode)
	}
	scale, increment := xcurrency.Cash.Rounding(u)
	return NewIncrementRounding(DefaultName, name, scale, increment, mode)
}
