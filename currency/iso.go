package currency

import (
	"sort"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"

	"go-moneta"
)

// ISOProviderName names the provider of ISO 4217 currencies.
const ISOProviderName = "ISO"

// pseudo currencies have no minor unit.
var pseudo = map[string]bool{
	"XAG": true, "XAU": true, "XPD": true, "XPT": true,
	"XBA": true, "XBB": true, "XBC": true, "XBD": true,
	"XDR": true, "XSU": true, "XUA": true, "XTS": true, "XXX": true,
}

// ISOProvider is a Provider of the ISO 4217 currencies known to
// golang.org/x/text. Numeric codes are not available and reported as -1.
type ISOProvider struct {
	ctx     moneta.CurrencyContext
	current []moneta.CurrencyUnit
}

// NewISOProvider returns a provider listing the currencies currently in use.
// Lookups by code also find historic currencies.
func NewISOProvider() *ISOProvider {
	p := &ISOProvider{ctx: moneta.NewCurrencyContextBuilder(ISOProviderName).Build()}

	seen := map[string]bool{}
	it := xcurrency.Query()
	for it.Next() {
		code := it.Unit().String()
		if seen[code] {
			continue
		}
		seen[code] = true
		p.current = append(p.current, p.unit(it.Unit()))
	}
	sort.Slice(p.current, func(i, j int) bool {
		return p.current[i].CurrencyCode() < p.current[j].CurrencyCode()
	})
	return p
}

func (p *ISOProvider) Name() string {
	return ISOProviderName
}

func (p *ISOProvider) Currencies(q moneta.CurrencyQuery) ([]moneta.CurrencyUnit, error) {
	if q.IsUnfiltered() {
		return append([]moneta.CurrencyUnit(nil), p.current...), nil
	}

	var units []moneta.CurrencyUnit
	for _, code := range q.CurrencyCodes() {
		u, err := xcurrency.ParseISO(code)
		if err != nil || u.String() != code {
			continue
		}
		units = append(units, p.unit(u))
	}
	for _, tag := range q.Locales() {
		units = append(units, p.forLocale(tag)...)
	}
	return units, nil
}

// forLocale returns the currencies in use in the region of tag, the most
// likely first.
func (p *ISOProvider) forLocale(tag language.Tag) []moneta.CurrencyUnit {
	main, conf := xcurrency.FromTag(tag)
	if conf == language.No {
		return nil
	}
	units := []moneta.CurrencyUnit{p.unit(main)}

	region, _ := tag.Region()
	it := xcurrency.Query(xcurrency.Region(region))
	for it.Next() {
		if it.Unit() != main {
			units = append(units, p.unit(it.Unit()))
		}
	}
	return units
}

func (p *ISOProvider) unit(u xcurrency.Unit) moneta.CurrencyUnit {
	code := u.String()
	digits, _ := xcurrency.Standard.Rounding(u)
	if pseudo[code] {
		digits = -1
	}
	c, err := moneta.NewCurrencyBuilder(code, p.ctx).SetDefaultFractionDigits(digits).Build()
	if err != nil {
		panic(err) // x/text only yields three-letter codes
	}
	return c
}
