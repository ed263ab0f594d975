// Package currencyfile provides currencies defined in a TOML data file:
//
//	[[currency]]
//	code = "XBT"
//	numeric = -1
//	digits = 8
//	locales = ["en-SV"]
package currencyfile

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"go-moneta"
	"go-moneta/currency"
)

// DefaultName names a provider loaded without an explicit name.
const DefaultName = "FILE"

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

var _ currency.Provider = (*Provider)(nil)

type entry struct {
	Code    string   `toml:"code"`
	Numeric *int     `toml:"numeric"`
	Digits  *int     `toml:"digits"`
	Locales []string `toml:"locales"`
}

type document struct {
	Currency []entry `toml:"currency"`
}

// Provider is an immutable currency.Provider of the currencies of a data file.
type Provider struct {
	name    string
	units   []moneta.CurrencyUnit
	regions map[language.Region][]moneta.CurrencyUnit
}

// Load reads the data file at path.
func Load(path, name string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read currency file [%v]: %w", path, err)
	}
	p, err := Parse(data, name)
	if err != nil {
		return nil, fmt.Errorf("currency file [%v]: %w", path, err)
	}
	return p, nil
}

// Parse decodes currency definitions. Codes must be three upper-case letters
// and unique. An empty name selects DefaultName.
func Parse(data []byte, name string) (*Provider, error) {
	if name == "" {
		name = DefaultName
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}

	p := &Provider{name: name, regions: map[language.Region][]moneta.CurrencyUnit{}}
	ctx := moneta.NewCurrencyContextBuilder(name).Build()
	seen := map[string]bool{}
	for i, e := range doc.Currency {
		if !codePattern.MatchString(e.Code) {
			return nil, fmt.Errorf("currency #%d code [%q]: %w", i+1, e.Code, moneta.ErrInvalidArgument)
		}
		if seen[e.Code] {
			return nil, fmt.Errorf("currency [%v] defined twice: %w", e.Code, moneta.ErrInvalidArgument)
		}
		seen[e.Code] = true

		b := moneta.NewCurrencyBuilder(e.Code, ctx)
		if e.Numeric != nil {
			b.SetNumericCode(*e.Numeric)
		}
		if e.Digits != nil {
			b.SetDefaultFractionDigits(*e.Digits)
		}
		unit, err := b.Build()
		if err != nil {
			return nil, err
		}
		p.units = append(p.units, unit)

		for _, l := range e.Locales {
			tag, err := language.Parse(l)
			if err != nil {
				return nil, fmt.Errorf("currency [%v] locale [%v]: %w", e.Code, l, moneta.ErrInvalidArgument)
			}
			region, conf := tag.Region()
			if conf == language.No {
				return nil, fmt.Errorf("currency [%v] locale [%v] without region: %w", e.Code, l, moneta.ErrInvalidArgument)
			}
			p.regions[region] = append(p.regions[region], unit)
		}
	}
	sort.Slice(p.units, func(i, j int) bool { return p.units[i].CurrencyCode() < p.units[j].CurrencyCode() })
	return p, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Currencies(q moneta.CurrencyQuery) ([]moneta.CurrencyUnit, error) {
	units := currency.Filter(append([]moneta.CurrencyUnit(nil), p.units...), q)
	for _, tag := range q.Locales() {
		if region, conf := tag.Region(); conf != language.No {
			units = append(units, p.regions[region]...)
		}
	}
	return units, nil
}
