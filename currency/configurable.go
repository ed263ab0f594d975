package currency

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"golang.org/x/text/language"

	"go-moneta"
)

// ConfigurableProviderName names the provider holding currencies registered at runtime.
const ConfigurableProviderName = "ConfigurableCurrencyUnitProvider"

// ConfigurableProvider is a Provider of currencies registered at runtime,
// optionally bound to locales. It is safe for concurrent use.
type ConfigurableProvider struct {
	mu      sync.RWMutex
	units   map[string]moneta.CurrencyUnit
	regions map[language.Region][]moneta.CurrencyUnit
}

// NewConfigurableProvider returns an empty provider.
func NewConfigurableProvider() *ConfigurableProvider {
	return &ConfigurableProvider{
		units:   map[string]moneta.CurrencyUnit{},
		regions: map[language.Region][]moneta.CurrencyUnit{},
	}
}

func (p *ConfigurableProvider) Name() string {
	return ConfigurableProviderName
}

// Register adds unit, replacing a currency with the same code.
func (p *ConfigurableProvider) Register(unit moneta.CurrencyUnit) error {
	if unit == nil {
		return fmt.Errorf("register nil currency: %w", moneta.ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units[unit.CurrencyCode()] = unit
	return nil
}

// RegisterForLocale adds unit as a currency of the region of tag.
func (p *ConfigurableProvider) RegisterForLocale(tag language.Tag, unit moneta.CurrencyUnit) error {
	region, conf := tag.Region()
	if conf == language.No {
		return fmt.Errorf("locale [%v] without region: %w", tag, moneta.ErrInvalidArgument)
	}
	if err := p.Register(unit); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.regions[region] {
		if u.CurrencyCode() == unit.CurrencyCode() {
			return nil
		}
	}
	p.regions[region] = append(p.regions[region], unit)
	return nil
}

// Remove deletes the currency with code and reports whether it was present.
func (p *ConfigurableProvider) Remove(code string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.units[code]
	delete(p.units, code)
	for region, units := range p.regions {
		kept := units[:0]
		for _, u := range units {
			if u.CurrencyCode() != code {
				kept = append(kept, u)
			}
		}
		p.regions[region] = kept
	}
	return ok
}

func (p *ConfigurableProvider) Currencies(q moneta.CurrencyQuery) ([]moneta.CurrencyUnit, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	all := make([]moneta.CurrencyUnit, 0, len(p.units))
	for _, u := range p.units {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CurrencyCode() < all[j].CurrencyCode() })

	matched := Filter(all, q)
	for _, tag := range q.Locales() {
		region, conf := tag.Region()
		if conf == language.No {
			continue
		}
		matched = append(matched, p.regions[region]...)
	}
	return matched, nil
}

// Filter returns the units of all matching the code and numeric code filters
// of q. A query without any filter matches everything; a query filtering by
// locale only matches nothing, locales being provider specific.
func Filter(all []moneta.CurrencyUnit, q moneta.CurrencyQuery) []moneta.CurrencyUnit {
	if q.IsUnfiltered() {
		return all
	}
	codes := q.CurrencyCodes()
	numerics := q.NumericCodes()
	var matched []moneta.CurrencyUnit
	for _, u := range all {
		if slices.Contains(codes, u.CurrencyCode()) || (u.NumericCode() >= 0 && slices.Contains(numerics, u.NumericCode())) {
			matched = append(matched, u)
		}
	}
	return matched
}
