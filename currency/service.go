// Package currency resolves currencies by code, locale or query across the
// registered currency providers.
package currency

import (
	"fmt"
	"slices"

	"github.com/go-kit/log"
	"golang.org/x/text/language"

	"go-moneta"
	"go-moneta/spi"
)

// Provider supplies currencies matching a query. A provider that knows none
// of the requested currencies returns an empty slice and no error.
type Provider interface {
	Name() string
	Currencies(q moneta.CurrencyQuery) ([]moneta.CurrencyUnit, error)
}

// Service looks up currencies.
type Service interface {
	// Currency returns the currency with code. It fails with moneta.ErrUnknownCurrency
	// when no provider knows it.
	Currency(code string, providers ...string) (moneta.CurrencyUnit, error)
	// CurrencyForLocale returns the currency used in the region of tag.
	CurrencyForLocale(tag language.Tag, providers ...string) (moneta.CurrencyUnit, error)
	// CurrenciesForLocale returns every currency used in the region of tag.
	CurrenciesForLocale(tag language.Tag, providers ...string) ([]moneta.CurrencyUnit, error)
	// CurrencyByQuery returns the single currency matching q.
	CurrencyByQuery(q moneta.CurrencyQuery) (moneta.CurrencyUnit, error)
	// Currencies returns all currencies matching q, without duplicate codes.
	Currencies(q moneta.CurrencyQuery) []moneta.CurrencyUnit
	IsAvailable(code string, providers ...string) bool
	IsAvailableForLocale(tag language.Tag, providers ...string) bool
	ProviderNames() []string
	DefaultProviderChain() []string
	// Register adds a custom currency, available to every later lookup.
	Register(unit moneta.CurrencyUnit) error
}

type options struct {
	defaultChain []string
}

// Option configures the default Service.
type Option func(*options)

// WithDefaultChain sets the providers queried, in order, when a query names none.
func WithDefaultChain(names ...string) Option {
	return func(o *options) {
		o.defaultChain = names
	}
}

// New returns the currency Service for reg. A Service registered in reg
// replaces the default implementation; more than one is an error.
func New(reg spi.Registry, logger log.Logger, opts ...Option) (Service, error) {
	override, err := spi.Single[Service](reg, nil)
	if err != nil {
		return nil, fmt.Errorf("currency service: %w", err)
	}
	if override != nil {
		return override, nil
	}
	return NewService(spi.Services[Provider](reg), logger, opts...), nil
}

// service runs the resolution protocol over the currency providers.
type service struct {
	resolver *spi.Resolver[Provider]
	custom   *ConfigurableProvider
}

// NewService returns the default Service over providers. A ConfigurableProvider
// is always consulted; one is created when providers lacks it.
func NewService(providers []Provider, logger log.Logger, opts ...Option) Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	providers = slices.Clone(providers)
	var custom *ConfigurableProvider
	for _, p := range providers {
		if c, ok := p.(*ConfigurableProvider); ok {
			custom = c
			break
		}
	}
	if custom == nil {
		custom = NewConfigurableProvider()
		providers = append(providers, custom)
	}
	chain := o.defaultChain
	if len(chain) > 0 && !slices.Contains(chain, custom.Name()) {
		chain = append(slices.Clone(chain), custom.Name())
	}

	return &service{
		resolver: spi.NewResolver("currency", providers, chain, log.With(logger, "component", "currency")),
		custom:   custom,
	}
}

func (s *service) Currency(code string, providers ...string) (moneta.CurrencyUnit, error) {
	q := moneta.NewCurrencyQueryBuilder().SetCurrencyCodes(code).SetProviderNames(providers...).Build()
	return s.first(q)
}

func (s *service) CurrencyForLocale(tag language.Tag, providers ...string) (moneta.CurrencyUnit, error) {
	q := moneta.NewCurrencyQueryBuilder().SetLocales(tag).SetProviderNames(providers...).Build()
	return s.first(q)
}

func (s *service) CurrenciesForLocale(tag language.Tag, providers ...string) ([]moneta.CurrencyUnit, error) {
	q := moneta.NewCurrencyQueryBuilder().SetLocales(tag).SetProviderNames(providers...).Build()
	units := s.Currencies(q)
	if len(units) == 0 {
		return nil, fmt.Errorf("locale [%v]: %w", tag, moneta.ErrUnknownCurrency)
	}
	return units, nil
}

func (s *service) CurrencyByQuery(q moneta.CurrencyQuery) (moneta.CurrencyUnit, error) {
	units := s.Currencies(q)
	switch len(units) {
	case 0:
		return nil, fmt.Errorf("%v: %w", q, moneta.ErrUnknownCurrency)
	case 1:
		return units[0], nil
	default:
		return nil, fmt.Errorf("%v matched %d currencies: %w", q, len(units), moneta.ErrAmbiguousCurrency)
	}
}

func (s *service) Currencies(q moneta.CurrencyQuery) []moneta.CurrencyUnit {
	chain := s.resolver.Chain(q.ProviderNames())
	return spi.Collect(s.resolver, chain, q, func(p Provider) ([]moneta.CurrencyUnit, error) {
		return p.Currencies(q)
	}, moneta.CurrencyUnit.CurrencyCode)
}

func (s *service) IsAvailable(code string, providers ...string) bool {
	_, err := s.Currency(code, providers...)
	return err == nil
}

func (s *service) IsAvailableForLocale(tag language.Tag, providers ...string) bool {
	_, err := s.CurrencyForLocale(tag, providers...)
	return err == nil
}

func (s *service) ProviderNames() []string {
	return s.resolver.ProviderNames()
}

func (s *service) DefaultProviderChain() []string {
	return s.resolver.DefaultChain()
}

func (s *service) Register(unit moneta.CurrencyUnit) error {
	return s.custom.Register(unit)
}

// first returns the first currency any provider of the chain yields for q.
func (s *service) first(q moneta.CurrencyQuery) (moneta.CurrencyUnit, error) {
	chain := s.resolver.Chain(q.ProviderNames())
	unit, ok := spi.First(s.resolver, chain, q, func(p Provider) (moneta.CurrencyUnit, bool, error) {
		units, err := p.Currencies(q)
		if err != nil || len(units) == 0 {
			return nil, false, err
		}
		return units[0], true, nil
	})
	if !ok {
		return nil, fmt.Errorf("%v: %w", q, moneta.ErrUnknownCurrency)
	}
	return unit, nil
}
