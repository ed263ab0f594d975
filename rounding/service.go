// Package rounding resolves roundings for currencies, scales and names across
// the registered rounding providers.
package rounding

import (
	"fmt"
	"sort"

	"github.com/go-kit/log"

	"go-moneta"
	"go-moneta/spi"
)

// KeyIncrement is the rounding context attribute holding the rounding increment.
const KeyIncrement = "increment"

// Provider supplies roundings. Rounding returns nil when the provider has no
// rounding for the query.
type Provider interface {
	Name() string
	Rounding(q moneta.RoundingQuery) (moneta.Rounding, error)
	// RoundingNames lists the names accepted by RoundingByName.
	RoundingNames() []string
}

// Service looks up roundings.
type Service interface {
	// DefaultRounding rounds every amount with the rounding of its own currency.
	DefaultRounding() moneta.Rounding
	// Rounding returns the rounding for currency, or the default rounding.
	Rounding(currency moneta.CurrencyUnit, providers ...string) moneta.Rounding
	// CashRounding returns the rounding to the minimal coin of currency, or the default rounding.
	CashRounding(currency moneta.CurrencyUnit, providers ...string) moneta.Rounding
	// RoundingByQuery returns the first rounding matching q, or the default rounding.
	RoundingByQuery(q moneta.RoundingQuery) moneta.Rounding
	// RoundingByName fails with moneta.ErrUnknownRounding when no provider has name.
	RoundingByName(name string, providers ...string) (moneta.Rounding, error)
	// Roundings returns the roundings of every provider matching q.
	Roundings(q moneta.RoundingQuery) []moneta.Rounding
	IsAvailable(q moneta.RoundingQuery) bool
	IsNameAvailable(name string, providers ...string) bool
	// RoundingNames lists the rounding names of the providers, selected by
	// name or regular expression.
	RoundingNames(providers ...string) []string
	ProviderNames() []string
	DefaultProviderChain() []string
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

// New returns the rounding Service for reg. A Service registered in reg
// replaces the default implementation; more than one is an error.
func New(reg spi.Registry, logger log.Logger, opts ...Option) (Service, error) {
	override, err := spi.Single[Service](reg, nil)
	if err != nil {
		return nil, fmt.Errorf("rounding service: %w", err)
	}
	if override != nil {
		return override, nil
	}
	return NewService(spi.Services[Provider](reg), logger, opts...), nil
}

type service struct {
	resolver *spi.Resolver[Provider]
	fallback moneta.Rounding
}

// NewService returns the default Service over providers.
func NewService(providers []Provider, logger log.Logger, opts ...Option) Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	s := &service{
		resolver: spi.NewResolver("rounding", providers, o.defaultChain, log.With(logger, "component", "rounding")),
	}
	s.fallback = &adaptiveRounding{
		find: s.find,
		ctx:  moneta.NewRoundingContextBuilder(DefaultName, DefaultName).Build(),
	}
	return s
}

func (s *service) DefaultRounding() moneta.Rounding {
	return s.fallback
}

func (s *service) Rounding(currency moneta.CurrencyUnit, providers ...string) moneta.Rounding {
	return s.RoundingByQuery(moneta.NewRoundingQueryBuilder().
		SetCurrency(currency).
		SetProviderNames(providers...).
		Build())
}

func (s *service) CashRounding(currency moneta.CurrencyUnit, providers ...string) moneta.Rounding {
	return s.RoundingByQuery(moneta.NewRoundingQueryBuilder().
		SetCurrency(currency).
		SetCashRounding(true).
		SetProviderNames(providers...).
		Build())
}

func (s *service) RoundingByQuery(q moneta.RoundingQuery) moneta.Rounding {
	if r, ok := s.find(q); ok {
		return r
	}
	return s.fallback
}

func (s *service) RoundingByName(name string, providers ...string) (moneta.Rounding, error) {
	q := moneta.NewRoundingQueryBuilder().SetRoundingName(name).SetProviderNames(providers...).Build()
	r, ok := s.find(q)
	if !ok {
		return nil, fmt.Errorf("rounding [%v]: %w", name, moneta.ErrUnknownRounding)
	}
	return r, nil
}

func (s *service) Roundings(q moneta.RoundingQuery) []moneta.Rounding {
	chain := s.resolver.Chain(q.ProviderNames())
	return spi.Collect(s.resolver, chain, q, func(p Provider) ([]moneta.Rounding, error) {
		r, err := p.Rounding(q)
		if err != nil || r == nil {
			return nil, err
		}
		return []moneta.Rounding{r}, nil
	}, func(r moneta.Rounding) string {
		return r.Context().String()
	})
}

func (s *service) IsAvailable(q moneta.RoundingQuery) bool {
	_, ok := s.find(q)
	return ok
}

func (s *service) IsNameAvailable(name string, providers ...string) bool {
	_, err := s.RoundingByName(name, providers...)
	return err == nil
}

func (s *service) RoundingNames(providers ...string) []string {
	chain := s.resolver.Match(providers)
	names := spi.Collect(s.resolver, chain, providers, func(p Provider) ([]string, error) {
		return p.RoundingNames(), nil
	}, func(name string) string {
		return name
	})
	sort.Strings(names)
	return names
}

func (s *service) ProviderNames() []string {
	return s.resolver.ProviderNames()
}

func (s *service) DefaultProviderChain() []string {
	return s.resolver.DefaultChain()
}

// find returns the first rounding the provider chain of q yields.
func (s *service) find(q moneta.RoundingQuery) (moneta.Rounding, bool) {
	chain := s.resolver.Chain(q.ProviderNames())
	return spi.First(s.resolver, chain, q, func(p Provider) (moneta.Rounding, bool, error) {
		r, err := p.Rounding(q)
		return r, err == nil && r != nil, err
	})
}

// adaptiveRounding resolves the rounding of each amount's currency when it is
// applied. Without a matching provider the amount is rounded half-even to the
// currency's fraction digits; amounts of pseudo currencies are returned as is.
type adaptiveRounding struct {
	find func(moneta.RoundingQuery) (moneta.Rounding, bool)
	ctx  moneta.RoundingContext
}

func (r *adaptiveRounding) Apply(amount moneta.MonetaryAmount) (moneta.MonetaryAmount, error) {
	if amount == nil || amount.Currency() == nil {
		return nil, fmt.Errorf("round amount without currency: %w", moneta.ErrInvalidArgument)
	}
	currency := amount.Currency()
	if resolved, ok := r.find(moneta.NewRoundingQueryBuilder().SetCurrency(currency).Build()); ok {
		return resolved.Apply(amount)
	}
	digits := currency.DefaultFractionDigits()
	if digits < 0 {
		return amount, nil
	}
	return amount.WithNumber(Round(amount.Number(), digits, moneta.HalfEven))
}

func (r *adaptiveRounding) Context() moneta.RoundingContext {
	return r.ctx
}

func (r *adaptiveRounding) String() string {
	return "Rounding[" + DefaultName + "]"
}
