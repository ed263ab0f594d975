// Package exchange resolves exchange rates across the registered rate
// providers and converts amounts between currencies.
package exchange

import (
	"context"
	"fmt"

	"github.com/go-kit/log"

	"go-moneta"
	"go-moneta/amount"
	"go-moneta/spi"
)

// Provider supplies exchange rates. found is false when the provider has no
// rate for the query.
type Provider interface {
	Name() string
	Rate(ctx context.Context, q moneta.ConversionQuery) (rate moneta.ExchangeRate, found bool, err error)
}

// Service interface for converting from one currency to another
type Service interface {
	// Rate returns the first rate the provider chain of q yields, or moneta.ErrUnknownRate.
	Rate(ctx context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, error)
	// Convert converts amount into term with the current exchange rate.
	Convert(ctx context.Context, amount moneta.MonetaryAmount, term moneta.CurrencyUnit, providers ...string) (moneta.Exchanged, error)
	IsAvailable(ctx context.Context, q moneta.ConversionQuery) bool
	ProviderNames() []string
	DefaultProviderChain() []string
}

type options struct {
	defaultChain []string
	factory      moneta.AmountFactory
}

// Option configures the default Service.
type Option func(*options)

// WithDefaultChain sets the providers queried, in order, when a query names none.
func WithDefaultChain(names ...string) Option {
	return func(o *options) {
		o.defaultChain = names
	}
}

// WithAmountFactory sets the factory creating converted amounts. It defaults
// to Money with an unlimited context.
func WithAmountFactory(f moneta.AmountFactory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// New returns the exchange Service for reg. A Service registered in reg
// replaces the default implementation; more than one is an error.
func New(reg spi.Registry, logger log.Logger, opts ...Option) (Service, error) {
	override, err := spi.Single[Service](reg, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange service: %w", err)
	}
	if override != nil {
		return override, nil
	}
	return NewService(spi.Services[Provider](reg), logger, opts...), nil
}

// service runs the resolution protocol over the rate providers.
type service struct {
	resolver *spi.Resolver[Provider]
	factory  moneta.AmountFactory
}

// NewService constructs a valid Service
func NewService(providers []Provider, logger log.Logger, opts ...Option) Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if o.factory == nil {
		o.factory = amount.NewMoneyProvider(amount.MoneyContext(0, -1)).Factory()
	}
	return &service{
		resolver: spi.NewResolver("exchange", providers, o.defaultChain, log.With(logger, "component", "exchange")),
		factory:  o.factory,
	}
}

func (s *service) Rate(ctx context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, error) {
	base, okBase := q.BaseCurrency()
	term, okTerm := q.TermCurrency()
	if !okBase || !okTerm {
		return moneta.ExchangeRate{}, fmt.Errorf("%v without base or term currency: %w", q, moneta.ErrInvalidArgument)
	}

	chain := s.resolver.Chain(q.ProviderNames())
	rate, ok := spi.First(s.resolver, chain, q, func(p Provider) (moneta.ExchangeRate, bool, error) {
		r, found, err := p.Rate(ctx, q)
		if err != nil || !found {
			return moneta.ExchangeRate{}, false, err
		}
		return r, q.AcceptsRateType(r.Context().RateType()), nil
	})
	if !ok {
		return moneta.ExchangeRate{}, fmt.Errorf("rate [%v->%v] for %v: %w", base.CurrencyCode(), term.CurrencyCode(), q, moneta.ErrUnknownRate)
	}
	return rate, nil
}

// Convert computes a conversion from one currency to another with the current exchange rate.
// As a side-effect a provider's cache of exchange rates might be updated.
func (s *service) Convert(ctx context.Context, amount moneta.MonetaryAmount, term moneta.CurrencyUnit, providers ...string) (moneta.Exchanged, error) {
	if amount == nil || amount.Currency() == nil {
		return moneta.Exchanged{}, fmt.Errorf("convert amount without currency: %w", moneta.ErrInvalidArgument)
	}
	q := moneta.NewConversionQueryBuilder().
		SetBaseCurrency(amount.Currency()).
		SetTermCurrency(term).
		SetProviderNames(providers...).
		Build()
	rate, err := s.Rate(ctx, q)
	if err != nil {
		return moneta.Exchanged{}, fmt.Errorf("convert from [%v]: %w", amount.Currency().CurrencyCode(), err)
	}

	converted, err := s.factory.Create(term, amount.Number().Mul(rate.Factor()))
	if err != nil {
		return moneta.Exchanged{}, fmt.Errorf("convert to [%v]: %w", term.CurrencyCode(), err)
	}
	return moneta.Exchanged{Rate: rate, Amount: converted}, nil
}

func (s *service) IsAvailable(ctx context.Context, q moneta.ConversionQuery) bool {
	_, err := s.Rate(ctx, q)
	return err == nil
}

func (s *service) ProviderNames() []string {
	return s.resolver.ProviderNames()
}

func (s *service) DefaultProviderChain() []string {
	return s.resolver.DefaultChain()
}
