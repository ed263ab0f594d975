// Package amount selects amount factories by type and numeric capability
// across the registered amount providers.
package amount

import (
	"fmt"
	"reflect"

	"github.com/go-kit/log"

	"go-moneta"
	"go-moneta/spi"
)

// Service looks up amount factories.
type Service interface {
	// DefaultFactory returns the factory of the default amount type.
	DefaultFactory() (moneta.AmountFactory, error)
	// Factory returns the first factory satisfying q, or moneta.ErrNoAmountFactory.
	Factory(q moneta.AmountFactoryQuery) (moneta.AmountFactory, error)
	Factories(q moneta.AmountFactoryQuery) []moneta.AmountFactory
	IsAvailable(q moneta.AmountFactoryQuery) bool
	AmountTypes() []reflect.Type
	DefaultAmountType() (reflect.Type, error)
	ProviderNames() []string
	DefaultProviderChain() []string
}

type options struct {
	defaultChain []string
	defaultType  reflect.Type
}

// Option configures the default Service.
type Option func(*options)

// WithDefaultChain sets the providers queried, in order, when a query names none.
func WithDefaultChain(names ...string) Option {
	return func(o *options) {
		o.defaultChain = names
	}
}

// WithDefaultAmountType sets the type DefaultFactory creates.
func WithDefaultAmountType(t reflect.Type) Option {
	return func(o *options) {
		o.defaultType = t
	}
}

// New returns the amount Service for reg. A Service registered in reg
// replaces the default implementation; more than one is an error.
func New(reg spi.Registry, logger log.Logger, opts ...Option) (Service, error) {
	override, err := spi.Single[Service](reg, nil)
	if err != nil {
		return nil, fmt.Errorf("amount service: %w", err)
	}
	if override != nil {
		return override, nil
	}
	return NewService(spi.Services[Provider](reg), logger, opts...), nil
}

type service struct {
	resolver    *spi.Resolver[Provider]
	defaultType reflect.Type
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
	return &service{
		resolver:    spi.NewResolver("amount", providers, o.defaultChain, log.With(logger, "component", "amount")),
		defaultType: o.defaultType,
	}
}

func (s *service) DefaultFactory() (moneta.AmountFactory, error) {
	t, err := s.DefaultAmountType()
	if err != nil {
		return nil, err
	}
	return s.Factory(moneta.NewAmountFactoryQueryBuilder().SetTargetType(t).Build())
}

func (s *service) Factory(q moneta.AmountFactoryQuery) (moneta.AmountFactory, error) {
	chain := s.resolver.Chain(q.ProviderNames())
	explicit := len(q.ProviderNames()) > 0
	f, ok := spi.First(s.resolver, chain, q, func(p Provider) (moneta.AmountFactory, bool, error) {
		if !accepts(p, q, explicit) {
			return nil, false, nil
		}
		f := p.Factory()
		return f, f != nil, nil
	})
	if !ok {
		return nil, fmt.Errorf("%v: %w", q, moneta.ErrNoAmountFactory)
	}
	return f, nil
}

func (s *service) Factories(q moneta.AmountFactoryQuery) []moneta.AmountFactory {
	chain := s.resolver.Chain(q.ProviderNames())
	explicit := len(q.ProviderNames()) > 0
	return spi.Collect(s.resolver, chain, q, func(p Provider) ([]moneta.AmountFactory, error) {
		if !accepts(p, q, explicit) {
			return nil, nil
		}
		if f := p.Factory(); f != nil {
			return []moneta.AmountFactory{f}, nil
		}
		return nil, nil
	}, moneta.AmountFactory.AmountType)
}

func (s *service) IsAvailable(q moneta.AmountFactoryQuery) bool {
	_, err := s.Factory(q)
	return err == nil
}

func (s *service) AmountTypes() []reflect.Type {
	var types []reflect.Type
	seen := map[reflect.Type]bool{}
	for _, p := range s.resolver.Chain(nil) {
		if p.InclusionPolicy() == Never || seen[p.AmountType()] {
			continue
		}
		seen[p.AmountType()] = true
		types = append(types, p.AmountType())
	}
	return types
}

// DefaultAmountType returns the configured default type, else the type of
// the first provider of the default chain.
func (s *service) DefaultAmountType() (reflect.Type, error) {
	if s.defaultType != nil {
		return s.defaultType, nil
	}
	for _, p := range s.resolver.Chain(nil) {
		if p.InclusionPolicy() == Always {
			return p.AmountType(), nil
		}
	}
	return nil, fmt.Errorf("default amount type: %w", moneta.ErrNoAmountFactory)
}

func (s *service) ProviderNames() []string {
	return s.resolver.ProviderNames()
}

func (s *service) DefaultProviderChain() []string {
	return s.resolver.DefaultChain()
}

// accepts reports whether p may serve q. Directed providers must be named by
// the query; requested limits must fit the provider's maximal context.
func accepts(p Provider, q moneta.AmountFactoryQuery, explicit bool) bool {
	switch p.InclusionPolicy() {
	case Never:
		return false
	case Directed:
		if !explicit {
			return false
		}
	}
	if t, ok := q.TargetType(); ok && t != nil && t != p.AmountType() {
		return false
	}

	limit := p.MaximalContext()
	if want, ok := q.Precision(); ok && limit.Precision() > 0 && (want <= 0 || want > limit.Precision()) {
		return false
	}
	if want, ok := q.MaxScale(); ok && limit.MaxScale() >= 0 && (want < 0 || want > limit.MaxScale()) {
		return false
	}
	if q.FixedScale() && !limit.FixedScale() {
		return false
	}
	return true
}
