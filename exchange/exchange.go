package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"go-moneta"
)

// Provider names of the built-in rate providers.
const (
	IdentityProviderName = "IDENT"
	DerivedProviderName  = "DERIVED"
)

// IdentityProvider rates a currency against itself at 1.
type IdentityProvider struct{}

func (IdentityProvider) Name() string {
	return IdentityProviderName
}

func (IdentityProvider) Rate(_ context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, bool, error) {
	base, okBase := q.BaseCurrency()
	term, okTerm := q.TermCurrency()
	if !okBase || !okTerm || !moneta.SameCurrency(base, term) {
		return moneta.ExchangeRate{}, false, nil
	}
	rate, err := moneta.NewExchangeRate(base, term, decimal.NewFromInt(1), moneta.NewConversionContext(IdentityProviderName, moneta.RateOther))
	return rate, err == nil, err
}

// DerivedProvider computes rates through a pivot currency, base to pivot to
// term, from the rates of next. The resulting rate records both legs.
type DerivedProvider struct {
	pivot moneta.CurrencyUnit
	next  Provider
}

// NewDerivedProvider returns a provider deriving rates through pivot.
func NewDerivedProvider(pivot moneta.CurrencyUnit, next Provider) *DerivedProvider {
	return &DerivedProvider{pivot: pivot, next: next}
}

func (p *DerivedProvider) Name() string {
	return DerivedProviderName
}

func (p *DerivedProvider) Rate(ctx context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, bool, error) {
	base, okBase := q.BaseCurrency()
	term, okTerm := q.TermCurrency()
	if !okBase || !okTerm || moneta.SameCurrency(base, p.pivot) || moneta.SameCurrency(term, p.pivot) {
		return moneta.ExchangeRate{}, false, nil
	}

	first, found, err := p.next.Rate(ctx, q.ToBuilder().SetTermCurrency(p.pivot).Build())
	if err != nil || !found {
		return moneta.ExchangeRate{}, false, err
	}
	second, found, err := p.next.Rate(ctx, q.ToBuilder().SetBaseCurrency(p.pivot).Build())
	if err != nil || !found {
		return moneta.ExchangeRate{}, false, err
	}

	rateType := first.Context().RateType()
	if second.Context().RateType() != rateType {
		rateType = moneta.RateOther
	}
	rate, err := moneta.NewExchangeRate(base, term, first.Factor().Mul(second.Factor()),
		moneta.NewConversionContext(DerivedProviderName, rateType), first, second)
	if err != nil {
		return moneta.ExchangeRate{}, false, fmt.Errorf("derive [%v->%v] via %v: %w", base.CurrencyCode(), term.CurrencyCode(), p.pivot.CurrencyCode(), err)
	}
	return rate, true, nil
}
