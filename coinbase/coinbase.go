package coinbase

import (
	"context"
	"errors"

	"go-moneta"
	"go-moneta/exchange"
)

// ProviderName names the Coinbase exchange rate provider.
const ProviderName = "COINBASE"

var _ exchange.Provider = (*Provider)(nil)

// Provider adapts a coinbase.Service to an exchange.Provider. Rates are
// reported as deferred as the service may serve them from a cache.
type Provider struct {
	service Service
}

// NewProvider returns a provider reading rates from s.
func NewProvider(s Service) *Provider {
	return &Provider{service: s}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Rate(ctx context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, bool, error) {
	base, okBase := q.BaseCurrency()
	term, okTerm := q.TermCurrency()
	if !okBase || !okTerm {
		return moneta.ExchangeRate{}, false, nil
	}
	if _, historic := q.Timestamp(); historic {
		return moneta.ExchangeRate{}, false, nil
	}

	rates, err := p.service.ExchangeRates(ctx, base.CurrencyCode())
	if errors.Is(err, ErrUnsupportedCurrency) {
		return moneta.ExchangeRate{}, false, nil
	}
	if err != nil {
		return moneta.ExchangeRate{}, false, err
	}

	factor, ok := rates[term.CurrencyCode()]
	if !ok || !factor.IsPositive() {
		return moneta.ExchangeRate{}, false, nil
	}
	rate, err := moneta.NewExchangeRate(base, term, factor, moneta.NewConversionContext(ProviderName, moneta.RateDeferred))
	if err != nil {
		return moneta.ExchangeRate{}, false, err
	}
	return rate, true, nil
}
