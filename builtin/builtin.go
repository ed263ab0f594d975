// Package builtin registers the providers shipped with go-moneta and builds
// the monetary services on top of a registry.
package builtin

import (
	"fmt"
	"time"

	"github.com/go-kit/log"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"go-moneta"
	"go-moneta/amount"
	"go-moneta/coinbase"
	"go-moneta/currency"
	"go-moneta/currencyfile"
	"go-moneta/exchange"
	"go-moneta/rounding"
	"go-moneta/spi"
)

// Options selects the optional providers.
type Options struct {
	// CurrencyFile is a TOML currency data file; empty for none.
	CurrencyFile string
	// MoneyContext is the default context of Money amounts.
	MoneyContext moneta.MonetaryContext

	Coinbase bool
	// CoinbaseURL defaults to coinbase.ApiUrlBase.
	CoinbaseURL string
	// Refresh is the lifetime of cached Coinbase rates.
	Refresh time.Duration
	// RateLimit caps Coinbase requests per second; 0 disables the limit.
	RateLimit float64
	// Pivot enables rates derived through this currency from Coinbase rates.
	Pivot string
}

// Register adds the built-in providers to r.
func Register(r *spi.StaticRegistry, o Options, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	iso := currency.NewISOProvider()
	regs := []func() error{
		func() error { return spi.RegisterInstance[currency.Provider](r, currency.ISOProviderName, iso) },
		func() error {
			return spi.RegisterInstance[rounding.Provider](r, rounding.DefaultName, rounding.NewDefaultProvider())
		},
		func() error {
			return spi.RegisterInstance[amount.Provider](r, amount.MoneyProviderName, amount.NewMoneyProvider(o.MoneyContext))
		},
		func() error {
			return spi.RegisterInstance[amount.Provider](r, amount.FastMoneyProviderName, amount.FastMoneyProvider{})
		},
		func() error {
			return spi.RegisterInstance[exchange.Provider](r, exchange.IdentityProviderName, exchange.IdentityProvider{})
		},
	}

	if o.CurrencyFile != "" {
		regs = append(regs, func() error {
			return spi.Register(r, currencyfile.DefaultName, func() (currency.Provider, error) {
				return currencyfile.Load(o.CurrencyFile, "")
			})
		})
	}

	if o.Coinbase {
		cb := coinbase.NewProvider(newCoinbaseService(o, logger))
		regs = append(regs, func() error {
			return spi.RegisterInstance[exchange.Provider](r, coinbase.ProviderName, cb)
		})
		if o.Pivot != "" {
			regs = append(regs, func() error {
				return spi.Register(r, exchange.DerivedProviderName, func() (exchange.Provider, error) {
					units, err := iso.Currencies(moneta.NewCurrencyQueryBuilder().SetCurrencyCodes(o.Pivot).Build())
					if err != nil || len(units) == 0 {
						return nil, fmt.Errorf("pivot [%v]: %w", o.Pivot, moneta.ErrUnknownCurrency)
					}
					return exchange.NewDerivedProvider(units[0], cb), nil
				})
			})
		}
	}

	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}

func newCoinbaseService(o Options, logger log.Logger) coinbase.Service {
	var limiter *rate.Limiter
	if o.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.RateLimit), 1)
	}
	refresh := o.Refresh
	if refresh <= 0 {
		refresh = time.Minute
	}

	var s coinbase.Service
	s = coinbase.NewService(o.CoinbaseURL, limiter)
	s = coinbase.NewLoggingService(log.With(logger, "component", "coinbase_rest"), s)
	s = coinbase.NewCachingService(refresh, s)
	s = coinbase.NewLoggingService(log.With(logger, "component", "coinbase_cache"), s)
	return s
}

// Chains holds the provider chains per service; an empty chain keeps the
// service default.
type Chains struct {
	Currency []string
	Rounding []string
	Amount   []string
	Exchange []string
}

// Services bundles the monetary services.
type Services struct {
	Currencies currency.Service
	Roundings  rounding.Service
	Amounts    amount.Service
	Exchange   exchange.Service
}

// NewServices builds the services of reg, decorated with logging and, when
// tracer is not nil, tracing.
func NewServices(reg spi.Registry, chains Chains, logger log.Logger, tracer trace.Tracer) (*Services, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	currencies, err := currency.New(reg, logger, currency.WithDefaultChain(chains.Currency...))
	if err != nil {
		return nil, err
	}
	roundings, err := rounding.New(reg, logger, rounding.WithDefaultChain(chains.Rounding...))
	if err != nil {
		return nil, err
	}
	amounts, err := amount.New(reg, logger,
		amount.WithDefaultChain(chains.Amount...),
		amount.WithDefaultAmountType(amount.MoneyType))
	if err != nil {
		return nil, err
	}
	factory, err := amounts.DefaultFactory()
	if err != nil {
		return nil, err
	}
	rates, err := exchange.New(reg, logger,
		exchange.WithDefaultChain(chains.Exchange...),
		exchange.WithAmountFactory(factory))
	if err != nil {
		return nil, err
	}

	s := &Services{
		Currencies: currency.NewLoggingService(log.With(logger, "component", "currency"), currencies),
		Roundings:  roundings,
		Amounts:    amounts,
		Exchange:   exchange.NewLoggingService(log.With(logger, "component", "exchange"), rates),
	}
	s.Exchange = exchange.NewTracingService(tracer, s.Exchange)
	return s, nil
}
