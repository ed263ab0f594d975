package exchange

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"go-moneta"
	"go-moneta/amount"
	"go-moneta/spi"
)

type mock struct {
	name          string
	exchangeRates map[string]map[string]string
	rateType      moneta.RateType
	err           error
}

func (m *mock) Name() string { return m.name }

func (m *mock) Rate(_ context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, bool, error) {
	if m.err != nil {
		return moneta.ExchangeRate{}, false, m.err
	}
	base, _ := q.BaseCurrency()
	term, _ := q.TermCurrency()
	factor, ok := m.exchangeRates[base.CurrencyCode()][term.CurrencyCode()]
	if !ok {
		return moneta.ExchangeRate{}, false, nil
	}
	rate, err := moneta.NewExchangeRate(base, term, decimal.RequireFromString(factor), moneta.NewConversionContext(m.name, m.rateType))
	return rate, err == nil, err
}

func currency(t *testing.T, code string) moneta.CurrencyUnit {
	t.Helper()
	c, err := moneta.NewCurrencyBuilder(code, moneta.NewCurrencyContextBuilder("test").Build()).Build()
	require.NoError(t, err)
	return c
}

func money(t *testing.T, code, number string) moneta.MonetaryAmount {
	t.Helper()
	m, err := amount.NewMoney(currency(t, code), decimal.RequireFromString(number), amount.MoneyContext(0, -1))
	require.NoError(t, err)
	return m
}

func TestService_Convert(t *testing.T) {
	cs := &mock{
		name: "mock",
		exchangeRates: map[string]map[string]string{
			"USD": {"FOO": "2.0", "BAR": "3.0"},
			"GBP": {"FOO": "4.0", "BAR": "5.0"},
		},
	}
	service := NewService([]Provider{cs, IdentityProvider{}}, nil)

	type args struct {
		amount string
		from   string
		to     string
	}
	tests := []struct {
		name       string
		args       args
		wantRate   string
		wantAmount string
		wantErr    bool
	}{
		{"usd -> foo", args{"10.0", "USD", "FOO"}, "2", "20", false},
		{"usd -> bar", args{"10.0", "USD", "BAR"}, "3", "30", false},
		{"gbp -> foo", args{"10.0", "GBP", "FOO"}, "4", "40", false},
		{"gbp -> bar", args{"10.5", "GBP", "BAR"}, "5", "52.5", false},
		{"gbp -> gbp", args{"10.0", "GBP", "GBP"}, "1", "10", false},
		{"gbp -> xyz", args{"10.0", "GBP", "XYZ"}, "", "", true},
		{"abc -> xyz", args{"10.0", "ABC", "XYZ"}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), money(t, tt.args.from, tt.args.amount), currency(t, tt.args.to))
			if tt.wantErr {
				assert.ErrorIs(t, err, moneta.ErrUnknownRate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRate, got.Rate.Factor().String())
			assert.Equal(t, tt.wantAmount, got.Amount.Number().String())
			assert.Equal(t, tt.args.to, got.Amount.Currency().CurrencyCode())
		})
	}
}

func TestService_Rate_Chain(t *testing.T) {
	a := &mock{name: "A", exchangeRates: map[string]map[string]string{"USD": {"EUR": "0.9"}}}
	b := &mock{name: "B", exchangeRates: map[string]map[string]string{"USD": {"EUR": "0.8"}}}
	s := NewService([]Provider{b, a}, nil)
	usd, eur := currency(t, "USD"), currency(t, "EUR")
	q := moneta.NewConversionQueryBuilder().SetBaseCurrency(usd).SetTermCurrency(eur)

	rate, err := s.Rate(context.Background(), q.Build())
	require.NoError(t, err)
	assert.Equal(t, "A", rate.Context().ProviderName())

	rate, err = s.Rate(context.Background(), q.SetProviderNames("B").Build())
	require.NoError(t, err)
	assert.Equal(t, "B", rate.Context().ProviderName())
}

func TestService_Rate_FailureIsolation(t *testing.T) {
	var buf bytes.Buffer
	broken := &mock{name: "A", err: errors.New("unreachable")}
	ok := &mock{name: "B", exchangeRates: map[string]map[string]string{"USD": {"EUR": "0.9"}}}
	s := NewService([]Provider{broken, ok}, log.NewLogfmtLogger(&buf))

	rate, err := s.Rate(context.Background(), moneta.NewConversionQueryBuilder().
		SetBaseCurrency(currency(t, "USD")).
		SetTermCurrency(currency(t, "EUR")).
		Build())

	require.NoError(t, err)
	assert.Equal(t, "B", rate.Context().ProviderName())
	assert.Contains(t, buf.String(), "provider=A")
	assert.Contains(t, buf.String(), "err=unreachable")
}

func TestService_Rate_RateTypes(t *testing.T) {
	deferred := &mock{name: "A", rateType: moneta.RateDeferred, exchangeRates: map[string]map[string]string{"USD": {"EUR": "0.9"}}}
	realtime := &mock{name: "B", rateType: moneta.RateRealtime, exchangeRates: map[string]map[string]string{"USD": {"EUR": "0.8"}}}
	s := NewService([]Provider{deferred, realtime}, nil)

	q := moneta.NewConversionQueryBuilder().
		SetBaseCurrency(currency(t, "USD")).
		SetTermCurrency(currency(t, "EUR")).
		SetRateTypes(moneta.RateRealtime).
		Build()
	rate, err := s.Rate(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "B", rate.Context().ProviderName())

	_, err = s.Rate(context.Background(), q.ToBuilder().SetRateTypes(moneta.RateHistoric).Build())
	assert.ErrorIs(t, err, moneta.ErrUnknownRate)
}

func TestService_Rate_InvalidQuery(t *testing.T) {
	s := NewService(nil, nil)

	_, err := s.Rate(context.Background(), moneta.NewConversionQueryBuilder().Build())

	assert.ErrorIs(t, err, moneta.ErrInvalidArgument)
}

func TestService_Rate_UnknownEchoesQuery(t *testing.T) {
	s := NewService([]Provider{IdentityProvider{}}, nil)
	q := moneta.NewConversionQueryBuilder().
		SetBaseCurrency(currency(t, "USD")).
		SetTermCurrency(currency(t, "EUR")).
		SetProviderNames("IDENT").
		Build()

	_, err := s.Rate(context.Background(), q)

	require.ErrorIs(t, err, moneta.ErrUnknownRate)
	assert.Contains(t, err.Error(), "rate [USD->EUR]")
	assert.Contains(t, err.Error(), q.String())
}

// orphan is an amount without a currency.
type orphan struct {
	moneta.MonetaryAmount
}

func (orphan) Currency() moneta.CurrencyUnit { return nil }

func TestService_Convert_InvalidAmount(t *testing.T) {
	s := NewService([]Provider{IdentityProvider{}}, nil)
	usd := currency(t, "USD")

	tests := []struct {
		name   string
		amount moneta.MonetaryAmount
	}{
		{"nil amount", nil},
		{"nil currency", orphan{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Convert(context.Background(), tt.amount, usd)
			assert.ErrorIs(t, err, moneta.ErrInvalidArgument)
		})
	}
}

func TestDerivedProvider(t *testing.T) {
	next := &mock{name: "A", exchangeRates: map[string]map[string]string{
		"GBP": {"USD": "1.25"},
		"USD": {"EUR": "0.9"},
	}}
	usd := currency(t, "USD")
	s := NewService([]Provider{next, NewDerivedProvider(usd, next)}, nil)

	rate, err := s.Rate(context.Background(), moneta.NewConversionQueryBuilder().
		SetBaseCurrency(currency(t, "GBP")).
		SetTermCurrency(currency(t, "EUR")).
		Build())

	require.NoError(t, err)
	assert.Equal(t, DerivedProviderName, rate.Context().ProviderName())
	assert.Equal(t, "1.125", rate.Factor().String())
	require.True(t, rate.IsDerived())
	chain := rate.Chain()
	assert.Equal(t, "USD", chain[0].Term().CurrencyCode())
	assert.Equal(t, "USD", chain[1].Base().CurrencyCode())
}

func TestNew_Registry(t *testing.T) {
	reg := spi.NewStaticRegistry(nil)
	require.NoError(t, spi.RegisterInstance[Provider](reg, IdentityProviderName, IdentityProvider{}))

	s, err := New(reg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{IdentityProviderName}, s.ProviderNames())

	require.NoError(t, spi.RegisterInstance[Service](reg, "one", s))
	require.NoError(t, spi.RegisterInstance[Service](reg, "two", s))
	_, err = New(reg, nil)
	assert.ErrorIs(t, err, spi.ErrAmbiguousRegistration)
}

func TestLoggingService(t *testing.T) {
	var buf bytes.Buffer
	s := NewLoggingService(log.NewLogfmtLogger(&buf), NewService([]Provider{IdentityProvider{}}, nil))

	_, err := s.Convert(context.Background(), money(t, "USD", "1"), currency(t, "USD"))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "method=convert")
	assert.Contains(t, buf.String(), "converted_amount=\"USD 1\"")
}

func TestTracingService(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := NewTracingService(tp.Tracer("test"), NewService([]Provider{IdentityProvider{}}, nil))

	_, err := s.Convert(context.Background(), money(t, "USD", "1"), currency(t, "USD"))
	require.NoError(t, err)
	_, err = s.Convert(context.Background(), money(t, "USD", "1"), currency(t, "EUR"))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "exchange.convert", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestNewTracingService_NilTracer(t *testing.T) {
	s := NewService(nil, nil)
	assert.Same(t, s, NewTracingService(nil, s))
}
