package currency

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"go-moneta"
	"go-moneta/spi"
)

type mock struct {
	name  string
	units []moneta.CurrencyUnit
	err   error
	panic bool
	calls int
}

func (m *mock) Name() string { return m.name }

func (m *mock) Currencies(q moneta.CurrencyQuery) ([]moneta.CurrencyUnit, error) {
	m.calls++
	if m.panic {
		panic("boom")
	}
	if m.err != nil {
		return nil, m.err
	}
	return Filter(m.units, q), nil
}

func unit(t *testing.T, provider, code string, digits int) moneta.CurrencyUnit {
	t.Helper()
	c, err := moneta.NewCurrencyBuilder(code, moneta.NewCurrencyContextBuilder(provider).Build()).
		SetDefaultFractionDigits(digits).
		Build()
	require.NoError(t, err)
	return c
}

func TestService_Currency(t *testing.T) {
	a := &mock{name: "A", units: []moneta.CurrencyUnit{unit(t, "A", "AAA", 2), unit(t, "A", "DUP", 2)}}
	b := &mock{name: "B", units: []moneta.CurrencyUnit{unit(t, "B", "BBB", 0), unit(t, "B", "DUP", 3)}}
	s := NewService([]Provider{b, a}, nil)

	tests := []struct {
		name         string
		code         string
		providers    []string
		wantProvider string
		wantErr      error
	}{
		{"from a", "AAA", nil, "A", nil},
		{"from b", "BBB", nil, "B", nil},
		{"first in default chain wins", "DUP", nil, "A", nil},
		{"explicit chain", "DUP", []string{"B", "A"}, "B", nil},
		{"explicit chain excludes others", "AAA", []string{"B"}, "", moneta.ErrUnknownCurrency},
		{"unknown", "ZZZ", nil, "", moneta.ErrUnknownCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Currency(tt.code, tt.providers...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.code, got.CurrencyCode())
			assert.Equal(t, tt.wantProvider, got.Context().ProviderName())
		})
	}
}

func TestService_FailingProvidersAreIsolated(t *testing.T) {
	var buf bytes.Buffer
	failing := &mock{name: "A", err: errors.New("unavailable")}
	panicking := &mock{name: "B", panic: true}
	ok := &mock{name: "C", units: []moneta.CurrencyUnit{unit(t, "C", "CCC", 2)}}
	s := NewService([]Provider{failing, panicking, ok}, log.NewLogfmtLogger(&buf))

	got, err := s.Currency("CCC")
	require.NoError(t, err)
	assert.Equal(t, "CCC", got.CurrencyCode())

	all := s.Currencies(moneta.NewCurrencyQueryBuilder().Build())
	assert.Len(t, all, 1)

	assert.Contains(t, buf.String(), "provider=A")
	assert.Contains(t, buf.String(), "provider=B")
	assert.Contains(t, buf.String(), "err=unavailable")
}

func TestService_Currencies_Union(t *testing.T) {
	a := &mock{name: "A", units: []moneta.CurrencyUnit{unit(t, "A", "AAA", 2), unit(t, "A", "DUP", 2)}}
	b := &mock{name: "B", units: []moneta.CurrencyUnit{unit(t, "B", "BBB", 0), unit(t, "B", "DUP", 3)}}
	s := NewService([]Provider{a, b}, nil)

	got := s.Currencies(moneta.NewCurrencyQueryBuilder().Build())

	var codes []string
	for _, u := range got {
		codes = append(codes, u.CurrencyCode())
	}
	assert.Equal(t, []string{"AAA", "DUP", "BBB"}, codes)
}

func TestService_CurrencyByQuery(t *testing.T) {
	a := &mock{name: "A", units: []moneta.CurrencyUnit{unit(t, "A", "AAA", 2), unit(t, "A", "BBB", 2)}}
	s := NewService([]Provider{a}, nil)

	got, err := s.CurrencyByQuery(moneta.NewCurrencyQueryBuilder().SetCurrencyCodes("BBB").Build())
	require.NoError(t, err)
	assert.Equal(t, "BBB", got.CurrencyCode())

	_, err = s.CurrencyByQuery(moneta.NewCurrencyQueryBuilder().SetCurrencyCodes("AAA", "BBB").Build())
	assert.ErrorIs(t, err, moneta.ErrAmbiguousCurrency)

	_, err = s.CurrencyByQuery(moneta.NewCurrencyQueryBuilder().SetCurrencyCodes("CCC").Build())
	assert.ErrorIs(t, err, moneta.ErrUnknownCurrency)
}

func TestService_NoProviders(t *testing.T) {
	s := NewService(nil, nil)

	_, err := s.Currency("USD")
	assert.ErrorIs(t, err, moneta.ErrUnknownCurrency)
	assert.False(t, s.IsAvailable("USD"))
	assert.Equal(t, []string{ConfigurableProviderName}, s.ProviderNames())
}

func TestService_Register(t *testing.T) {
	s := NewService(nil, nil)
	btc := unit(t, "custom", "XBT", 8)

	require.NoError(t, s.Register(btc))

	got, err := s.Currency("XBT")
	require.NoError(t, err)
	assert.Equal(t, 8, got.DefaultFractionDigits())
	assert.True(t, s.IsAvailable("XBT"))
}

func codes(units []moneta.CurrencyUnit) []string {
	var c []string
	for _, u := range units {
		c = append(c, u.CurrencyCode())
	}
	return c
}

func TestConfigurableProvider_Locales(t *testing.T) {
	custom := NewConfigurableProvider()
	s := NewService([]Provider{custom}, nil)
	sv := language.MustParse("es-SV")

	require.NoError(t, custom.RegisterForLocale(language.MustParse("en-SV"), unit(t, "custom", "XBT", 8)))
	require.NoError(t, custom.RegisterForLocale(sv, unit(t, "custom", "XBT", 8)))
	require.NoError(t, custom.RegisterForLocale(sv, unit(t, "custom", "USX", 2)))
	require.NoError(t, custom.RegisterForLocale(sv, unit(t, "custom", "SVX", 2)))
	require.NoError(t, custom.RegisterForLocale(language.MustParse("de-CH"), unit(t, "custom", "CHX", 2)))

	units, err := s.CurrenciesForLocale(sv)
	require.NoError(t, err)
	assert.Equal(t, []string{"XBT", "USX", "SVX"}, codes(units))

	got, err := s.CurrencyForLocale(sv)
	require.NoError(t, err)
	assert.Equal(t, "XBT", got.CurrencyCode())
	assert.True(t, s.IsAvailable("USX"))

	err = custom.RegisterForLocale(language.Und, unit(t, "custom", "ZZZ", 2))
	assert.ErrorIs(t, err, moneta.ErrInvalidArgument)
	assert.False(t, s.IsAvailable("ZZZ"))
}

func TestConfigurableProvider_Remove(t *testing.T) {
	custom := NewConfigurableProvider()
	s := NewService([]Provider{custom}, nil)
	sv := language.MustParse("es-SV")
	ch := language.MustParse("de-CH")

	for _, code := range []string{"AAX", "BBX", "CCX"} {
		require.NoError(t, custom.RegisterForLocale(sv, unit(t, "custom", code, 2)))
	}
	require.NoError(t, custom.RegisterForLocale(ch, unit(t, "custom", "BBX", 2)))

	assert.True(t, custom.Remove("BBX"))
	assert.False(t, custom.Remove("BBX"))

	_, err := s.Currency("BBX")
	assert.ErrorIs(t, err, moneta.ErrUnknownCurrency)

	units, err := s.CurrenciesForLocale(sv)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAX", "CCX"}, codes(units))

	_, err = s.CurrenciesForLocale(ch)
	assert.ErrorIs(t, err, moneta.ErrUnknownCurrency)

	got, err := s.Currency("CCX")
	require.NoError(t, err)
	assert.Equal(t, "CCX", got.CurrencyCode())
}

func TestService_DefaultChain(t *testing.T) {
	a := &mock{name: "A", units: []moneta.CurrencyUnit{unit(t, "A", "DUP", 2)}}
	b := &mock{name: "B", units: []moneta.CurrencyUnit{unit(t, "B", "DUP", 2)}}

	s := NewService([]Provider{a, b}, nil)
	assert.Equal(t, []string{"A", "B", ConfigurableProviderName}, s.DefaultProviderChain())

	s = NewService([]Provider{a, b}, nil, WithDefaultChain("B"))
	assert.Equal(t, []string{"B", ConfigurableProviderName}, s.DefaultProviderChain())
	got, err := s.Currency("DUP")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Context().ProviderName())
}

func TestService_ISO(t *testing.T) {
	s := NewService([]Provider{NewISOProvider()}, nil)

	tests := []struct {
		name       string
		code       string
		wantDigits int
		wantErr    bool
	}{
		{"dollar", "USD", 2, false},
		{"yen", "JPY", 0, false},
		{"franc", "CHF", 2, false},
		{"gold", "XAU", -1, false},
		{"lower case", "usd", 0, true},
		{"unknown", "QQQ", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Currency(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, moneta.ErrUnknownCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDigits, got.DefaultFractionDigits())
			assert.Equal(t, -1, got.NumericCode())
			assert.Equal(t, ISOProviderName, got.Context().ProviderName())
		})
	}
}

func TestService_ISO_Locale(t *testing.T) {
	s := NewService([]Provider{NewISOProvider()}, nil)

	got, err := s.CurrencyForLocale(language.MustParse("de-CH"))
	require.NoError(t, err)
	assert.Equal(t, "CHF", got.CurrencyCode())

	all, err := s.CurrenciesForLocale(language.MustParse("en-US"))
	require.NoError(t, err)
	assert.Equal(t, "USD", all[0].CurrencyCode())

	assert.True(t, s.IsAvailableForLocale(language.MustParse("ja-JP")))
}

type override struct {
	Service
}

func TestNew_Override(t *testing.T) {
	reg := spi.NewStaticRegistry(nil)
	custom := &override{Service: NewService(nil, nil)}
	require.NoError(t, spi.RegisterInstance[Service](reg, "custom", custom))

	s, err := New(reg, nil)
	require.NoError(t, err)
	assert.Same(t, custom, s)
}

func TestNew_AmbiguousOverride(t *testing.T) {
	reg := spi.NewStaticRegistry(nil)
	require.NoError(t, spi.RegisterInstance[Service](reg, "one", &override{}))
	require.NoError(t, spi.RegisterInstance[Service](reg, "two", &override{}))

	_, err := New(reg, nil)
	assert.ErrorIs(t, err, spi.ErrAmbiguousRegistration)
}

func TestNew_Providers(t *testing.T) {
	reg := spi.NewStaticRegistry(nil)
	require.NoError(t, spi.Register[Provider](reg, ISOProviderName, func() (Provider, error) {
		return NewISOProvider(), nil
	}))
	require.NoError(t, spi.Register[Provider](reg, "broken", func() (Provider, error) {
		return nil, errors.New("no data")
	}))

	s, err := New(reg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ConfigurableProviderName, ISOProviderName}, s.ProviderNames())
	assert.True(t, s.IsAvailable("EUR"))
}

func TestLoggingService(t *testing.T) {
	var buf bytes.Buffer
	s := NewLoggingService(log.NewLogfmtLogger(&buf), NewService(nil, nil))

	_, err := s.Currency("ZZZ")

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "method=currency")
	assert.Contains(t, buf.String(), "code=ZZZ")
}
