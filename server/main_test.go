package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-moneta/currency"
	"go-moneta/spi"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("MONETA_COINBASE_ENABLED", "false")

	return execute(&app{registry: spi.NewStaticRegistry(nil)}, args...)
}

func execute(a *app, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCurrencyCmd(t *testing.T) {
	out, _, err := run(t, "currency", "JPY")

	require.NoError(t, err)
	assert.Equal(t, "JPY numeric=-1 digits=0 provider=ISO\n", out)
}

func TestCurrencyCmd_Unknown(t *testing.T) {
	_, _, err := run(t, "currency", "QQQ")

	assert.Error(t, err)
}

func TestConvertCmd(t *testing.T) {
	out, _, err := run(t, "convert", "12.345", "CHF", "CHF")

	require.NoError(t, err)
	assert.Equal(t, "CHF 12.345 = CHF 12.34 (rate 1 via IDENT)\n", out)
}

func TestConvertCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad amount", []string{"convert", "x", "CHF", "CHF"}},
		{"unknown currency", []string{"convert", "1", "CHF", "QQQ"}},
		{"no rate", []string{"convert", "1", "CHF", "EUR"}},
		{"missing args", []string{"convert", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestProvidersCmd(t *testing.T) {
	out, _, err := run(t, "providers")

	require.NoError(t, err)
	assert.Contains(t, out, "exchange  providers=[IDENT] default=[IDENT COINBASE DERIVED]")
	assert.Contains(t, out, "amount    providers=[FastMoney Money] default=[FastMoney Money]")
}

func TestLogLevelFlag(t *testing.T) {
	_, _, err := run(t, "--log-level", "loud", "providers")

	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	t.Setenv("MONETA_COINBASE_ENABLED", "false")

	a := &app{}
	out, errOut, err := execute(a, "--log-level", "debug", "currency", "CHF")
	require.NoError(t, err)
	assert.Equal(t, "CHF numeric=-1 digits=2 provider=ISO\n", out)
	assert.Contains(t, errOut, "component=registry")
	assert.Contains(t, errOut, "msg=\"registered provider\"")

	names := []string{}
	for _, p := range spi.Services[currency.Provider](spi.Default()) {
		names = append(names, p.Name())
	}
	assert.Contains(t, names, currency.ISOProviderName)
}
