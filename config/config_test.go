package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-moneta/amount"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	if diff := cmp.Diff(Defaults(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moneta.toml")
	data := `
[server]
addr = ":9090"

[currency]
providers = ["FILE", "ISO"]
data_file = "currencies.toml"

[coinbase]
enabled = false
refresh = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"FILE", "ISO"}, cfg.Currency.Providers)
	assert.False(t, cfg.Coinbase.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Coinbase.Refresh)
	assert.Equal(t, "info", cfg.Log.Level)

	o := cfg.Options()
	assert.Equal(t, "currencies.toml", o.CurrencyFile)
	assert.False(t, o.Coinbase)
	assert.Equal(t, []string{"FILE", "ISO"}, cfg.Chains().Currency)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MONETA_LOG_LEVEL", "debug")
	t.Setenv("MONETA_EXCHANGE_PROVIDERS", "IDENT,COINBASE")
	t.Setenv("MONETA_AMOUNT_DEFAULT_PRECISION", "32")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"IDENT", "COINBASE"}, cfg.Exchange.Providers)
	assert.Equal(t, 32, cfg.Options().MoneyContext.Precision())
	assert.Equal(t, amount.MoneyType, cfg.Options().MoneyContext.AmountType())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "log level", env: map[string]string{"MONETA_LOG_LEVEL": "loud"}},
		{name: "precision", env: map[string]string{"MONETA_AMOUNT_DEFAULT_PRECISION": "-1"}},
		{name: "max scale", env: map[string]string{"MONETA_AMOUNT_DEFAULT_MAX_SCALE": "-2"}},
		{name: "rate limit", env: map[string]string{"MONETA_COINBASE_RATE_LIMIT": "-5"}},
		{name: "missing file", file: "missing.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), tt.file)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
