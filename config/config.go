// Package config loads the go-moneta settings from defaults, an optional
// config file and MONETA_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go-moneta/amount"
	"go-moneta/builtin"
)

// EnvPrefix prefixes environment overrides, e.g. MONETA_SERVER_ADDR.
const EnvPrefix = "MONETA"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Rounding RoundingConfig `mapstructure:"rounding"`
	Amount   AmountConfig   `mapstructure:"amount"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Coinbase CoinbaseConfig `mapstructure:"coinbase"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn or error
}

type CurrencyConfig struct {
	Providers []string `mapstructure:"providers"`
	DataFile  string   `mapstructure:"data_file"` // TOML currency definitions
}

type RoundingConfig struct {
	Providers []string `mapstructure:"providers"`
}

type AmountConfig struct {
	Providers        []string `mapstructure:"providers"`
	DefaultPrecision int      `mapstructure:"default_precision"`
	DefaultMaxScale  int      `mapstructure:"default_max_scale"`
}

type ExchangeConfig struct {
	Providers []string `mapstructure:"providers"`
	Pivot     string   `mapstructure:"pivot"` // currency for derived rates, empty to disable
}

type CoinbaseConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	Refresh   time.Duration `mapstructure:"refresh"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 for none
}

type TraceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		Amount: AmountConfig{
			DefaultPrecision: amount.DefaultMoneyPrecision,
			DefaultMaxScale:  -1,
		},
		Exchange: ExchangeConfig{
			Providers: []string{"IDENT", "COINBASE", "DERIVED"},
			Pivot:     "USD",
		},
		Coinbase: CoinbaseConfig{
			Enabled:   true,
			Refresh:   time.Minute,
			RateLimit: 10,
		},
	}
}

// Load reads the configuration. An empty path reads no file.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("currency.providers", d.Currency.Providers)
	v.SetDefault("currency.data_file", d.Currency.DataFile)
	v.SetDefault("rounding.providers", d.Rounding.Providers)
	v.SetDefault("amount.providers", d.Amount.Providers)
	v.SetDefault("amount.default_precision", d.Amount.DefaultPrecision)
	v.SetDefault("amount.default_max_scale", d.Amount.DefaultMaxScale)
	v.SetDefault("exchange.providers", d.Exchange.Providers)
	v.SetDefault("exchange.pivot", d.Exchange.Pivot)
	v.SetDefault("coinbase.enabled", d.Coinbase.Enabled)
	v.SetDefault("coinbase.url", d.Coinbase.URL)
	v.SetDefault("coinbase.refresh", d.Coinbase.Refresh)
	v.SetDefault("coinbase.rate_limit", d.Coinbase.RateLimit)
	v.SetDefault("trace.enabled", d.Trace.Enabled)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config [%v]: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values viper cannot.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level [%v]: want debug, info, warn or error", c.Log.Level)
	}
	if c.Amount.DefaultPrecision < 0 {
		return fmt.Errorf("amount.default_precision [%v]: negative", c.Amount.DefaultPrecision)
	}
	if c.Amount.DefaultMaxScale < -1 {
		return fmt.Errorf("amount.default_max_scale [%v]: below -1", c.Amount.DefaultMaxScale)
	}
	if c.Coinbase.RateLimit < 0 {
		return fmt.Errorf("coinbase.rate_limit [%v]: negative", c.Coinbase.RateLimit)
	}
	return nil
}

// Options maps the provider settings to builtin.Options.
func (c Config) Options() builtin.Options {
	return builtin.Options{
		CurrencyFile: c.Currency.DataFile,
		MoneyContext: amount.MoneyContext(c.Amount.DefaultPrecision, c.Amount.DefaultMaxScale),
		Coinbase:     c.Coinbase.Enabled,
		CoinbaseURL:  c.Coinbase.URL,
		Refresh:      c.Coinbase.Refresh,
		RateLimit:    c.Coinbase.RateLimit,
		Pivot:        c.Exchange.Pivot,
	}
}

// Chains returns the configured default provider chains.
func (c Config) Chains() builtin.Chains {
	return builtin.Chains{
		Currency: c.Currency.Providers,
		Rounding: c.Rounding.Providers,
		Amount:   c.Amount.Providers,
		Exchange: c.Exchange.Providers,
	}
}
