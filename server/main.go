package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"go-moneta/builtin"
	"go-moneta/config"
	"go-moneta/spi"
)

const serviceName = "go-moneta"

// app holds what the commands share once the root command ran.
type app struct {
	cfgFile  string
	logLevel string
	// registry defaults to spi.Default().
	registry *spi.StaticRegistry

	cfg      config.Config
	logger   log.Logger
	services *builtin.Services
	shutdown func(context.Context) error
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "moneta",
		Short:        "Currencies, roundings and exchange rates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(context.Background())
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (TOML, YAML or JSON)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")

	root.AddCommand(
		newServeCmd(a),
		newCurrencyCmd(a),
		newConvertCmd(a),
		newProvidersCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	w := log.NewSyncWriter(cmd.ErrOrStderr())
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	a.logger = level.NewFilter(logger, levelOption(cfg.Log.Level))

	var tracer trace.Tracer
	if cfg.Trace.Enabled {
		tracer, a.shutdown, err = newTracer()
		if err != nil {
			return err
		}
	}

	reg := a.registry
	if reg == nil {
		reg = spi.Default()
	}
	reg.SetLogger(log.With(a.logger, "component", "registry"))
	if err := builtin.Register(reg, cfg.Options(), a.logger); err != nil {
		return fmt.Errorf("register providers: %w", err)
	}
	a.services, err = builtin.NewServices(reg, cfg.Chains(), a.logger, tracer)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	return nil
}

func levelOption(l string) level.Option {
	switch l {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func newTracer() (trace.Tracer, func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	return provider.Tracer(serviceName), provider.Shutdown, nil
}
