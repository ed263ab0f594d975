package main

import (
	"context"
	"errors"
	"fmt"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"go-moneta/http"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion and currency HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.With(a.logger, "component", "http")
			server := &nhttp.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           http.NewServer(*a.services, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			level.Info(logger).Log("msg", "listening", "addr", server.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, nhttp.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func newCurrencyCmd(a *app) *cobra.Command {
	var providers []string
	cmd := &cobra.Command{
		Use:   "currency <code>",
		Short: "Look up a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := a.services.Currencies.Currency(args[0], providers...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v numeric=%d digits=%d provider=%v\n",
				unit.CurrencyCode(), unit.NumericCode(), unit.DefaultFractionDigits(), unit.Context().ProviderName())
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&providers, "provider", "p", nil, "currency providers to ask, in order")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var providers []string
	cmd := &cobra.Command{
		Use:   "convert <amount> <from> <to>",
		Short: "Convert an amount to another currency",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("amount [%v]: %w", args[0], err)
			}
			from, err := a.services.Currencies.Currency(args[1])
			if err != nil {
				return err
			}
			to, err := a.services.Currencies.Currency(args[2])
			if err != nil {
				return err
			}

			factory, err := a.services.Amounts.DefaultFactory()
			if err != nil {
				return err
			}
			original, err := factory.Create(from, number)
			if err != nil {
				return err
			}
			result, err := a.services.Exchange.Convert(cmd.Context(), original, to, providers...)
			if err != nil {
				return err
			}
			converted, err := a.services.Roundings.DefaultRounding().Apply(result.Amount)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v = %v (rate %v via %v)\n",
				original, converted, result.Rate.Factor(), result.Rate.Context().ProviderName())
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&providers, "provider", "p", nil, "exchange rate providers to ask, in order")
	return cmd
}

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the providers and default chains of each service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.services
			rows := []struct {
				name      string
				providers []string
				chain     []string
			}{
				{"currency", s.Currencies.ProviderNames(), s.Currencies.DefaultProviderChain()},
				{"rounding", s.Roundings.ProviderNames(), s.Roundings.DefaultProviderChain()},
				{"amount", s.Amounts.ProviderNames(), s.Amounts.DefaultProviderChain()},
				{"exchange", s.Exchange.ProviderNames(), s.Exchange.DefaultProviderChain()},
			}
			for _, r := range rows {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-9v providers=%v default=%v\n", r.name, r.providers, r.chain); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
