package exchange

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"go-moneta"
)

// loggingService decorates an exchange.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Rate(ctx context.Context, q moneta.ConversionQuery) (rate moneta.ExchangeRate, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "rate",
			"query", q,
			"factor", rate.Factor(),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rate(ctx, q)
}

func (s *loggingService) Convert(ctx context.Context, amount moneta.MonetaryAmount, term moneta.CurrencyUnit, providers ...string) (ex moneta.Exchanged, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"amount", amount,
			"to", term,
			"rate", ex.Rate.Factor(),
			"converted_amount", ex.Amount,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, term, providers...)
}

func (s *loggingService) IsAvailable(ctx context.Context, q moneta.ConversionQuery) bool {
	return s.next.IsAvailable(ctx, q)
}

func (s *loggingService) ProviderNames() []string {
	return s.next.ProviderNames()
}

func (s *loggingService) DefaultProviderChain() []string {
	return s.next.DefaultProviderChain()
}
