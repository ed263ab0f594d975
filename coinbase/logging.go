package coinbase

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// loggingService decorates a coinbase.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService return a new logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

// ExchangeRates logs each lookup. Failures other than an unsupported base
// currency are logged at warn.
func (s *loggingService) ExchangeRates(ctx context.Context, currency string) (rates Rates, err error) {
	defer func(begin time.Time) {
		unsupported := errors.Is(err, ErrUnsupportedCurrency)
		logger := s.logger
		if err != nil && !unsupported {
			logger = level.Warn(logger)
		}
		logger.Log(
			"method", "exchange_rates",
			"base", currency,
			"rates", len(rates),
			"unsupported", unsupported,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ExchangeRates(ctx, currency)
}
