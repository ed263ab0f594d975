package currency

import (
	"time"

	"github.com/go-kit/log"
	"golang.org/x/text/language"

	"go-moneta"
)

// loggingService decorates a currency.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		logger: logger,
		next:   s,
	}
}

func (s *loggingService) Currency(code string, providers ...string) (unit moneta.CurrencyUnit, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "currency",
			"code", code,
			"providers", len(providers),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Currency(code, providers...)
}

func (s *loggingService) CurrencyForLocale(tag language.Tag, providers ...string) (unit moneta.CurrencyUnit, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "currency_for_locale",
			"locale", tag,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CurrencyForLocale(tag, providers...)
}

func (s *loggingService) CurrenciesForLocale(tag language.Tag, providers ...string) (units []moneta.CurrencyUnit, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "currencies_for_locale",
			"locale", tag,
			"count", len(units),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CurrenciesForLocale(tag, providers...)
}

func (s *loggingService) CurrencyByQuery(q moneta.CurrencyQuery) (unit moneta.CurrencyUnit, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "currency_by_query",
			"query", q,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CurrencyByQuery(q)
}

func (s *loggingService) Currencies(q moneta.CurrencyQuery) (units []moneta.CurrencyUnit) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "currencies",
			"query", q,
			"count", len(units),
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.next.Currencies(q)
}

func (s *loggingService) IsAvailable(code string, providers ...string) bool {
	return s.next.IsAvailable(code, providers...)
}

func (s *loggingService) IsAvailableForLocale(tag language.Tag, providers ...string) bool {
	return s.next.IsAvailableForLocale(tag, providers...)
}

func (s *loggingService) ProviderNames() []string {
	return s.next.ProviderNames()
}

func (s *loggingService) DefaultProviderChain() []string {
	return s.next.DefaultProviderChain()
}

func (s *loggingService) Register(unit moneta.CurrencyUnit) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "register",
			"code", unit,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Register(unit)
}
