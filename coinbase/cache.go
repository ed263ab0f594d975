package coinbase

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// cachingService decorates a coinbase.Service with a cache of exchange rates.
// Entries expire after updateFrequency and are reloaded on the next lookup;
// concurrent lookups of a missing currency share one request.
type cachingService struct {
	// next the service being decorated with a cache
	next Service

	// cache the cache of rates
	cache *cache.Cache

	// group collapses concurrent refreshes of one currency
	group singleflight.Group
}

// NewCachingService returns a new caching Service
func NewCachingService(updateFrequency time.Duration, s Service) Service {
	return &cachingService{
		next:  s,
		cache: cache.New(updateFrequency, 2*updateFrequency),
	}
}

// ExchangeRates looks up exchange rates and caches the results
func (s *cachingService) ExchangeRates(ctx context.Context, currency string) (Rates, error) {
	if rates, ok := s.cache.Get(currency); ok {
		return rates.(Rates), nil
	}

	// Callers share one refresh; a caller stops waiting when its ctx is done.
	ch := s.group.DoChan(currency, func() (interface{}, error) {
		if rates, ok := s.cache.Get(currency); ok {
			return rates, nil
		}
		rates, err := s.next.ExchangeRates(context.WithoutCancel(ctx), currency)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(currency, rates)
		return rates, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("refreshing cache [%v]: %w", currency, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("refreshing cache [%v]: %w", currency, res.Err)
		}
		return res.Val.(Rates), nil
	}
}
