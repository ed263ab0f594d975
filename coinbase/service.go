// Package coinbase reads exchange rates from the Coinbase REST API and
// exposes them as an exchange rate provider.
package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const ApiUrlBase = "https://api.coinbase.com/v2"

// ErrUnsupportedCurrency is returned for currencies Coinbase has no rates for.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Rates maps term currency codes to the rate from a base currency.
type Rates map[string]decimal.Decimal

// Service wraps the coinbase REST API
type Service interface {
	ExchangeRates(ctx context.Context, currency string) (Rates, error)
}

// service coinbase API
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client

	// limiter throttles requests to the API; nil for no limit
	limiter *rate.Limiter
}

// NewService constructs a valid coinbase Service for the API at url. An empty
// url selects ApiUrlBase; a nil limiter does not throttle.
func NewService(url string, limiter *rate.Limiter) Service {
	if url == "" {
		url = ApiUrlBase
	}
	return &service{
		url: url,
		client: http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: limiter,
	}
}

// ExchangeRates loads the current exchanges for a given currency.
// Service rates change every minute.
func (s *service) ExchangeRates(ctx context.Context, currency string) (Rates, error) {
	type Response struct {
		Data struct {
			Currency string
			Rates    map[string]string // maps currency codes to rates
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	url := fmt.Sprintf("%v/exchange-rates?currency=%v", s.url, currency)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	switch {
	case httpResponse.StatusCode == http.StatusBadRequest || httpResponse.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("currency [%v]: %w", currency, ErrUnsupportedCurrency)
	case httpResponse.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("http get: status %v", httpResponse.Status)
	}

	var response Response
	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}

	err = json.Unmarshal(bytes, &response)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	rates := Rates{}
	for k, v := range response.Data.Rates {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("bad rate value: %w", err)
		}
		rates[k] = d
	}

	return rates, nil
}
