package coinbase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mock struct {
	count int32
	delay time.Duration
	err   error
}

func (m *mock) ExchangeRates(_ context.Context, _ string) (Rates, error) {
	atomic.AddInt32(&m.count, 1)
	time.Sleep(m.delay)
	if m.err != nil {
		return nil, m.err
	}
	return Rates{}, nil
}

func TestLookupWithCache(t *testing.T) {
	var underlyingService mock
	s := NewCachingService(1*time.Minute, &underlyingService)

	_, _ = s.ExchangeRates(context.Background(), "ABC")
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))

	_, _ = s.ExchangeRates(context.Background(), "ABC")
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))

	_, _ = s.ExchangeRates(context.Background(), "DEF")
	assert.Equal(t, int32(2), atomic.LoadInt32(&underlyingService.count))
}

func TestLookupWithCache_Expiry(t *testing.T) {
	var underlyingService mock
	s := NewCachingService(1*time.Millisecond, &underlyingService)

	_, _ = s.ExchangeRates(context.Background(), "ABC")
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))

	time.Sleep(5 * time.Millisecond)
	_, _ = s.ExchangeRates(context.Background(), "ABC")
	assert.Equal(t, int32(2), atomic.LoadInt32(&underlyingService.count))
}

func TestLookupWithCache_ConcurrentMisses(t *testing.T) {
	underlyingService := mock{delay: 20 * time.Millisecond}
	s := NewCachingService(1*time.Minute, &underlyingService)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ExchangeRates(context.Background(), "ABC")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))
}

func TestLookupWithCache_ErrorsAreNotCached(t *testing.T) {
	underlyingService := mock{err: errors.New("down")}
	s := NewCachingService(1*time.Minute, &underlyingService)

	_, err := s.ExchangeRates(context.Background(), "ABC")
	require.Error(t, err)
	_, err = s.ExchangeRates(context.Background(), "ABC")
	require.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&underlyingService.count))
}

type blocking struct {
	count   int32
	started chan struct{}
	release chan struct{}
}

func (m *blocking) ExchangeRates(ctx context.Context, _ string) (Rates, error) {
	atomic.AddInt32(&m.count, 1)
	m.started <- struct{}{}
	<-m.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Rates{"EUR": decimal.RequireFromString("0.9")}, nil
}

func TestLookupWithCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	underlyingService := blocking{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewCachingService(1*time.Minute, &underlyingService)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.ExchangeRates(ctxA, "USD")
		errA <- err
	}()
	<-underlyingService.started

	type result struct {
		rates Rates
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		rates, err := s.ExchangeRates(context.Background(), "USD")
		resB <- result{rates, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(underlyingService.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "0.9", b.rates["EUR"].String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))

	rates, err := s.ExchangeRates(context.Background(), "USD")
	require.NoError(t, err)
	assert.Len(t, rates, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))
}
