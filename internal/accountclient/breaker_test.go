package accountclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	calls int
	err   error
}

func (s *stubClient) UpdateBalance(context.Context, string, decimal.Decimal, Operation) error {
	s.calls++
	return s.err
}

func testConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Cooldown:            time.Minute,
		ConsecutiveFailures: 3,
		FailureRatio:        0.5,
		MinRequests:         100, // ratio path disabled; trips on consecutive failures
	}
}

func update(b *Breaker) error {
	return b.UpdateBalance(context.Background(), "ACC1", decimal.NewFromInt(10), OpDebit)
}

func TestBreakerTripsOnConsecutiveTransportFailures(t *testing.T) {
	t.Parallel()

	stub := &stubClient{err: errors.New("connection refused")}
	b := NewBreaker(stub, testConfig(), nil)

	for i := 0; i < 3; i++ {
		err := update(b)
		require.ErrorIs(t, err, ErrServiceUnavailable)
	}

	require.Equal(t, gobreaker.StateOpen, b.State())
	require.Equal(t, 3, stub.calls)

	// Open: short-circuits without touching the inner client.
	err := update(b)
	require.ErrorIs(t, err, ErrServiceUnavailable)
	require.Equal(t, 3, stub.calls)
}

func TestBreakerIgnoresDomainErrors(t *testing.T) {
	t.Parallel()

	stub := &stubClient{err: ErrInsufficientBalance}
	b := NewBreaker(stub, testConfig(), nil)

	for i := 0; i < 10; i++ {
		err := update(b)
		require.ErrorIs(t, err, ErrInsufficientBalance)
	}

	require.Equal(t, gobreaker.StateClosed, b.State())
	require.Equal(t, 10, stub.calls)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	t.Parallel()

	stub := &stubClient{}
	b := NewBreaker(stub, testConfig(), nil)

	require.NoError(t, update(b))
	require.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Cooldown = 20 * time.Millisecond

	var transitions []gobreaker.State

	stub := &stubClient{err: errors.New("timeout")}
	b := NewBreaker(stub, cfg, func(from, to gobreaker.State) {
		transitions = append(transitions, to)
	})

	for i := 0; i < 3; i++ {
		_ = update(b)
	}

	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(30 * time.Millisecond)

	// First trial call after cooldown goes through (half-open) and heals
	// the breaker on success.
	stub.err = nil
	require.NoError(t, update(b))
	require.Equal(t, gobreaker.StateClosed, b.State())

	require.Contains(t, transitions, gobreaker.StateOpen)
	require.Contains(t, transitions, gobreaker.StateClosed)
}
