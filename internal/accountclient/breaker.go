package accountclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes when the wrapper stops calling a degraded account
// service. The breaker trips on consecutive failures, or once the failure
// ratio over the rolling interval crosses the threshold with enough samples.
type BreakerConfig struct {
	MaxRequests         uint32        `env:"BREAKER_MAX_REQUESTS" default:"3"`
	Interval            time.Duration `env:"BREAKER_INTERVAL" default:"60s"`
	Cooldown            time.Duration `env:"BREAKER_COOLDOWN" default:"30s"`
	ConsecutiveFailures uint32        `env:"BREAKER_CONSECUTIVE_FAILURES" default:"5"`
	FailureRatio        float64       `env:"BREAKER_FAILURE_RATIO" default:"0.5"`
	MinRequests         uint32        `env:"BREAKER_MIN_REQUESTS" default:"10"`
}

// Breaker wraps a Client in a circuit breaker. Domain outcomes
// (insufficient balance, unknown or frozen account) are healthy responses
// from the dependency and never count toward tripping; transport errors
// and timeouts do. When open, calls short-circuit to ErrServiceUnavailable
// without touching the network.
type Breaker struct {
	inner Client
	cb    *gobreaker.CircuitBreaker
}

var _ Client = (*Breaker)(nil)

func NewBreaker(inner Client, cfg BreakerConfig, onStateChange func(from, to gobreaker.State)) *Breaker {
	settings := gobreaker.Settings{
		Name:        "account-service",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests >= cfg.MinRequests && ratio >= cfg.FailureRatio)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isDomainError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())

			if onStateChange != nil {
				onStateChange(from, to)
			}
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *Breaker) UpdateBalance(ctx context.Context, accountNumber string, amount decimal.Decimal, op Operation) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.UpdateBalance(ctx, accountNumber, amount, op)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit open", ErrServiceUnavailable)
	}

	if isDomainError(err) {
		return err
	}

	// Transport failures and timeouts all degrade to the same retryable
	// outcome; the cause stays attached for the logs.
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

// State reports the underlying breaker state for health and metrics.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrAccountNotActive)
}
