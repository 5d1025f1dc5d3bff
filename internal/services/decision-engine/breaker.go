package decision_engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker in front of the weather provider.
type BreakerSettings struct {
	Failures int           // consecutive failures before opening
	OpenFor  time.Duration // time spent open before a half-open probe
	Interval time.Duration // counts reset period while closed
}

// BreakerForecaster wraps a Forecaster with a circuit breaker.
// When open it fails immediately; the caller treats that like any other provider error.
type BreakerForecaster struct {
	next Forecaster
	cb   *gobreaker.CircuitBreaker
}

var _ Forecaster = (*BreakerForecaster)(nil)

func NewBreakerForecaster(next Forecaster, s BreakerSettings) *BreakerForecaster {
	fails := s.Failures
	if fails < 1 {
		fails = 1
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "openweather",
		Interval: s.Interval,
		Timeout:  s.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("breaker[%s]: %s -> %s", name, from, to)
		},
	})
	return &BreakerForecaster{next: next, cb: cb}
}

func (b *BreakerForecaster) FetchForecast(ctx context.Context, location string) ([]model.ForecastSample, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FetchForecast(ctx, location)
	})
	if err != nil {
		return nil, fmt.Errorf("forecast breaker: %w", err)
	}
	return res.([]model.ForecastSample), nil
}

// State exposes the breaker state for logs and readiness.
func (b *BreakerForecaster) State() gobreaker.State { return b.cb.State() }
