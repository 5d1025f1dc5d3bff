package decision_engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

type countingForecaster struct {
	calls int32
	err   error
}

func (f *countingForecaster) FetchForecast(context.Context, string) ([]model.ForecastSample, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return noRain, nil
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	up := &countingForecaster{err: errors.New("upstream down")}
	b := NewBreakerForecaster(up, BreakerSettings{Failures: 3, OpenFor: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := b.FetchForecast(context.Background(), "x"); err == nil {
			t.Fatalf("call %d: expected upstream error", i)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", b.State())
	}

	_, err := b.FetchForecast(context.Background(), "x")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if n := atomic.LoadInt32(&up.calls); n != 3 {
		t.Fatalf("open breaker must not reach upstream, got %d calls", n)
	}
}

func TestBreakerPassesThroughSamples(t *testing.T) {
	b := NewBreakerForecaster(&countingForecaster{}, BreakerSettings{Failures: 3})
	samples, err := b.FetchForecast(context.Background(), "x")
	if err != nil {
		t.Fatalf("FetchForecast: %v", err)
	}
	if len(samples) != len(noRain) {
		t.Fatalf("expected %d samples, got %d", len(noRain), len(samples))
	}
}

// open breaker: the engine must still water
func TestEngineTreatsOpenBreakerAsNoRain(t *testing.T) {
	b := NewBreakerForecaster(&countingForecaster{err: errors.New("down")}, BreakerSettings{Failures: 1, OpenFor: time.Minute})
	_, _ = b.FetchForecast(context.Background(), "x")

	m := NewMetrics()
	e, err := NewEngine(&stubClassifier{label: LabelDry}, b, Config{TZ: time.UTC, Now: clockAt(10)}, m)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	d, err := e.Decide(context.Background(), dry, model.PlantContext{PlantType: "mint"})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.PumpAction != model.PumpOn {
		t.Fatalf("expected watering with open breaker, got %+v", d)
	}
}
