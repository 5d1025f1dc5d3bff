package decision_engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

// ===================== Config / defaults =====================

const (
	defaultLocation        = "Tunis,TN"
	defaultForecastTimeout = 5 * time.Second
	defaultForecastHorizon = 4 // 4 x 3h = next ~12 hours
)

// Config is the static part of the engine, built once at startup.
type Config struct {
	Location        string        // city query for the forecast provider
	ForecastTimeout time.Duration // per-request budget for the forecast call
	ForecastHorizon int           // number of 3h samples inspected
	Policy          model.PlantPolicy
	TZ              *time.Location
	Now             func() time.Time // nil = time.Now
}

// Gate is one stage of the decision chain. A nil Decision means "continue".
type Gate interface {
	Name() string
	Evaluate(ctx context.Context, in *gateInput) (*model.Decision, error)
}

type gateInput struct {
	Reading model.SensorReading
	Plant   string
	Label   Label
}

// Engine applies model → weather → plant/time gates and stops at the first decision.
type Engine struct {
	gates   []Gate
	metrics *Metrics
}

// ===================== ctor =====================

func NewEngine(cls Classifier, fc Forecaster, cfg Config, m *Metrics) (*Engine, error) {
	if cls == nil {
		return nil, errors.New("classifier is nil")
	}
	if fc == nil {
		return nil, errors.New("forecaster is nil")
	}
	if strings.TrimSpace(cfg.Location) == "" {
		cfg.Location = defaultLocation
	}
	if cfg.ForecastTimeout <= 0 {
		cfg.ForecastTimeout = defaultForecastTimeout
	}
	if cfg.ForecastHorizon <= 0 {
		cfg.ForecastHorizon = defaultForecastHorizon
	}
	if cfg.TZ == nil {
		cfg.TZ = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Policy.Plants == nil {
		cfg.Policy = DefaultPlantPolicy(defaultEveningHour)
	}

	return &Engine{
		gates: []Gate{
			&modelGate{cls: cls},
			&weatherGate{
				fc:       fc,
				location: cfg.Location,
				timeout:  cfg.ForecastTimeout,
				horizon:  cfg.ForecastHorizon,
				metrics:  m,
			},
			&plantTimeGate{policy: cfg.Policy, tz: cfg.TZ, now: cfg.Now},
		},
		metrics: m,
	}, nil
}

// Decide returns the pump action for one reading. Only validation and classifier
// failures are returned as errors; forecast problems never are.
func (e *Engine) Decide(ctx context.Context, r model.SensorReading, p model.PlantContext) (model.Decision, error) {
	if err := validateReading(r); err != nil {
		return model.Decision{}, err
	}
	plant := p.PlantType
	if plant == "" {
		plant = model.UnknownPlant
	}

	start := time.Now()
	in := &gateInput{Reading: r, Plant: plant}
	for _, g := range e.gates {
		d, err := g.Evaluate(ctx, in)
		if err != nil {
			return model.Decision{}, fmt.Errorf("%s gate: %w", g.Name(), err)
		}
		if d != nil {
			d.Gate = g.Name()
			e.metrics.ObserveDecision(d.Gate, int(d.PumpAction), time.Since(start))
			return *d, nil
		}
	}
	return model.Decision{}, errors.New("no gate produced a decision")
}

func validateReading(r model.SensorReading) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"soil_moisture", r.SoilMoisture},
		{"temperature", r.Temperature},
		{"air_humidity", r.AirHumidity},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ValidationError{Field: f.name, Msg: "must be a finite number"}
		}
	}
	return nil
}
