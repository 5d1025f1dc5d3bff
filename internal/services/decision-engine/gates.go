package decision_engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

const (
	reasonMoist   = "Soil is already moist."
	reasonRain    = "Soil is dry, but rain is forecast. Saving water!"
	reasonDefault = "Soil is dry. Watering now."
)

func reasonUrgent(plant string) string {
	return fmt.Sprintf("Soil is dry. Watering %s immediately!", plant)
}

func reasonDeferred(plant string) string {
	return fmt.Sprintf("Soil is dry, but it's too hot. Watering for %s is scheduled for this evening.", plant)
}

func reasonEvening(plant string) string {
	return fmt.Sprintf("Soil is dry. Watering %s now.", plant)
}

func decision(a model.PumpAction, reason string) *model.Decision {
	return &model.Decision{PumpAction: a, Reason: reason}
}

// ===================== 1. model =====================

// modelGate: "moist" from the classifier is final.
type modelGate struct{ cls Classifier }

func (g *modelGate) Name() string { return "model" }

func (g *modelGate) Evaluate(_ context.Context, in *gateInput) (*model.Decision, error) {
	label, err := g.cls.Predict(in.Reading.Features())
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	in.Label = label
	switch label {
	case LabelMoist:
		log.Printf("[%s] model: 0 (soil is moist) moisture=%.1f temp=%.1f hum=%.1f",
			in.Plant, in.Reading.SoilMoisture, in.Reading.Temperature, in.Reading.AirHumidity)
		return decision(model.PumpOff, reasonMoist), nil
	case LabelDry:
		log.Printf("[%s] model: 1 (soil is dry) moisture=%.1f temp=%.1f hum=%.1f",
			in.Plant, in.Reading.SoilMoisture, in.Reading.Temperature, in.Reading.AirHumidity)
		return nil, nil
	default:
		return nil, fmt.Errorf("classifier returned label %d", label)
	}
}

// ===================== 2. weather =====================

// weatherGate can only veto watering. Provider failures count as "no rain".
type weatherGate struct {
	fc       Forecaster
	location string
	timeout  time.Duration
	horizon  int
	metrics  *Metrics
}

func (g *weatherGate) Name() string { return "weather" }

func (g *weatherGate) Evaluate(ctx context.Context, in *gateInput) (*model.Decision, error) {
	fctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	samples, err := g.fc.FetchForecast(fctx, g.location)
	var rain bool
	if err == nil {
		rain, err = RainExpected(samples, g.horizon)
	}
	if err != nil {
		// fail-open: meglio bagnare che lasciare la pianta a secco
		g.metrics.ForecastFailed()
		log.Printf("[%s] weather: provider error: %v (assuming no rain)", in.Plant, err)
		return nil, nil
	}
	if rain {
		log.Printf("[%s] weather: rain forecast in next %d samples → override", in.Plant, g.horizon)
		return decision(model.PumpOff, reasonRain), nil
	}
	log.Printf("[%s] weather: no rain forecast", in.Plant)
	return nil, nil
}

// ===================== 3. plant / time =====================

type plantTimeGate struct {
	policy model.PlantPolicy
	tz     *time.Location
	now    func() time.Time
}

func (g *plantTimeGate) Name() string { return "plant_time" }

func (g *plantTimeGate) Evaluate(_ context.Context, in *gateInput) (*model.Decision, error) {
	class, _ := g.policy.ClassOf(in.Plant)
	switch class {
	case model.ClassUrgent:
		log.Printf("[%s] policy: urgent plant → watering now", in.Plant)
		return decision(model.PumpOn, reasonUrgent(in.Plant)), nil
	case model.ClassEvening:
		hour := g.now().In(g.tz).Hour()
		if hour < g.policy.EveningHour {
			log.Printf("[%s] policy: hour=%d < %d → scheduled for evening", in.Plant, hour, g.policy.EveningHour)
			return decision(model.PumpOff, reasonDeferred(in.Plant)), nil
		}
		log.Printf("[%s] policy: hour=%d >= %d → watering now", in.Plant, hour, g.policy.EveningHour)
		return decision(model.PumpOn, reasonEvening(in.Plant)), nil
	default:
		log.Printf("[%s] policy: no rule for plant → default watering", in.Plant)
		return decision(model.PumpOn, reasonDefault), nil
	}
}
