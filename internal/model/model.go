package model

import (
	"github.com/LeonardoBeccarini/pump_scheduler/internal/model/entities"
	"github.com/LeonardoBeccarini/pump_scheduler/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	SensorReading      = entities.SensorReading
	PlantContext       = entities.PlantContext
	PlantPolicy        = entities.PlantPolicy
	PlantClass         = entities.PlantClass
	Decision           = entities.Decision
	PumpAction         = entities.PumpAction
	ForecastSample     = entities.ForecastSample
	PumpDecisionEvent  = messages.PumpDecisionEvent
	SensorReadingEvent = messages.SensorReadingEvent
)

const (
	PumpOff       = entities.PumpOff
	PumpOn        = entities.PumpOn
	ClassUrgent   = entities.ClassUrgent
	ClassEvening  = entities.ClassEvening
	UnknownPlant  = entities.UnknownPlant
	ConditionRain = entities.ConditionRain
)
