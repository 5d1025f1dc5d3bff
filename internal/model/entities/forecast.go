package entities

import "time"

// ConditionRain is the OpenWeather "main" condition label for rain.
const ConditionRain = "Rain"

// ForecastSample is one 3-hour bucket of the short-horizon forecast.
type ForecastSample struct {
	Time      time.Time `json:"time"`
	Condition string    `json:"condition"` // e.g. "Rain", "Clouds", "Clear"
}
