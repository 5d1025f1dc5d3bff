package entities

// UnknownPlant is used when the request carries no plant_type.
const UnknownPlant = "unknown"

// PlantContext identifies what is growing next to the sensor.
type PlantContext struct {
	PlantType string `json:"plant_type"`
}

// PlantClass groups plants sharing the same watering policy.
type PlantClass string

const (
	// ClassUrgent: fragile plants, watered as soon as the soil is dry.
	ClassUrgent PlantClass = "urgent"
	// ClassEvening: tolerant plants, watering is deferred to the evening.
	ClassEvening PlantClass = "evening"
)

// PlantPolicy is the per-plant scheduling table applied after the weather check.
type PlantPolicy struct {
	EveningHour int                   `yaml:"evening_hour" json:"evening_hour"`
	Plants      map[string]PlantClass `yaml:"plants" json:"plants"`
}

// ClassOf returns the class configured for plant, if any.
func (p PlantPolicy) ClassOf(plant string) (PlantClass, bool) {
	c, ok := p.Plants[plant]
	return c, ok
}
