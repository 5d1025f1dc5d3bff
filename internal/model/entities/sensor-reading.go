package entities

// SensorReading is what the field node measures on every cycle.
type SensorReading struct {
	SoilMoisture float64 `json:"soil_moisture"` // %
	Temperature  float64 `json:"temperature"`   // °C
	AirHumidity  float64 `json:"air_humidity"`  // %
}

// Features returns the ordered feature vector the classifier was trained on.
func (r SensorReading) Features() []float64 {
	return []float64{r.SoilMoisture, r.Temperature, r.AirHumidity}
}
