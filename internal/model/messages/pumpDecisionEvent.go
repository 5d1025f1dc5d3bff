package messages

import "time"

// PumpDecisionEvent is emitted by the decision engine for every answered request (audit trail).
type PumpDecisionEvent struct {
	ID           string    `json:"id"` // uuid, lets consumers drop MQTT redeliveries
	PlantType    string    `json:"plant_type"`
	SoilMoisture float64   `json:"soil_moisture"`
	Temperature  float64   `json:"temperature"`
	AirHumidity  float64   `json:"air_humidity"`
	PumpAction   int       `json:"pump_action"`
	Reason       string    `json:"reason"`
	Gate         string    `json:"gate"`
	Timestamp    time.Time `json:"timestamp"`
}
