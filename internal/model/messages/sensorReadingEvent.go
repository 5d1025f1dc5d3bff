package messages

import "time"

// SensorReadingEvent: raw reading mirrored on MQTT by the sensor node.
type SensorReadingEvent struct {
	NodeID       string    `json:"node_id"`
	PlantType    string    `json:"plant_type"`
	SoilMoisture float64   `json:"soil_moisture"`
	Temperature  float64   `json:"temperature"`
	AirHumidity  float64   `json:"air_humidity"`
	PumpOn       bool      `json:"pump_on"`
	Timestamp    time.Time `json:"timestamp"`
}
