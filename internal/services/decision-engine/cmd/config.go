package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	ModelPath       string
	PlantPolicyPath string

	OWMAPIKey       string
	OWMBaseURL      string
	Location        string
	TZ              string
	EveningHour     int
	ForecastTimeout time.Duration
	ForecastHorizon int

	CBForecastFails    int
	CBForecastOpen     time.Duration
	CBForecastInterval time.Duration

	// audit MQTT (disabilitato se host vuoto)
	RabbitHost     string
	RabbitPort     int
	RabbitUser     string
	RabbitPassword string
	ClientID       string
	DecisionTopic  string

	// audit Influx (disabilitato se URL vuoto)
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvMs(k string, d int) time.Duration {
	return time.Duration(getenvInt(k, d)) * time.Millisecond
}

func loadConfig() Config {
	return Config{
		Port:            getenv("PORT", "5000"),
		ModelPath:       getenv("MODEL_PATH", "/app/config/pump_automation_model.json"),
		PlantPolicyPath: getenv("PLANT_POLICY_PATH", ""),

		OWMAPIKey:       getenv("OWM_API_KEY", ""),
		OWMBaseURL:      getenv("OWM_BASE_URL", "https://api.openweathermap.org"),
		Location:        getenv("WEATHER_LOCATION", "Tunis,TN"),
		TZ:              getenv("TZ", "Africa/Tunis"),
		EveningHour:     getenvInt("EVENING_HOUR", 18),
		ForecastTimeout: getenvMs("FORECAST_TIMEOUT_MS", 5000),
		ForecastHorizon: getenvInt("FORECAST_HORIZON", 4),

		CBForecastFails:    getenvInt("CB_FORECAST_FAILS", 3),
		CBForecastOpen:     getenvMs("CB_FORECAST_OPEN_MS", 30000),
		CBForecastInterval: getenvMs("CB_FORECAST_INTERVAL_MS", 60000),

		RabbitHost:     getenv("RABBITMQ_HOST", ""),
		RabbitPort:     getenvInt("RABBITMQ_PORT", 1883),
		RabbitUser:     getenv("RABBITMQ_USER", "guest"),
		RabbitPassword: getenv("RABBITMQ_PASSWORD", "guest"),
		ClientID:       "DecisionEngine-" + getenv("HOSTNAME", "local"),
		DecisionTopic:  getenv("DECISION_TOPIC", "event/pumpDecision/{plant}"),

		InfluxURL:    getenv("INFLUX_URL", ""),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", "sdcc"),
		InfluxBucket: getenv("INFLUX_BUCKET", "irrigation"),
	}
}
