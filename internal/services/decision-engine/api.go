package decision_engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

// PredictPath is the endpoint the field nodes post their readings to.
const PredictPath = "/predict"

const maxBodyBytes = 1 << 20

// Decider is what the HTTP layer needs from the engine.
type Decider interface {
	Decide(ctx context.Context, r model.SensorReading, p model.PlantContext) (model.Decision, error)
}

// API espone il motore di decisione via HTTP.
type API struct {
	engine        Decider
	audit         AuditSink
	metrics       *Metrics
	mqttConnected func() bool // nil when the MQTT audit sink is disabled
	breakerState  func() string
}

func NewAPI(engine Decider, audit AuditSink, m *Metrics, mqttConnected func() bool) *API {
	return &API{engine: engine, audit: audit, metrics: m, mqttConnected: mqttConnected}
}

// WithBreakerState reports the forecast breaker state on /readyz.
func (a *API) WithBreakerState(f func() string) *API {
	a.breakerState = f
	return a
}

// RegisterRoutes sets up all API routes
func (a *API) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(PredictPath, a.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
}

// predictRequest: pointers tell a missing field apart from a zero reading.
type predictRequest struct {
	SoilMoisture *float64        `json:"soil_moisture"`
	Temperature  *float64        `json:"temperature"`
	AirHumidity  *float64        `json:"air_humidity"`
	PlantType    json.RawMessage `json:"plant_type"` // any JSON value; only strings name a plant
}

// DecodePredictRequest parses and validates the JSON body of POST /predict.
func DecodePredictRequest(body io.Reader) (model.SensorReading, model.PlantContext, error) {
	var req predictRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return model.SensorReading{}, model.PlantContext{}, &ValidationError{Msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"soil_moisture", req.SoilMoisture},
		{"temperature", req.Temperature},
		{"air_humidity", req.AirHumidity},
	} {
		if f.v == nil {
			return model.SensorReading{}, model.PlantContext{}, &ValidationError{Field: f.name, Msg: "required field missing"}
		}
	}

	plant := model.PlantContext{PlantType: model.UnknownPlant}
	var name *string
	if len(req.PlantType) > 0 && json.Unmarshal(req.PlantType, &name) == nil && name != nil {
		plant.PlantType = *name
	}
	return model.SensorReading{
		SoilMoisture: *req.SoilMoisture,
		Temperature:  *req.Temperature,
		AirHumidity:  *req.AirHumidity,
	}, plant, nil
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("api: panic while deciding: %v", rec)
			a.metrics.RequestRejected("internal")
			respondError(w, http.StatusBadRequest, fmt.Sprint(rec))
		}
	}()

	reading, plant, err := DecodePredictRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Printf("api: rejected request: %v", err)
		a.metrics.RequestRejected("validation")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := a.engine.Decide(r.Context(), reading, plant)
	if err != nil {
		kind := "internal"
		var ve *ValidationError
		if errors.As(err, &ve) {
			kind = "validation"
		}
		log.Printf("api: decision error (%s): %v", kind, err)
		a.metrics.RequestRejected(kind)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if a.audit != nil {
		evt := model.PumpDecisionEvent{
			ID:           uuid.NewString(),
			PlantType:    plant.PlantType,
			SoilMoisture: reading.SoilMoisture,
			Temperature:  reading.Temperature,
			AirHumidity:  reading.AirHumidity,
			PumpAction:   int(d.PumpAction),
			Reason:       d.Reason,
			Gate:         d.Gate,
			Timestamp:    time.Now().UTC(),
		}
		if err := a.audit.Record(context.WithoutCancel(r.Context()), evt); err != nil {
			log.Printf("api: audit error: %v", err)
		}
	}

	log.Printf("decision: [%s] pump_action=%d gate=%s reason=%q", plant.PlantType, d.PumpAction, d.Gate, d.Reason)
	respondJSON(w, http.StatusOK, d)
}

func (a *API) handleReady(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		Ready           bool   `json:"ready"`
		MQTTConnected   *bool  `json:"mqtt_connected,omitempty"`
		ForecastBreaker string `json:"forecast_breaker,omitempty"`
	}
	// il classificatore è caricato prima di aprire la porta: se rispondiamo, siamo pronti
	out := resp{Ready: a.engine != nil}
	if a.mqttConnected != nil {
		c := a.mqttConnected()
		out.MQTTConnected = &c
	}
	// breaker aperto non blocca: il gate meteo è fail-open
	if a.breakerState != nil {
		out.ForecastBreaker = a.breakerState()
	}
	status := http.StatusOK
	if !out.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, out)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("api: error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
