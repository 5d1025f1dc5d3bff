package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	engine "github.com/LeonardoBeccarini/pump_scheduler/internal/services/decision-engine"
	"github.com/LeonardoBeccarini/pump_scheduler/pkg/rabbitmq"
)

func main() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- classifier: senza modello il servizio non parte ---
	log.Printf("loading classifier from %s", cfg.ModelPath)
	cls, err := engine.LoadClassifier(cfg.ModelPath)
	if err != nil {
		if errors.Is(err, engine.ErrModelNotFound) {
			log.Fatalf("FATAL: %v", err)
		}
		log.Fatalf("classifier init: %v", err)
	}

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		log.Printf("WARN: invalid TZ=%q, falling back to local: %v", cfg.TZ, err)
		loc = time.Local
	}

	policy, err := engine.LoadPlantPolicy(cfg.PlantPolicyPath, cfg.EveningHour)
	if err != nil {
		log.Fatalf("plant policy: %v", err)
	}

	if cfg.OWMAPIKey == "" {
		log.Printf("WARN: OWM_API_KEY not set, every forecast check will fail open (no rain)")
	}
	owm := engine.NewOWMClient(cfg.OWMAPIKey, cfg.OWMBaseURL, cfg.ForecastTimeout)
	fc := engine.NewBreakerForecaster(owm, engine.BreakerSettings{
		Failures: cfg.CBForecastFails,
		OpenFor:  cfg.CBForecastOpen,
		Interval: cfg.CBForecastInterval,
	})

	metrics := engine.NewMetrics()
	eng, err := engine.NewEngine(cls, fc, engine.Config{
		Location:        cfg.Location,
		ForecastTimeout: cfg.ForecastTimeout,
		ForecastHorizon: cfg.ForecastHorizon,
		Policy:          policy,
		TZ:              loc,
	}, metrics)
	if err != nil {
		log.Fatalf("engine init: %v", err)
	}

	// --- audit sinks (opzionali) ---
	var sinks engine.MultiSink
	var mqttConnected func() bool
	if cfg.RabbitHost != "" {
		client, err := rabbitmq.NewRabbitMQConn(ctx, &rabbitmq.RabbitMQConfig{
			Host:     cfg.RabbitHost,
			Port:     cfg.RabbitPort,
			User:     cfg.RabbitUser,
			Password: cfg.RabbitPassword,
			ClientID: cfg.ClientID,
		})
		if err != nil {
			log.Printf("WARN: mqtt audit disabled: %v", err)
		} else {
			pub := rabbitmq.NewPublisher(client, 2*time.Second)
			defer pub.Close()
			sinks = append(sinks, engine.NewMQTTSink(pub, cfg.DecisionTopic, 0))
			mqttConnected = pub.Connected
		}
	}
	if cfg.InfluxURL != "" {
		influx := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer influx.Close()
		writeAPI := influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket)
		defer writeAPI.Flush()
		sinks = append(sinks, engine.NewInfluxSink(writeAPI))
	}

	var audit engine.AuditSink
	if len(sinks) > 0 {
		audit = sinks
	}

	// --- HTTP ---
	router := mux.NewRouter()
	engine.NewAPI(eng, audit, metrics, mqttConnected).
		WithBreakerState(func() string { return fc.State().String() }).
		RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.LoggingHandler(os.Stdout, router),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ForecastTimeout + 10*time.Second,
	}
	go func() {
		log.Printf("decision engine listening on :%s (location=%s tz=%s evening=%d:00 sinks=%d)",
			cfg.Port, cfg.Location, loc, policy.EveningHour, len(sinks))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("decision engine: shutting down...")
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
}
