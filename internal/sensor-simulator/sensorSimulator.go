package sensor_simulator

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
	"github.com/LeonardoBeccarini/pump_scheduler/pkg/rabbitmq"
)

// SensorDataTopic is where raw readings are mirrored when MQTT is enabled.
const SensorDataTopic = "sensor/data"

// Decider is the narrow view of DecisionClient used by the loop.
type Decider interface {
	Decide(ctx context.Context, r model.SensorReading, plant string) (model.Decision, error)
}

type SensorSimulator struct {
	mu          sync.Mutex
	nodeID      string
	plant       string
	pumpOn      bool
	timer       *time.Timer // single timer
	wateringFor time.Duration
	generator   *DataGenerator
	decider     Decider
	publisher   rabbitmq.IPublisher // nil = no MQTT
}

func NewSensorSimulator(nodeID, plant string, wateringFor time.Duration, gen *DataGenerator,
	decider Decider, publisher rabbitmq.IPublisher) *SensorSimulator {
	return &SensorSimulator{
		nodeID:      nodeID,
		plant:       plant,
		wateringFor: wateringFor,
		generator:   gen,
		decider:     decider,
		publisher:   publisher,
	}
}

// Start genera una lettura ad ogni intervallo e chiede la decisione al motore.
func (s *SensorSimulator) Start(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			s.stopTimer()
			if s.publisher != nil {
				s.publisher.Close()
			}
			return
		case <-time.After(interval):
			if _, err := s.Step(ctx); err != nil {
				log.Printf("sensor %s: %v", s.nodeID, err)
			}
		}
	}
}

// Step runs one measure → decide → actuate cycle.
func (s *SensorSimulator) Step(ctx context.Context) (model.Decision, error) {
	on := s.PumpOn()
	r := s.generator.Next(on)
	log.Printf("sensor %s: moisture=%.1f%% temp=%.1f hum=%.1f pump_on=%t",
		s.nodeID, r.SoilMoisture, r.Temperature, r.AirHumidity, on)
	s.publish(r, on)

	d, err := s.decider.Decide(ctx, r, s.plant)
	if err != nil {
		return model.Decision{}, err
	}
	log.Printf("sensor %s: pump_action=%d reason=%q", s.nodeID, d.PumpAction, d.Reason)
	if d.PumpAction == model.PumpOn {
		s.water()
	}
	return d, nil
}

func (s *SensorSimulator) PumpOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pumpOn
}

// water accende la pompa per wateringFor; una nuova richiesta riavvia il timer.
func (s *SensorSimulator) water() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pumpOn = true
	log.Printf("sensor %s: pump → on for %s", s.nodeID, s.wateringFor)

	if s.wateringFor > 0 {
		s.timer = time.AfterFunc(s.wateringFor, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.pumpOn = false
			s.timer = nil
			log.Printf("sensor %s: pump ↺ off", s.nodeID)
		})
	}
}

func (s *SensorSimulator) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SensorSimulator) publish(r model.SensorReading, on bool) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(model.SensorReadingEvent{
		NodeID:       s.nodeID,
		PlantType:    s.plant,
		SoilMoisture: r.SoilMoisture,
		Temperature:  r.Temperature,
		AirHumidity:  r.AirHumidity,
		PumpOn:       on,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		log.Printf("sensor %s: marshal reading: %v", s.nodeID, err)
		return
	}
	if err := s.publisher.PublishTo(SensorDataTopic, 0, payload); err != nil {
		log.Printf("sensor %s: publish error: %v", s.nodeID, err)
	}
}
