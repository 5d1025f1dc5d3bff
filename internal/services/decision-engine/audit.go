package decision_engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

// AuditSink receives one event per decision. Sinks are best effort.
type AuditSink interface {
	Record(ctx context.Context, evt model.PumpDecisionEvent) error
}

// ===================== MQTT =====================

type topicPublisher interface {
	PublishTo(topic string, qos byte, payload []byte) error
}

// MQTTSink pubblica l'evento di decisione su event/pumpDecision/{plant}.
type MQTTSink struct {
	pub       topicPublisher
	topicTmpl string
	qos       byte
}

func NewMQTTSink(pub topicPublisher, topicTmpl string, qos byte) *MQTTSink {
	if strings.TrimSpace(topicTmpl) == "" {
		topicTmpl = "event/pumpDecision/{plant}"
	}
	return &MQTTSink{pub: pub, topicTmpl: topicTmpl, qos: qos}
}

func (s *MQTTSink) Record(_ context.Context, evt model.PumpDecisionEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}
	return s.pub.PublishTo(s.topic(evt.PlantType), s.qos, b)
}

func (s *MQTTSink) topic(plant string) string {
	return strings.NewReplacer("{plant}", topicSegment(plant)).Replace(s.topicTmpl)
}

// topicSegment strips MQTT wildcards and separators from a free-form plant name.
func topicSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.UnknownPlant
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ':
			return '_'
		}
		return r
	}, s)
}

// ===================== InfluxDB =====================

// InfluxSink writes decisions as "pump_decision" points through the non-blocking write API.
type InfluxSink struct {
	w api.WriteAPI
}

func NewInfluxSink(w api.WriteAPI) *InfluxSink {
	go func() {
		for err := range w.Errors() {
			if err != nil {
				log.Printf("audit: influx write error: %v", err)
			}
		}
	}()
	return &InfluxSink{w: w}
}

func (s *InfluxSink) Record(_ context.Context, evt model.PumpDecisionEvent) error {
	s.w.WritePoint(DecisionToPoint(evt))
	return nil
}

// DecisionToPoint normalizza l'evento in un *write.Point.
func DecisionToPoint(evt model.PumpDecisionEvent) *write.Point {
	tags := map[string]string{
		"plant_type": topicSegment(evt.PlantType),
		"gate":       evt.Gate,
	}
	fields := map[string]interface{}{
		"event_id":      evt.ID,
		"pump_action":   int64(evt.PumpAction),
		"reason":        evt.Reason,
		"soil_moisture": evt.SoilMoisture,
		"temperature":   evt.Temperature,
		"air_humidity":  evt.AirHumidity,
	}
	return influxdb2.NewPoint("pump_decision", tags, fields, evt.Timestamp)
}

// ===================== fan-out =====================

// MultiSink forwards to every sink; failures are logged and never reach the caller.
type MultiSink []AuditSink

func (m MultiSink) Record(ctx context.Context, evt model.PumpDecisionEvent) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, evt); err != nil {
			log.Printf("audit: %T: %v", s, err)
		}
	}
	return nil
}
