package decision_engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

type recordedPublish struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	sent []recordedPublish
	err  error
}

func (f *fakePublisher) PublishTo(topic string, qos byte, payload []byte) error {
	f.sent = append(f.sent, recordedPublish{topic: topic, qos: qos, payload: payload})
	return f.err
}

func sampleEvent(plant string) model.PumpDecisionEvent {
	return model.PumpDecisionEvent{
		PlantType:    plant,
		SoilMoisture: 12,
		Temperature:  34,
		AirHumidity:  30,
		PumpAction:   0,
		Reason:       "Soil is dry, but rain is forecast. Saving water!",
		Gate:         "weather",
		Timestamp:    time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMQTTSinkPublishesOnPlantTopic(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "", 1)
	if err := sink.Record(context.Background(), sampleEvent("tomato")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.sent))
	}
	if got := pub.sent[0].topic; got != "event/pumpDecision/tomato" {
		t.Fatalf("unexpected topic %q", got)
	}
	if pub.sent[0].qos != 1 {
		t.Fatalf("unexpected qos %d", pub.sent[0].qos)
	}
	var evt model.PumpDecisionEvent
	if err := json.Unmarshal(pub.sent[0].payload, &evt); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if evt.Gate != "weather" || evt.PlantType != "tomato" {
		t.Fatalf("unexpected payload %+v", evt)
	}
}

func TestTopicSegment(t *testing.T) {
	cases := map[string]string{
		"mint":       "mint",
		"":           "unknown",
		"  ":         "unknown",
		"a/b":        "a_b",
		"cherry #1+": "cherry__1_",
	}
	for in, want := range cases {
		if got := topicSegment(in); got != want {
			t.Errorf("topicSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecisionToPoint(t *testing.T) {
	line := write.PointToLineProtocol(DecisionToPoint(sampleEvent("onion")), time.Second)
	for _, want := range []string{
		"pump_decision,",
		"gate=weather",
		"plant_type=onion",
		"pump_action=0i",
		"soil_moisture=12",
		"1719835200",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol %q missing %q", line, want)
		}
	}
}

func TestInfluxSinkWritesThroughWriteAPI(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/write" {
			b, _ := io.ReadAll(r.Body)
			select {
			case bodies <- string(b):
			default:
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := influxdb2.NewClient(srv.URL, "token")
	defer client.Close()
	w := client.WriteAPI("sdcc", "irrigation")
	sink := NewInfluxSink(w)
	if err := sink.Record(context.Background(), sampleEvent("mint")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	w.Flush()

	select {
	case body := <-bodies:
		if !strings.Contains(body, "pump_decision,gate=weather,plant_type=mint") {
			t.Fatalf("unexpected body %q", body)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no write reached the server")
	}
}

type countingSink struct {
	n   int
	err error
}

func (c *countingSink) Record(context.Context, model.PumpDecisionEvent) error {
	c.n++
	return c.err
}

func TestMultiSinkIsBestEffort(t *testing.T) {
	a := &countingSink{err: errors.New("broker down")}
	b := &countingSink{}
	m := MultiSink{a, nil, b}
	if err := m.Record(context.Background(), sampleEvent("mint")); err != nil {
		t.Fatalf("MultiSink must swallow sink errors, got %v", err)
	}
	if a.n != 1 || b.n != 1 {
		t.Fatalf("every sink must be called once, got %d/%d", a.n, b.n)
	}
}
