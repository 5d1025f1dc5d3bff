package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	sensorSimulator "github.com/LeonardoBeccarini/pump_scheduler/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/pump_scheduler/pkg/rabbitmq"
)

func main() {
	// define flags
	nodeID := flag.String("node-id", "node1", "unique sensor node identifier")
	plant := flag.String("plant", "tomato", "plant type growing next to the sensor")
	endpoint := flag.String("endpoint", "http://localhost:5000", "decision engine base URL")
	interval := flag.Duration("interval", 10*time.Second, "measure interval")
	watering := flag.Duration("watering", 5*time.Minute, "pump on-time after a pump_action=1")
	seed := flag.Float64("seed", -1, "initial soil moisture in [0..1] (default 0.30)")
	decay := flag.Float64("decay", 0.001, "soil moisture lost per minute while the pump is off (0.001 = 0.1%/min)")
	mqttHost := flag.String("mqtt-host", "", "MQTT broker host; empty disables sensor/data mirroring")
	mqttPort := flag.Int("mqtt-port", 1883, "MQTT broker port")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher rabbitmq.IPublisher
	if *mqttHost != "" {
		client, err := rabbitmq.NewRabbitMQConn(ctx, &rabbitmq.RabbitMQConfig{
			Host:     *mqttHost,
			Port:     *mqttPort,
			User:     "guest",
			Password: "guest",
			ClientID: "sensorPublisher-" + *nodeID,
		})
		if err != nil {
			log.Fatal(err)
		}
		publisher = rabbitmq.NewPublisher(client, 2*time.Second)
	}

	generator := sensorSimulator.NewDataGenerator(*decay, *seed)
	client := sensorSimulator.NewDecisionClient(*endpoint, 10*time.Second, 3)
	sim := sensorSimulator.NewSensorSimulator(*nodeID, *plant, *watering, generator, client, publisher)

	log.Printf("sensor %s (%s) → %s every %s", *nodeID, *plant, *endpoint, *interval)
	sim.Start(ctx, *interval)
}

