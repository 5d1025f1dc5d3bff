package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

// ====== Tunables ======
const (
	// gainPerMin: +0.6% per minuto con la pompa accesa (in [0..1]).
	gainPerMin = 0.006

	// defaultSeed: moisture iniziale se non specificata.
	defaultSeed = 0.30 // 30%

	// diurnal curve: peak temperature around 15:00, humidity opposite
	tempMean, tempAmp = 27.0, 8.0
	humMean, humAmp   = 55.0, 20.0
	peakHour          = 15.0
)

// DataGenerator mantiene lo stato interno della moisture e lo aggiorna nel tempo.
type DataGenerator struct {
	mu          sync.Mutex
	last        time.Time
	moisture    float64 // [0..1]
	decayPerMin float64 // es. 0.001 → -0.1%/min quando OFF
	noise       float64 // stddev in °C / % applied to temp and humidity
	rnd         *rand.Rand
	now         func() time.Time
}

// NewDataGenerator crea un generatore con dato tasso di decadimento (OFF) per minuto.
// seed < 0 means defaultSeed.
func NewDataGenerator(decayPerMin, seed float64) *DataGenerator {
	if seed < 0 {
		seed = defaultSeed
	}
	return &DataGenerator{
		moisture:    clamp01(seed),
		decayPerMin: math.Max(0, decayPerMin),
		noise:       0.5,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// Next aggiorna lo stato interno e restituisce una SensorReading.
func (g *DataGenerator) Next(pumpOn bool) model.SensorReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.last.IsZero() {
		g.last = now
	}
	dtMin := now.Sub(g.last).Minutes()
	if dtMin < 0 {
		dtMin = 0
	}
	if pumpOn {
		g.moisture = clamp01(g.moisture + gainPerMin*dtMin)
	} else {
		g.moisture = clamp01(g.moisture - g.decayPerMin*dtMin)
	}
	g.last = now

	// fase della giornata in radianti, 0 al picco
	h := float64(now.Hour()) + float64(now.Minute())/60
	phase := math.Cos(2 * math.Pi * (h - peakHour) / 24)

	return model.SensorReading{
		SoilMoisture: round1(g.moisture * 100),
		Temperature:  round1(tempMean + tempAmp*phase + g.rnd.NormFloat64()*g.noise),
		AirHumidity:  round1(clamp(humMean-humAmp*phase+g.rnd.NormFloat64()*g.noise, 0, 100)),
	}
}

// Moisture returns the current soil moisture in [0..1].
func (g *DataGenerator) Moisture() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moisture
}

// ===== Helpers =====

func clamp01(x float64) float64 { return clamp(x, 0, 1) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
