package decision_engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
	"gopkg.in/yaml.v3"
)

const defaultEveningHour = 18 // 18:00 local

// DefaultPlantPolicy: mint is fragile, tomato and onion can wait for the evening.
func DefaultPlantPolicy(eveningHour int) model.PlantPolicy {
	return model.PlantPolicy{
		EveningHour: eveningHour,
		Plants: map[string]model.PlantClass{
			"mint":   model.ClassUrgent,
			"tomato": model.ClassEvening,
			"onion":  model.ClassEvening,
		},
	}
}

// LoadPlantPolicy reads the plant table from YAML. An empty path means the built-in table.
// evening_hour omitted in the file keeps eveningHour.
//
//	evening_hour: 19
//	plants:
//	  mint: urgent
//	  tomato: evening
func LoadPlantPolicy(path string, eveningHour int) (model.PlantPolicy, error) {
	if strings.TrimSpace(path) == "" {
		p := DefaultPlantPolicy(eveningHour)
		if err := validatePolicy(p); err != nil {
			return model.PlantPolicy{}, fmt.Errorf("plant policy: %w", err)
		}
		return p, nil
	}
	// #nosec G304 -- path comes from operator configuration.
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.PlantPolicy{}, fmt.Errorf("read plant policy: %w", err)
	}
	var doc struct {
		EveningHour *int                        `yaml:"evening_hour"`
		Plants      map[string]model.PlantClass `yaml:"plants"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return model.PlantPolicy{}, fmt.Errorf("decode plant policy %s: %w", path, err)
	}
	p := model.PlantPolicy{EveningHour: eveningHour, Plants: doc.Plants}
	if doc.EveningHour != nil {
		p.EveningHour = *doc.EveningHour
	}
	if p.Plants == nil {
		p.Plants = map[string]model.PlantClass{}
	}
	if err := validatePolicy(p); err != nil {
		return model.PlantPolicy{}, fmt.Errorf("plant policy %s: %w", path, err)
	}
	return p, nil
}

func validatePolicy(p model.PlantPolicy) error {
	if p.EveningHour < 0 || p.EveningHour > 23 {
		return fmt.Errorf("evening_hour %d out of range 0-23", p.EveningHour)
	}
	for plant, c := range p.Plants {
		switch c {
		case model.ClassUrgent, model.ClassEvening:
		default:
			return fmt.Errorf("plant %q: unknown class %q", plant, c)
		}
	}
	return nil
}
