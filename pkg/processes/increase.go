package processes

import (
	"fmt"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// IncreaseConfig parameterizes the increase process.
type IncreaseConfig struct {
	Rate float64 `mapstructure:"rate"`
}

type increase struct {
	cfg IncreaseConfig
}

// Increase grows the level it is wired to by level * rate per unit of time.
func Increase() registry.Implementation {
	return registry.Implementation{
		Kind:        domain.KindProcess,
		Description: "grows a level by level * rate per unit of time",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"rate": map[string]any{"type": "number", "default": 0.1},
			},
			"additionalProperties": false,
		},
		New: func(config map[string]any) (registry.Process, error) {
			var cfg IncreaseConfig
			if err := mapstructure.Decode(config, &cfg); err != nil {
				return nil, fmt.Errorf("invalid increase config: %w", err)
			}
			return &increase{cfg: cfg}, nil
		},
	}
}

func (p *increase) Inputs() registry.Ports  { return registry.Ports{"level": "float"} }
func (p *increase) Outputs() registry.Ports { return registry.Ports{"level": "float"} }

func (p *increase) Update(inputs map[string]any, interval float64) (map[string]any, error) {
	level, ok := inputs["level"].(float64)
	if !ok {
		return nil, fmt.Errorf("increase: level must be a float, got %T", inputs["level"])
	}
	return map[string]any{"level": level * p.cfg.Rate * interval}, nil
}
