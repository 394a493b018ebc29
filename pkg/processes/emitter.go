package processes

import (
	"fmt"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// EmitterConfig lists the ports an emitter reads, with their types.
type EmitterConfig struct {
	Emit map[string]string `mapstructure:"emit"`
}

// ramEmitter keeps every snapshot it is shown in memory.
type ramEmitter struct {
	emit    registry.Ports
	history []map[string]any
}

// RAMEmitter is a step that records a snapshot of its inputs each time it is triggered.
// Its ports come from the "emit" config: {port: type}.
func RAMEmitter() registry.Implementation {
	return registry.Implementation{
		Kind:        domain.KindStep,
		Description: "records snapshots of the stores it is wired to",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"emit": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
					"default":              map[string]any{},
				},
			},
		},
		New: func(config map[string]any) (registry.Process, error) {
			var cfg EmitterConfig
			if err := mapstructure.Decode(config, &cfg); err != nil {
				return nil, fmt.Errorf("invalid emitter config: %w", err)
			}
			return &ramEmitter{emit: registry.Ports(cfg.Emit)}, nil
		},
	}
}

func (e *ramEmitter) Inputs() registry.Ports  { return e.emit }
func (e *ramEmitter) Outputs() registry.Ports { return registry.Ports{} }

func (e *ramEmitter) Update(inputs map[string]any, interval float64) (map[string]any, error) {
	e.history = append(e.history, domain.CopyMap(inputs))
	return map[string]any{}, nil
}

// History implements registry.Recorder.
func (e *ramEmitter) History() []map[string]any {
	out := make([]map[string]any, len(e.history))
	copy(out, e.history)
	return out
}
