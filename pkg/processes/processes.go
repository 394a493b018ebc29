package processes

import (
	"fmt"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
)

// Names of the built-in processes in a registry.
const (
	NameIncrease   = "increase"
	NameRAMEmitter = "ram-emitter"
	NameLua        = "lua"
)

// Catalog returns the locator table of the built-in processes.
func Catalog() registry.Catalog {
	return registry.Catalog{
		"bigraph.processes.Increase":   Increase(),
		"bigraph.processes.RAMEmitter": RAMEmitter(),
		"bigraph.processes.Lua":        Lua(),
	}
}

// Register adds the built-in processes to reg. Existing entries are kept.
func Register(reg *registry.Registry) error {
	builtins := map[string]registry.Implementation{
		NameIncrease:   Increase(),
		NameRAMEmitter: RAMEmitter(),
		NameLua:        Lua(),
	}
	for _, name := range []string{NameIncrease, NameRAMEmitter, NameLua} {
		if _, exists := reg.Access(name); exists {
			continue
		}
		if err := reg.Register(name, builtins[name], false); err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}
	}
	return nil
}

// UpdateFunc computes the output of a process from its inputs.
type UpdateFunc func(inputs map[string]any, interval float64) (map[string]any, error)

// Func wraps an update function with fixed ports as a process implementation.
// It is the shortest way to register ad-hoc processes from Go code.
func Func(inputs, outputs registry.Ports, fn UpdateFunc) registry.Implementation {
	return registry.Implementation{
		Kind: domain.KindProcess,
		New: func(config map[string]any) (registry.Process, error) {
			return &funcProcess{inputs: inputs, outputs: outputs, fn: fn}, nil
		},
	}
}

// StepFunc is Func for steps.
func StepFunc(inputs, outputs registry.Ports, fn UpdateFunc) registry.Implementation {
	impl := Func(inputs, outputs, fn)
	impl.Kind = domain.KindStep
	return impl
}

type funcProcess struct {
	inputs  registry.Ports
	outputs registry.Ports
	fn      UpdateFunc
}

func (p *funcProcess) Inputs() registry.Ports  { return p.inputs }
func (p *funcProcess) Outputs() registry.Ports { return p.outputs }

func (p *funcProcess) Update(inputs map[string]any, interval float64) (map[string]any, error) {
	return p.fn(inputs, interval)
}
