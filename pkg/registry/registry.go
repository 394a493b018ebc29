package registry

import (
	"fmt"
	"sort"

	"github.com/aretw0/bigraph/pkg/domain"
)

// Ports maps a port name to the name of its type.
type Ports map[string]string

// Process is an instantiated edge. Steps implement the same contract and are
// triggered instead of timed.
type Process interface {
	// Inputs declares the ports read by Update.
	Inputs() Ports
	// Outputs declares the ports Update may write.
	Outputs() Ports
	// Update computes the changes produced over interval from a view of the input ports.
	// The returned map is keyed by output port.
	Update(inputs map[string]any, interval float64) (map[string]any, error)
}

// Recorder is implemented by edges that keep a history of what they observed
// (emitters).
type Recorder interface {
	History() []map[string]any
}

// Factory instantiates a process from its completed config.
type Factory func(config map[string]any) (Process, error)

// Implementation describes a registered process.
type Implementation struct {
	// Kind is "process" or "step".
	Kind string
	// ConfigSchema is a JSON Schema document describing the config. Property defaults
	// are merged into configs during completion. Nil disables validation.
	ConfigSchema map[string]any
	// New builds an instance.
	New Factory
	// Description is shown by listing commands.
	Description string
}

// Registry manages the available process implementations.
// It is owned by one type system and is not safe for concurrent use.
type Registry struct {
	impls   map[string]Implementation
	locator Locator
}

// Option configures a Registry.
type Option func(*Registry)

// WithLocator sets the resolver used for "local:!<locator>" addresses.
func WithLocator(l Locator) Option {
	return func(r *Registry) {
		r.locator = l
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		impls:   make(map[string]Implementation),
		locator: Catalog{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckEdge reports whether impl satisfies the edge capability.
func CheckEdge(impl Implementation) error {
	if !domain.IsEdgeKind(impl.Kind) {
		return fmt.Errorf("%w: kind %q is not an edge kind", domain.ErrRegistration, impl.Kind)
	}
	if impl.New == nil {
		return fmt.Errorf("%w: implementation has no factory", domain.ErrRegistration)
	}
	return nil
}

// Register adds an implementation under name.
// An existing entry is only replaced when force is set.
func (r *Registry) Register(name string, impl Implementation, force bool) error {
	if name == "" {
		return fmt.Errorf("%w: process name is required", domain.ErrRegistration)
	}
	if err := CheckEdge(impl); err != nil {
		return fmt.Errorf("process %q: %w", name, err)
	}
	if _, exists := r.impls[name]; exists && !force {
		return fmt.Errorf("%w: process %q already registered", domain.ErrRegistration, name)
	}
	r.impls[name] = impl
	return nil
}

// RegisterAddress registers the implementation an address points to under name.
func (r *Registry) RegisterAddress(name, address string, force bool) error {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return err
	}
	var impl Implementation
	if addr.Dynamic {
		impl, err = r.locator.Locate(addr.Locator)
		if err != nil {
			return err
		}
	} else {
		var ok bool
		impl, ok = r.impls[addr.Locator]
		if !ok {
			return fmt.Errorf("%w: address %q names no registered process", domain.ErrRegistration, address)
		}
	}
	return r.Register(name, impl, force)
}

// Access looks up an implementation by name.
func (r *Registry) Access(name string) (Implementation, bool) {
	impl, ok := r.impls[name]
	return impl, ok
}

// Resolve returns the implementation an edge address denotes.
// Unknown names wrap domain.ErrMissingProcess.
func (r *Registry) Resolve(address string) (Implementation, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return Implementation{}, err
	}
	if addr.Dynamic {
		impl, err := r.locator.Locate(addr.Locator)
		if err != nil {
			return Implementation{}, fmt.Errorf("%w: %v", domain.ErrMissingProcess, err)
		}
		return impl, nil
	}
	impl, ok := r.impls[addr.Locator]
	if !ok {
		return Implementation{}, fmt.Errorf("%w: %q is not registered", domain.ErrMissingProcess, addr.Locator)
	}
	return impl, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.impls))
	for name := range r.impls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
