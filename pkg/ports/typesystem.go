package ports

import (
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
)

// TypeSystem reconciles, checks and serializes documents. schema.Core is the
// default implementation.
type TypeSystem interface {
	// Complete returns a reconciled (schema, state) pair or an error. Arguments are not mutated.
	Complete(schema, state map[string]any) (map[string]any, map[string]any, error)

	// Check reports whether value satisfies a capability ("edge", "process", "step" or a type name).
	Check(capability string, value any) bool

	// Serialize returns the transportable form of a pair.
	Serialize(schema, state map[string]any) (domain.Document, error)

	// Ports returns the declared port types of an edge schema node.
	Ports(edgeSchema any) (inputs, outputs schema.Schema, err error)

	// Processes returns the process registry completion resolves addresses in.
	Processes() *registry.Registry

	// Types returns the type registry.
	Types() *schema.Registry
}

var _ TypeSystem = (*schema.Core)(nil)
