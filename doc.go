/*
Package bigraph assembles hierarchical, typed bigraphs: containment trees of stores and
computational units (processes and steps) whose ports are wired to store locations.

# Concept

A Builder owns one document, a pair of nested maps: the schema (types, defaults and the
declared ports of every edge) and the state (values and edge records). Any location can
be addressed before it exists. Writes are provisional; Complete reconciles the whole
document through the type system, filling defaults, inferring types, resolving process
addresses and creating the stores wires point to. The reconciled pair replaces the old
one wholesale, so a Node is only a path and re-reads the document on every access.

Writes are interpreted by Declare:

  - {"_type": "float", "_default": 1.0} declares a type;
  - {"_value": v} stores v literally, even when v is a map;
  - a map holding an edge record is stored as the edge;
  - any other map is a subtree and each key is written on its own;
  - anything else is a value.

# Usage

	b := bigraph.New()
	_ = b.RegisterProcess("double", processes.Func(
		registry.Ports{"x": "float"}, registry.Ports{"y": "float"},
		func(in map[string]any, dt float64) (map[string]any, error) {
			return map[string]any{"y": 2 * in["x"].(float64)}, nil
		}))

	_ = b.Set(map[string]any{"x": 2.0}, "B")
	_ = b.Get("A").AddProcess("double")
	_ = b.Get("A").Connect("x", domain.Path{"B", "x"})
	_ = b.Get("A").Connect("y", domain.Path{"B", "y"})
	_ = b.Complete()

	_ = b.Run(context.Background(), 1)
	results, _ := b.Results("$.B.y") // {"$.B.y": 4.0}

Completion is the only validation checkpoint: an inconsistent write succeeds and the
next Complete reports it, leaving the previous document in place.
*/
package bigraph
