// Package schema is the type system of a bigraph document.
//
// It holds three things:
//
//   - Types: the leaf types (any, float, int, string, bool, map, "[T]" lists and custom
//     types). A type validates, defaults and canonicalizes values, and decides how an
//     update produced by a process is combined with the current value.
//   - Registry: the named types a Core resolves schema declarations against.
//   - Core: completion, capability checks and serialization of (schema, state) pairs.
//
// Completion is the only place where a document is validated. Builders may write
// inconsistent edits; Core.Complete either returns a reconciled pair or an error
// wrapping domain.ErrSchemaViolation, domain.ErrMissingProcess or
// domain.ErrPortNotDeclared.
//
//	core := schema.NewCore()
//	s, st, err := core.Complete(
//	    map[string]any{"volume": "float"},
//	    map[string]any{"label": "cell"},
//	)
//	// s  == {"volume": {"_type": "float"}, "label": {"_type": "string"}}
//	// st == {"volume": 0.0, "label": "cell"}
//
// Process configs are completed from the JSON Schema each implementation declares,
// using the property defaults, and validated with gojsonschema.
package schema
