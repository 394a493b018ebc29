/*
Package ports defines the collaborators a bigraph Builder delegates to.

These interfaces decouple the builder from its implementations, so tests and hosts
can substitute their own type system, runtime, renderer or storage.

# Key Interfaces

  - TypeSystem: completion, capability checks and serialization (schema.Core).
  - Runtime and Composite: executable form of a completed document.
  - Visualizer: renders a document to a file.
  - DocumentStore: persists serialized documents (file adapter).
*/
package ports
