/*
Package domain contains the core vocabulary of the bigraph builder.

It defines how locations are addressed, what an edge record looks like in state and how
failures are classified. This package is kept free of I/O so every other layer (type
system, runtime, adapters) can share it.

# Key Entities

  - Path: A sequence of keys addressing a store or an edge inside the document.
  - EdgeSpec: The record of a process or step (kind, address, config, wires).
  - Address: The parsed "<protocol>:<locator>" form used to resolve implementations.
  - Document: The transportable {schema, state} pair.
  - Errors: ErrSchemaViolation, ErrRegistration, ErrInvalidOperation, ErrPortNotDeclared
    and ErrMissingProcess, plus PathError and PortError carrying the location.
*/
package domain
