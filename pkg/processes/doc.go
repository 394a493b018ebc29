// Package processes holds the built-in edge implementations:
//
//   - increase: a process that grows a level at a configurable rate.
//   - ram-emitter: a step that records snapshots of the stores it is wired to.
//   - lua: a process whose update is a Lua function taken from its config.
//
// Register adds them to a process registry under those names. Catalog exposes the
// same implementations to "local:!bigraph.processes.<Name>" addresses.
package processes
