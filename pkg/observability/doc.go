/*
Package observability provides Prometheus collectors for builders and composites.

Metrics registers its collectors on a caller supplied prometheus.Registerer and
exposes domain.LifecycleHooks that feed them, so a Builder or a Runtime can be
observed without knowing about Prometheus.
*/
package observability
