package domain

// Marker keys reserved in schema and state maps.
const (
	KeyType    = "_type"
	KeyDefault = "_default"
	KeyValue   = "_value"
	KeyInputs  = "_inputs"
	KeyOutputs = "_outputs"
)

// Field names of an edge record in state.
const (
	FieldAddress  = "address"
	FieldConfig   = "config"
	FieldInputs   = "inputs"
	FieldOutputs  = "outputs"
	FieldInterval = "interval"
)

// Edge kinds. "edge" is the capability both processes and steps satisfy.
const (
	KindProcess = "process"
	KindStep    = "step"
	KindEdge    = "edge"
)

// DefaultInterval is the update interval of a process that declares none.
const DefaultInterval = 1.0

// IsEdgeKind reports whether kind names one of the active node kinds.
func IsEdgeKind(kind string) bool {
	switch kind {
	case KindProcess, KindStep, KindEdge:
		return true
	}
	return false
}

// IsMarker reports whether key is reserved (starts with an underscore).
func IsMarker(key string) bool {
	return len(key) > 0 && key[0] == '_'
}
