package domain

// Document is the transportable form of a bigraph: the composition schema and the state
// it types. Both trees hold only plain values (maps, slices, strings, numbers, bools).
type Document struct {
	Schema map[string]any `json:"schema" yaml:"schema"`
	State  map[string]any `json:"state" yaml:"state"`
}

// Lookup returns the value at path inside a nested map tree.
func Lookup(tree any, path Path) (any, bool) {
	current := tree
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Assign writes value at path, creating intermediate maps and replacing any non-map
// value found on the way. It returns the (possibly new) root.
func Assign(tree map[string]any, path Path, value any) map[string]any {
	if tree == nil {
		tree = map[string]any{}
	}
	if len(path) == 0 {
		if m, ok := value.(map[string]any); ok {
			return m
		}
		return tree
	}
	current := tree
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
	current[path.Last()] = value
	return tree
}

// Remove deletes the value at path if present.
func Remove(tree map[string]any, path Path) {
	if len(path) == 0 {
		return
	}
	parent, ok := Lookup(tree, path.Parent())
	if !ok {
		return
	}
	if m, ok := parent.(map[string]any); ok {
		delete(m, path.Last())
	}
}

// DeepCopy copies maps and slices recursively; other values are shared.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = DeepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = DeepCopy(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case Path:
		return t.Append()
	default:
		return v
	}
}

// CopyMap deep copies a map tree, returning an empty map for nil.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return DeepCopy(m).(map[string]any)
}
