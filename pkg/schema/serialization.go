package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalJSON serializes the schema as a map of field names to type strings.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}

	return json.Marshal(raw)
}

// Names returns the port map form of the schema ({field: type name}).
func (s Schema) Names() map[string]any {
	out := make(map[string]any, len(s))
	for key, typ := range s {
		out[key] = typ.Name()
	}
	return out
}

// Fields returns the field names in sorted order.
func (s Schema) Fields() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize round-trips v through JSON so that the result only holds plain values
// (map[string]any, []any, float64, string, bool, nil).
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
