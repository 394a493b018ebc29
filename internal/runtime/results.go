package runtime

import (
	"fmt"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/ohler55/ojg/jp"
)

// RootQuery is the key the whole state is returned under when no query is given.
const RootQuery = "$"

// GatherResults evaluates JSONPath queries ("$.cell.level", "$..y") against the
// state. A query matching one value maps to it; several matches map to a list and
// no match maps to nil.
func (c *Composite) GatherResults(queries ...string) (map[string]any, error) {
	if len(queries) == 0 {
		return map[string]any{RootQuery: domain.CopyMap(c.state)}, nil
	}

	results := make(map[string]any, len(queries))
	for _, q := range queries {
		expr, err := jp.ParseString(q)
		if err != nil {
			return nil, fmt.Errorf("invalid query %q: %w", q, err)
		}
		matches := expr.Get(c.state)
		switch len(matches) {
		case 0:
			results[q] = nil
		case 1:
			results[q] = domain.DeepCopy(matches[0])
		default:
			results[q] = domain.DeepCopy(matches)
		}
	}
	return results, nil
}
