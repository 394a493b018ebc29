package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/bigraph/pkg/domain"
)

// Describe summarizes a document as markdown: one table for stores and one for edges.
func Describe(title string, doc domain.Document) string {
	var stores, edges []string
	collect(domain.Path{}, doc.State, doc.Schema, &stores, &edges)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## Stores\n\n")
	if len(stores) == 0 {
		sb.WriteString("_none_\n\n")
	} else {
		sb.WriteString("| path | type | value |\n|---|---|---|\n")
		sb.WriteString(strings.Join(stores, ""))
		sb.WriteString("\n")
	}

	sb.WriteString("## Edges\n\n")
	if len(edges) == 0 {
		sb.WriteString("_none_\n")
	} else {
		sb.WriteString("| path | kind | address | inputs | outputs |\n|---|---|---|---|---|\n")
		sb.WriteString(strings.Join(edges, ""))
	}
	return sb.String()
}

func collect(path domain.Path, state, schema map[string]any, stores, edges *[]string) {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		child := path.Append(key)
		value := state[key]
		decl, _ := schema[key].(map[string]any)

		if spec, err := domain.DecodeEdge(value); err == nil {
			*edges = append(*edges, fmt.Sprintf("| `%s` | %s | `%s` | %s | %s |\n",
				child, spec.Kind, spec.Address, wires(spec.Inputs), wires(spec.Outputs)))
			continue
		}
		if branch, ok := value.(map[string]any); ok {
			if _, typed := decl[domain.KeyType]; !typed {
				collect(child, branch, decl, stores, edges)
				continue
			}
		}
		typ, _ := decl[domain.KeyType].(string)
		*stores = append(*stores, fmt.Sprintf("| `%s` | %s | %v |\n", child, typ, cell(value)))
	}
}

func wires(m map[string]any) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for _, port := range domain.Wires(m) {
		target, _ := domain.ToPath(m[port])
		parts = append(parts, fmt.Sprintf("%s → `%s`", port, target))
	}
	return strings.Join(parts, ", ")
}

func cell(v any) string {
	return strings.ReplaceAll(fmt.Sprint(v), "|", "\\|")
}
