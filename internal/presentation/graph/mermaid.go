package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/aretw0/bigraph/pkg/registry"
)

// Ext is the extension of rendered artifacts.
const Ext = ".mmd"

// Mermaid renders documents as Mermaid flowcharts.
type Mermaid struct{}

// New returns a Mermaid visualizer.
func New() *Mermaid {
	return &Mermaid{}
}

var _ ports.Visualizer = (*Mermaid)(nil)

// Render writes the flowchart of the document to outDir/filename.mmd, creating
// outDir when missing, and returns the path written.
func (m *Mermaid) Render(state, schema map[string]any, reg *registry.Registry, outDir, filename string, opts ports.RenderOptions) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: empty filename", domain.ErrInvalidOperation)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create out dir: %w", err)
	}
	if filepath.Ext(filename) != Ext {
		filename += Ext
	}
	target := filepath.Join(outDir, filename)
	if err := os.WriteFile(target, []byte(GenerateMermaid(state, schema, reg, opts)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write diagram: %w", err)
	}
	return target, nil
}

// GenerateMermaid produces the flowchart text for a document.
// Shapes follow the node kind:
// - Root: ((Circle))
// - Process: [[Subroutine]]
// - Step: {{Hexagon}}
// - Store or branch: [Rectangle]
// Containment is drawn with solid lines and wires with dotted arrows labelled
// with the port name.
func GenerateMermaid(state, schema map[string]any, reg *registry.Registry, opts ports.RenderOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}

	g := &flowchart{
		reg:    reg,
		opts:   opts,
		schema: schema,
		ids:    map[string]string{},
	}
	g.sb.WriteString("graph " + direction + "\n")
	g.sb.WriteString("    root((\"root\"))\n")
	g.ids[""] = "root"
	g.walk(domain.Path{}, state)

	for _, e := range g.edges {
		g.wires(e)
	}
	return g.sb.String()
}

type flowchart struct {
	sb     strings.Builder
	reg    *registry.Registry
	opts   ports.RenderOptions
	schema map[string]any
	ids    map[string]string
	edges  []edgeNode
}

type edgeNode struct {
	path domain.Path
	spec *domain.EdgeSpec
}

func (g *flowchart) walk(path domain.Path, tree map[string]any) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parentID := g.ids[path.String()]
	for _, key := range keys {
		child := path.Append(key)
		id := fmt.Sprintf("n%d", len(g.ids))
		g.ids[child.String()] = id
		value := tree[key]

		if spec, err := domain.DecodeEdge(value); err == nil {
			opener, closer := "[[", "]]"
			if g.kind(spec) == domain.KindStep {
				opener, closer = "{{", "}}"
			}
			fmt.Fprintf(&g.sb, "    %s%s\"%s<br/>%s\"%s\n", id, opener, escape(key), escape(spec.Address), closer)
			fmt.Fprintf(&g.sb, "    %s --- %s\n", parentID, id)
			g.edges = append(g.edges, edgeNode{path: child, spec: spec})
			continue
		}

		fmt.Fprintf(&g.sb, "    %s[\"%s\"]\n", id, g.label(child, value))
		fmt.Fprintf(&g.sb, "    %s --- %s\n", parentID, id)
		if branch, ok := value.(map[string]any); ok {
			g.walk(child, branch)
		}
	}
}

// kind resolves the generic "edge" kind through the registry.
func (g *flowchart) kind(spec *domain.EdgeSpec) string {
	if spec.Kind != domain.KindEdge || g.reg == nil {
		return spec.Kind
	}
	if impl, err := g.reg.Resolve(spec.Address); err == nil {
		return impl.Kind
	}
	return spec.Kind
}

func (g *flowchart) label(path domain.Path, value any) string {
	label := escape(path.Last())
	if g.opts.ShowTypes {
		if decl, ok := domain.Lookup(g.schema, path); ok {
			if m, ok := decl.(map[string]any); ok {
				if name, ok := m[domain.KeyType].(string); ok {
					label += ": " + escape(name)
				}
			}
		}
	}
	if _, branch := value.(map[string]any); !branch && g.opts.ShowValues {
		label += " = " + escape(fmt.Sprint(value))
	}
	return label
}

func (g *flowchart) wires(e edgeNode) {
	self := g.ids[e.path.String()]
	base := e.path.Parent()
	for _, port := range domain.Wires(e.spec.Inputs) {
		if id, ok := g.target(base, e.spec.Inputs[port]); ok {
			fmt.Fprintf(&g.sb, "    %s -. \"%s\" .-> %s\n", id, escape(port), self)
		}
	}
	for _, port := range domain.Wires(e.spec.Outputs) {
		if id, ok := g.target(base, e.spec.Outputs[port]); ok {
			fmt.Fprintf(&g.sb, "    %s -. \"%s\" .-> %s\n", self, escape(port), id)
		}
	}
}

// target returns the node id of a wire; wires into stores absent from state are skipped.
func (g *flowchart) target(base domain.Path, raw any) (string, bool) {
	rel, ok := domain.ToPath(raw)
	if !ok {
		return "", false
	}
	id, ok := g.ids[base.Resolve(rel).String()]
	return id, ok
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
