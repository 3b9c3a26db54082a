// Package cfgdump renders a frontend.CFG as Graphviz DOT text, backing the --dump-cfg/--view-cfg
// flags referenced in original_source/analyzer/tools/main.cpp (the pack's distillation ships the
// flag plumbing but not clang's own CFG::viewCFG DOT writer, which is LLVM-internal and out of
// scope for this core); this package supplies a from-scratch Go equivalent driven off
// frontend.CFG/Node rather than clang::CFG. DESIGN.md justification: string templating has no
// pack library precedent (no example repo emits Graphviz), so this is written against stdlib
// text/template rather than grounded on a third-party dep.
package cfgdump

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/knightfall/knightfall/frontend"
)

const dotTemplate = `digraph "{{.Name}}" {
  node [shape=box, fontname="monospace"];
{{- range .Nodes}}
  N{{.ID}} [label="{{.Label}}"];
{{- end}}
{{- range .Edges}}
  N{{.From}} -> N{{.To}}{{.Attrs}};
{{- end}}
}
`

var tmpl = template.Must(template.New("cfg").Parse(dotTemplate))

type dotNode struct {
	ID    int
	Label string
}

type dotEdge struct {
	From, To int
	Attrs    string
}

type dotGraph struct {
	Name  string
	Nodes []dotNode
	Edges []dotEdge
}

// DumpDOT renders cfg as a Graphviz DOT digraph named name, one box per CFG node
// labeled with its element count, and edges labeled true/false for a node ending in a two-way
// branch. This only describes structure, not per-element source text, since frontend.Stmt exposes
// no source rendering (§ frontend: "the core never inspects internal AST structure").
func DumpDOT(name string, cfg frontend.CFG) (string, error) {
	g := dotGraph{Name: name}
	for _, n := range cfg.Nodes() {
		g.Nodes = append(g.Nodes, dotNode{ID: n.ID(), Label: nodeLabel(n)})
		succs := n.Successors()
		_, hasCond := n.LastCondition()
		for i, s := range succs {
			attrs := ""
			if hasCond && len(succs) == 2 {
				if i == 0 {
					attrs = ` [label="true"]`
				} else {
					attrs = ` [label="false"]`
				}
			}
			g.Edges = append(g.Edges, dotEdge{From: n.ID(), To: s.ID(), Attrs: attrs})
		}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, g); err != nil {
		return "", fmt.Errorf("cfgdump: rendering DOT: %w", err)
	}
	return sb.String(), nil
}

func nodeLabel(n frontend.Node) string {
	elems := n.Elements()
	if len(elems) == 0 {
		return fmt.Sprintf("B%d (empty)", n.ID())
	}
	return fmt.Sprintf("B%d (%d elements)", n.ID(), len(elems))
}

// DumpText renders cfg as an indented text outline, for terminals without a Graphviz viewer
// (--dump-cfg without --view-cfg).
func DumpText(name string, cfg frontend.CFG) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CFG for %s (entry=B%d, exit=B%d):\n", name, cfg.Entry().ID(), cfg.Exit().ID())
	for _, n := range cfg.Nodes() {
		fmt.Fprintf(&sb, "  %s\n", nodeLabel(n))
		for _, s := range n.Successors() {
			fmt.Fprintf(&sb, "    -> B%d\n", s.ID())
		}
	}
	return sb.String()
}
