// Package wto implements the core's WTO construction component (C4): Bourdoncle's algorithm for
// partitioning a CFG into a Weak Topological Order of vertices and nested cycles, each cycle
// carrying a designated head that dominates its body.
package wto

import "github.com/knightfall/knightfall/frontend"

// Component is either a Vertex or a Cycle.
type Component interface {
	isComponent()
	// Head returns the representative node of this component: the node itself for a Vertex, or
	// the cycle head for a Cycle.
	Head() frontend.Node
}

// Vertex is a single CFG node that is not part of any cycle at this nesting level.
type Vertex struct {
	Node frontend.Node
}

func (Vertex) isComponent()            {}
func (v Vertex) Head() frontend.Node   { return v.Node }

// Cycle is a nested strongly-connected region with a single designated entry, Head, which
// dominates every node in Body (§3 WTO invariants).
type Cycle struct {
	HeadNode frontend.Node
	Body     []Component
}

func (Cycle) isComponent()          {}
func (c Cycle) Head() frontend.Node { return c.HeadNode }

// WTO is the Weak Topological Order of a function's CFG: a top-level list of components, plus the
// nesting (ordered enclosing cycle heads, outermost first) of every reachable node.
type WTO struct {
	Components []Component
	nesting    map[frontend.Node][]frontend.Node
	heads      map[frontend.Node]bool
}

// Nesting returns the ordered list of cycle heads enclosing node, outermost first (node itself is
// never included, even when node is itself a head — its nesting is that of its enclosing cycles).
// A node not reachable from entry (and therefore absent from the WTO) returns nil.
func (w *WTO) Nesting(node frontend.Node) []frontend.Node {
	return w.nesting[node]
}

// IsHead reports whether node is the head of some cycle in w.
func (w *WTO) IsHead(node frontend.Node) bool {
	return w.heads[node]
}

// Build computes the WTO of cfg starting from its entry node, following Bourdoncle's algorithm.
// Only nodes reachable from entry are included (§4.3 "Unreachable nodes are not included"), and
// successor order is taken directly from each node's Successors() (deterministic per the CFG
// provider's contract), so two calls over an identical CFG produce an identical WTO.
func Build(cfg frontend.CFG) *WTO {
	b := &builder{
		dfn:   map[frontend.Node]int{},
		stack: nil,
	}
	var partition []Component
	b.visit(cfg.Entry(), &partition)

	w := &WTO{
		Components: partition,
		nesting:    map[frontend.Node][]frontend.Node{},
		heads:      map[frontend.Node]bool{},
	}
	computeNesting(partition, nil, w.nesting, w.heads)
	return w
}

type builder struct {
	dfn   map[frontend.Node]int
	num   int
	stack []frontend.Node
}

const infinity = int(^uint(0) >> 1)

func (b *builder) push(n frontend.Node) { b.stack = append(b.stack, n) }

func (b *builder) pop() frontend.Node {
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return n
}

// visit implements Bourdoncle's `visit` procedure, prepending completed top-level components of
// this recursion level to *partition (which may be nested: the recursive call made from
// component() passes the cycle's own body slice), so each partition ends up in reverse postorder.
func (b *builder) visit(v frontend.Node, partition *[]Component) int {
	b.push(v)
	b.num++
	b.dfn[v] = b.num
	head := b.dfn[v]
	loop := false

	for _, s := range v.Successors() {
		var min int
		if b.dfn[s] == 0 {
			min = b.visit(s, partition)
		} else {
			min = b.dfn[s]
		}
		if min <= head {
			head = min
			loop = true
		}
	}

	if head == b.dfn[v] {
		b.dfn[v] = infinity
		element := b.pop()
		if loop {
			for element != v {
				b.dfn[element] = 0
				element = b.pop()
			}
			*partition = append([]Component{b.component(v)}, *partition...)
		} else {
			*partition = append([]Component{Vertex{Node: v}}, *partition...)
		}
	}
	return head
}

// component implements Bourdoncle's `component` procedure: builds the nested cycle rooted at
// head by re-pushing head and visiting any not-yet-visited successors into the cycle's own body.
func (b *builder) component(head frontend.Node) Cycle {
	b.push(head)
	var body []Component
	for _, s := range head.Successors() {
		if b.dfn[s] == 0 {
			b.visit(s, &body)
		}
	}
	return Cycle{HeadNode: head, Body: body}
}

func computeNesting(components []Component, enclosing []frontend.Node, out map[frontend.Node][]frontend.Node, heads map[frontend.Node]bool) {
	for _, c := range components {
		switch cc := c.(type) {
		case Vertex:
			out[cc.Node] = append([]frontend.Node(nil), enclosing...)
		case Cycle:
			out[cc.HeadNode] = append([]frontend.Node(nil), enclosing...)
			heads[cc.HeadNode] = true
			bodyNesting := append(append([]frontend.Node(nil), enclosing...), cc.HeadNode)
			computeNesting(cc.Body, bodyNesting, out, heads)
		}
	}
}
