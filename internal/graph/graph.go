// Package graph builds the target dependency graph from a BuildConfig
// and provides cycle detection, topological ordering and DOT/JSON
// export.
//
// Topological order convention: the original C++ implementation builds
// edges target -> dependency and runs Kahn's algorithm over that same
// direction, which yields dependent-before-dependency order. This
// package instead guarantees dependency-before-dependent order (a
// target never precedes something it depends on), matching the
// documented scenario where a library must be built before the
// executable that links it. Edges are still recorded and exported in
// the original's target -> dependency direction so DOT/JSON output
// looks the same; only TopologicalSort's internal traversal direction
// is reversed relative to the original's.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/model"
)

// Node is one target in the graph.
type Node struct {
	Name         string
	Kind         model.TargetKind
	Dependencies []string // names, in declaration order
}

// Edge is a directed target -> dependency edge, in declaration order.
type Edge struct {
	From string
	To   string
}

// Graph is the target dependency graph of a BuildConfig.
type Graph struct {
	order []string // node names, insertion order
	nodes map[string]*Node
	edges []Edge
}

// New builds a Graph from a BuildConfig's targets. An edge Target ->
// Dep exists for every name in a target's DependsOn list, even if that
// name does not correspond to a known target (such edges are kept so
// to_dot/to_json can still render them; TopologicalSort treats an
// unknown dependency name as already satisfied).
func New(cfg *model.BuildConfig) *Graph {
	g := &Graph{nodes: make(map[string]*Node)}
	for _, t := range cfg.Targets {
		g.order = append(g.order, t.Name)
		g.nodes[t.Name] = &Node{Name: t.Name, Kind: t.Kind, Dependencies: append([]string(nil), t.DependsOn...)}
	}

	// Subproject dependencies are not targets, but they still belong in
	// the exported graph: a target that depends on a subproject should
	// show that edge in to_dot/to_json the same way the original engine's
	// get_build_order does implicitly.
	for _, d := range cfg.Dependencies {
		if d.Kind != model.DepSubproject {
			continue
		}
		if _, exists := g.nodes[d.Name]; exists {
			continue
		}
		g.order = append(g.order, d.Name)
		g.nodes[d.Name] = &Node{Name: d.Name, Kind: model.Object}
	}

	for _, t := range cfg.Targets {
		for _, dep := range t.DependsOn {
			g.edges = append(g.edges, Edge{From: t.Name, To: dep})
		}
	}
	return g
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Edges returns the graph's edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// HasCycle reports whether the graph contains a cycle, via DFS with a
// three-color scheme (white/gray/black).
func (g *Graph) HasCycle() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.order))

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		node := g.nodes[name]
		if node != nil {
			for _, dep := range node.Dependencies {
				if _, known := g.nodes[dep]; !known {
					continue
				}
				switch color[dep] {
				case gray:
					return true
				case white:
					if visit(dep) {
						return true
					}
				}
			}
		}
		color[name] = black
		return false
	}

	for _, name := range g.order {
		if color[name] == white {
			if visit(name) {
				return true
			}
		}
	}
	return false
}

// findCycle returns one cycle's member names, in discovery order, or
// nil if the graph is acyclic.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.order))
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		color[name] = gray
		stack = append(stack, name)
		node := g.nodes[name]
		if node != nil {
			for _, dep := range node.Dependencies {
				if _, known := g.nodes[dep]; !known {
					continue
				}
				if color[dep] == gray {
					for i, n := range stack {
						if n == dep {
							return append(append([]string(nil), stack[i:]...), dep)
						}
					}
				}
				if color[dep] == white {
					if cyc := visit(dep); cyc != nil {
						return cyc
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return nil
	}

	for _, name := range g.order {
		if color[name] == white {
			if cyc := visit(name); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// TopologicalSort returns target names such that every target appears
// after all of its dependencies (dependency-before-dependent). Ties are
// broken by insertion order of the underlying target list. Returns a
// *ireerrors.GraphError if the graph has a cycle; in that case the
// returned order is a partial order over the acyclic remainder.
func (g *Graph) TopologicalSort() ([]string, error) {
	// Kahn's algorithm over the reverse of the exported edge direction:
	// a node becomes ready once every dependency it lists has already
	// been emitted, i.e. in-degree counts dependencies remaining, and
	// the "edge" we peel runs dependency -> dependent.
	remaining := make(map[string]int, len(g.order))
	dependents := make(map[string][]string) // dep name -> targets that depend on it

	for _, name := range g.order {
		node := g.nodes[name]
		count := 0
		for _, dep := range node.Dependencies {
			if _, known := g.nodes[dep]; known {
				count++
				dependents[dep] = append(dependents[dep], name)
			}
		}
		remaining[name] = count
	}

	var ready []string
	for _, name := range g.order {
		if remaining[name] == 0 {
			ready = append(ready, name)
		}
	}

	var result []string
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			return indexOf(g.order, ready[i]) < indexOf(g.order, ready[j])
		})
		name := ready[0]
		ready = ready[1:]
		result = append(result, name)

		for _, dependent := range dependents[name] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(result) != len(g.order) {
		if cyc := g.findCycle(); cyc != nil {
			return result, ireerrors.NewGraphError(cyc)
		}
		return result, ireerrors.NewGraphError(nil)
	}
	return result, nil
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return len(order)
}

func fillColor(kind model.TargetKind) string {
	switch kind {
	case model.Executable:
		return "#90EE90"
	case model.StaticLibrary, model.SharedLibrary:
		return "#87CEEB"
	default:
		return "#FFE4B5"
	}
}

// ToDOT renders the graph as a Graphviz digraph, filled by target kind,
// laid out left to right.
func (g *Graph) ToDOT() string {
	var b strings.Builder
	b.WriteString("digraph targets {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, name := range g.order {
		node := g.nodes[name]
		fmt.Fprintf(&b, "  %q [style=filled, fillcolor=%q, label=%q];\n", node.Name, fillColor(node.Kind), node.Name)
	}
	for _, e := range g.edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}

type jsonNode struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// ToJSON renders the graph as {"nodes":[...],"edges":[...]}.
func (g *Graph) ToJSON() (string, error) {
	out := jsonGraph{}
	for _, name := range g.order {
		node := g.nodes[name]
		out.Nodes = append(out.Nodes, jsonNode{Name: node.Name, Type: string(node.Kind)})
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, jsonEdge{From: e.From, To: e.To})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
