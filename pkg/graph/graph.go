// Package graph provides the directed theme -> subtheme graph of a knowledge base.
// Custom implementation; child order is preserved because motif expansion
// follows authoring order.
package graph

import "sort"

// ThemeNode is a theme in the graph, keyed by canonical name.
type ThemeNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ThemeGraph is a directed graph of subtheme relations.
type ThemeGraph struct {
	// Node storage: ID -> Node
	Nodes map[string]*ThemeNode `json:"nodes"`

	// Adjacency: parent -> children in insertion order
	Outbound map[string][]string `json:"outbound"`

	// Reverse index: child -> parents
	Inbound map[string]map[string]struct{} `json:"-"`
}

// NewGraph creates an empty graph
func NewGraph() *ThemeGraph {
	return &ThemeGraph{
		Nodes:    make(map[string]*ThemeNode),
		Outbound: make(map[string][]string),
		Inbound:  make(map[string]map[string]struct{}),
	}
}

// EnsureNode adds a node if it doesn't exist, returns existing node otherwise
func (g *ThemeGraph) EnsureNode(id, label string) *ThemeNode {
	if existing, exists := g.Nodes[id]; exists {
		return existing
	}
	node := &ThemeNode{ID: id, Label: label}
	g.Nodes[id] = node
	return node
}

// AddEdge records that child is a subtheme of parent.
// Repeated edges are ignored; both endpoints are created if missing.
func (g *ThemeGraph) AddEdge(parent, child string) {
	g.EnsureNode(parent, parent)
	g.EnsureNode(child, child)

	if _, exists := g.Inbound[child][parent]; exists {
		return
	}
	g.Outbound[parent] = append(g.Outbound[parent], child)

	if g.Inbound[child] == nil {
		g.Inbound[child] = make(map[string]struct{})
	}
	g.Inbound[child][parent] = struct{}{}
}

// Children returns the direct subthemes of id in insertion order.
func (g *ThemeGraph) Children(id string) []string {
	return g.Outbound[id]
}

// Parents returns the themes that list id as a subtheme, sorted.
func (g *ThemeGraph) Parents(id string) []string {
	parents := make([]string, 0, len(g.Inbound[id]))
	for p := range g.Inbound[id] {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	return parents
}

// NodeCount returns the number of nodes
func (g *ThemeGraph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges
func (g *ThemeGraph) EdgeCount() int {
	count := 0
	for _, children := range g.Outbound {
		count += len(children)
	}
	return count
}

// Roots returns the themes that are nobody's subtheme, sorted.
func (g *ThemeGraph) Roots() []string {
	var roots []string
	for id := range g.Nodes {
		if len(g.Inbound[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Walk visits root and every theme reachable from it, depth-first in
// preorder, each at most once. An edge leading back to a theme still on the
// current path is not followed; onCycle (if set) receives it instead.
func (g *ThemeGraph) Walk(root string, visit func(id string), onCycle func(from, to string)) {
	if _, ok := g.Nodes[root]; !ok {
		return
	}
	const (
		onPath = 1
		done   = 2
	)
	state := make(map[string]int)

	var dfs func(id string)
	dfs = func(id string) {
		state[id] = onPath
		visit(id)
		for _, child := range g.Outbound[id] {
			switch state[child] {
			case onPath:
				if onCycle != nil {
					onCycle(id, child)
				}
			case done:
				// shared subtheme, already expanded
			default:
				dfs(child)
			}
		}
		state[id] = done
	}
	dfs(root)
}

// Cycles returns one path per back edge found in the graph, each starting
// and ending at the same theme. Start nodes are taken in sorted order so the
// result is deterministic.
func (g *ThemeGraph) Cycles() [][]string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	state := make(map[string]int)
	var path []string
	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		state[id] = 1
		path = append(path, id)
		for _, child := range g.Outbound[id] {
			switch state[child] {
			case 1:
				cycles = append(cycles, cyclePath(path, child))
			case 0:
				dfs(child)
			}
		}
		path = path[:len(path)-1]
		state[id] = 2
	}

	for _, id := range ids {
		if state[id] == 0 {
			dfs(id)
		}
	}
	return cycles
}

// cyclePath cuts path at the first occurrence of target and closes the loop.
func cyclePath(path []string, target string) []string {
	for i, id := range path {
		if id == target {
			out := append([]string(nil), path[i:]...)
			return append(out, target)
		}
	}
	return []string{target, target}
}
