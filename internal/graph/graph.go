// Package graph builds the package-level dependency graph of scanned units.
// It supports cycle detection, topological ordering and DOT output.
package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// Node is a package in the graph.
type Node struct {
	// ID is the package import path
	ID string
	// Tags are the classifier tags of the package
	Tags layering.TagSet
	// Units is the number of scanned units in the package, 0 for external packages
	Units int
}

// Edge is a dependency from one package to another.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	// Refs counts the distinct unit-to-unit references behind the edge
	Refs int `json:"refs"`
}

// Graph is a directed graph of packages. An edge points from a package to
// the package it depends on.
type Graph struct {
	nodes      map[string]*Node
	deps       map[string][]string // package -> dependencies
	dependents map[string][]string // package -> dependents
	refs       map[[2]string]int
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
		refs:       make(map[[2]string]int),
	}
}

// BuildOptions controls Build.
type BuildOptions struct {
	// External adds packages outside the scanned set, such as the standard library.
	External bool
}

// Build creates the package graph of units. Packages are tagged with c.
func Build(units []layering.Unit, c *layering.Classifier, opts BuildOptions) *Graph {
	if c == nil {
		c = layering.DefaultClassifier()
	}

	g := NewGraph()
	for _, u := range units {
		node := g.AddNode(u.Package, c.ClassifyUnit(u))
		node.Units++
	}

	for _, u := range units {
		for _, d := range u.Dependencies {
			target := d.Target.Package
			if _, scanned := g.nodes[target]; !scanned {
				if !opts.External {
					continue
				}
				g.AddNode(target, c.Classify(target))
			}
			// Self-loops cannot occur: units never record their own package.
			_ = g.AddEdge(u.Package, target)
		}
	}
	return g
}

// AddNode adds a package, or returns the existing node.
func (g *Graph) AddNode(id string, tags layering.TagSet) *Node {
	if node, exists := g.nodes[id]; exists {
		return node
	}
	node := &Node{ID: id, Tags: tags}
	g.nodes[id] = node
	g.deps[id] = []string{}
	g.dependents[id] = []string{}
	return node
}

// AddEdge records one reference from package from to package to.
func (g *Graph) AddEdge(from, to string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("node %q does not exist", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("node %q does not exist", to)
	}
	if from == to {
		return fmt.Errorf("self-loop detected: %s", from)
	}

	key := [2]string{from, to}
	if g.refs[key] == 0 {
		g.deps[from] = append(g.deps[from], to)
		g.dependents[to] = append(g.dependents[to], from)
	}
	g.refs[key]++
	return nil
}

// Node returns a package by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Nodes returns all packages ordered by ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// Dependencies returns the packages id depends on, sorted.
func (g *Graph) Dependencies(id string) []string {
	return sorted(g.deps[id])
}

// Dependents returns the packages depending on id, sorted.
func (g *Graph) Dependents(id string) []string {
	return sorted(g.dependents[id])
}

// Edges returns every edge ordered by source, then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.refs))
	for key, n := range g.refs {
		edges = append(edges, Edge{From: key[0], To: key[1], Refs: n})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// NodeCount returns the number of packages.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of package edges.
func (g *Graph) EdgeCount() int {
	return len(g.refs)
}

// Filter returns the subgraph of packages for which keep returns true.
func (g *Graph) Filter(keep func(*Node) bool) *Graph {
	out := NewGraph()
	for _, node := range g.Nodes() {
		if keep(node) {
			n := out.AddNode(node.ID, node.Tags)
			n.Units = node.Units
		}
	}
	for key, n := range g.refs {
		if _, ok := out.nodes[key[0]]; !ok {
			continue
		}
		if _, ok := out.nodes[key[1]]; !ok {
			continue
		}
		_ = out.AddEdge(key[0], key[1])
		out.refs[key] = n
	}
	return out
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	parent := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, dep := range g.Dependencies(id) {
			if !visited[dep] {
				parent[dep] = id
				if dfs(dep) {
					return true
				}
			} else if onStack[dep] {
				cyclePath = []string{dep}
				for curr := id; curr != dep; curr = parent[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{dep}, cyclePath...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, node := range g.Nodes() {
		if !visited[node.ID] && dfs(node.ID) {
			return true, cyclePath
		}
	}
	return false, nil
}

// TopologicalSort returns packages with dependencies before dependents.
// Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %s", strings.Join(cyclePath, " -> "))
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.Dependencies(id) {
			visit(dep)
		}
		result = append(result, g.nodes[id])
	}

	for _, node := range g.Nodes() {
		visit(node.ID)
	}
	return result, nil
}

// WriteDOT writes the graph in Graphviz DOT format. Tagged packages are
// labelled with their tags.
func (g *Graph) WriteDOT(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("digraph packages {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	for _, node := range g.Nodes() {
		label := node.ID
		if len(node.Tags) > 0 {
			label += "\n[" + node.Tags.String() + "]"
		}
		fmt.Fprintf(&sb, "  %q [label=%q];\n", node.ID, label)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&sb, "  %q -> %q [label=\"%d\"];\n", e.From, e.To, e.Refs)
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
