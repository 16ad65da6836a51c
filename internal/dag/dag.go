// Package dag builds the object dependency graph from resolved body
// dependencies. It supports cycle detection, topological ordering, and
// deployment level grouping.
package dag

import (
	"fmt"
	"sort"

	"github.com/sqlforge/sqlforge/internal/model"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

// Node is one schema object in the graph. ID is the bracketed two-part name.
type Node struct {
	ID     string
	Object *model.Object
}

// Graph is a directed graph over schema objects. An edge from A to B means
// B depends on A, so A must deploy first.
type Graph struct {
	nodes      map[string]*Node
	dependents map[string][]string // object -> objects that depend on it
	dependsOn  map[string][]string // object -> objects it depends on
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
		dependsOn:  make(map[string][]string),
	}
}

// Build constructs the dependency graph for a model. deps maps each object's
// case-folded key to its resolved dependencies; both object references and
// column references contribute an edge to the referenced object. References
// to objects outside the model (built-ins, external databases) are ignored.
func Build(m *model.Model, deps map[string][]resolve.Dependency) *Graph {
	g := NewGraph()
	for _, obj := range m.Objects() {
		g.AddNode(obj)
	}
	for _, obj := range m.Objects() {
		for _, d := range deps[obj.Key()] {
			target, ok := m.Lookup(d.Schema, d.Name)
			if !ok || target.Key() == obj.Key() {
				continue
			}
			_ = g.AddEdge(target.Name.String(), obj.Name.String())
		}
	}
	return g
}

// AddNode registers an object. Re-adding the same name replaces the object.
func (g *Graph) AddNode(obj *model.Object) {
	id := obj.Name.String()
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = &Node{ID: id, Object: obj}
		g.dependents[id] = []string{}
		g.dependsOn[id] = []string{}
		return
	}
	g.nodes[id].Object = obj
}

// AddEdge records that dependentID depends on dependencyID.
func (g *Graph) AddEdge(dependencyID, dependentID string) error {
	if _, exists := g.nodes[dependencyID]; !exists {
		return fmt.Errorf("dependency node %q does not exist", dependencyID)
	}
	if _, exists := g.nodes[dependentID]; !exists {
		return fmt.Errorf("dependent node %q does not exist", dependentID)
	}
	if dependencyID == dependentID {
		return fmt.Errorf("self-loop: %s", dependencyID)
	}

	if !containsString(g.dependents[dependencyID], dependentID) {
		g.dependents[dependencyID] = append(g.dependents[dependencyID], dependentID)
	}
	if !containsString(g.dependsOn[dependentID], dependencyID) {
		g.dependsOn[dependentID] = append(g.dependsOn[dependentID], dependencyID)
	}
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// DependenciesOf returns the objects id directly depends on.
func (g *Graph) DependenciesOf(id string) []string {
	return g.dependsOn[id]
}

// DependentsOf returns the objects that directly depend on id.
func (g *Graph) DependentsOf(id string) []string {
	return g.dependents[id]
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.dependents {
		count += len(deps)
	}
	return count
}

// HasCycle reports whether the graph contains a cycle, with the cycle path
// for diagnostics. Cycles are legal in SQL Server (mutually recursive
// routines) so callers warn rather than fail.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.dependents[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for cur := id; cur != next; cur = cameFrom[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range sortedIDs(g.nodes) {
		if !visited[id] && dfs(id) {
			return true, cycle
		}
	}
	return false, nil
}

// TopologicalSort returns nodes with every dependency before its dependents.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("dependency cycle: %v", path)
	}

	visited := make(map[string]bool)
	var order []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.dependsOn[id] {
			visit(dep)
		}
		order = append(order, g.nodes[id])
	}

	for _, id := range sortedIDs(g.nodes) {
		visit(id)
	}
	return order, nil
}

// Levels groups objects into deployment levels: everything at level N depends
// only on levels below N, so a level can deploy in parallel.
func (g *Graph) Levels() ([][]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("dependency cycle: %v", path)
	}

	assigned := make(map[string]int)
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if lvl, ok := assigned[id]; ok {
			return lvl
		}
		lvl := 0
		for _, dep := range g.dependsOn[id] {
			if dl := levelOf(dep) + 1; dl > lvl {
				lvl = dl
			}
		}
		assigned[id] = lvl
		return lvl
	}

	maxLevel := 0
	for id := range g.nodes {
		if lvl := levelOf(id); lvl > maxLevel {
			maxLevel = lvl
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, lvl := range assigned {
		levels[lvl] = append(levels[lvl], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// Affected returns the given objects plus everything downstream of them,
// sorted. Unknown IDs are ignored.
func (g *Graph) Affected(changed []string) []string {
	seen := make(map[string]bool)
	var mark func(id string)
	mark = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, next := range g.dependents[id] {
			mark(next)
		}
	}
	for _, id := range changed {
		if _, ok := g.nodes[id]; ok {
			mark(id)
		}
	}
	return sortedKeys(seen)
}

// Upstream returns the transitive dependencies of id, sorted.
func (g *Graph) Upstream(id string) []string {
	seen := make(map[string]bool)
	var mark func(id string)
	mark = func(id string) {
		for _, dep := range g.dependsOn[id] {
			if !seen[dep] {
				seen[dep] = true
				mark(dep)
			}
		}
	}
	mark(id)
	return sortedKeys(seen)
}

// Roots returns objects with no dependencies.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.dependsOn[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns objects nothing depends on.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.dependents[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

func sortedIDs(nodes map[string]*Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
