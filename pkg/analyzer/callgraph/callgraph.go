// Package callgraph resolves raw callee references against the functions
// known within a single file, and partitions those functions into groups
// of mutually related functions (connected components of the undirected
// projection of the call edges). The partition is the unit handed to
// report generation.
package callgraph

import (
	"sort"

	"github.com/quillco/fathom/pkg/extract"
)

// Graph holds the resolved intra-file call edges. Callees maps each
// function to the known functions it calls; Callers is the inverse.
// Every adjacency slice is sorted and self-edges are dropped.
type Graph struct {
	Callees map[string][]string `json:"callees" toon:"callees"`
	Callers map[string][]string `json:"callers" toon:"callers"`
}

// Build restricts each function's raw callees to names present in the
// known-name set. Edges to externals, built-ins, or methods on objects
// not locally defined carry no grouping information and are dropped.
// Same input always yields the same graph.
func Build(records map[string]extract.FunctionRecord, known extract.NameSet) *Graph {
	g := &Graph{
		Callees: make(map[string][]string, known.Len()),
		Callers: make(map[string][]string, known.Len()),
	}

	for _, name := range known.Names() {
		record, ok := records[name]
		if !ok {
			continue
		}
		var callees []string
		for callee := range record.RawCallees {
			if callee != name && known.Contains(callee) {
				callees = append(callees, callee)
			}
		}
		sort.Strings(callees)
		g.Callees[name] = callees
	}

	for _, name := range known.Names() {
		g.Callers[name] = nil
	}
	for _, caller := range known.Names() {
		for _, callee := range g.Callees[caller] {
			g.Callers[callee] = append(g.Callers[callee], caller)
		}
	}
	for name, callers := range g.Callers {
		sort.Strings(callers)
		g.Callers[name] = callers
	}

	return g
}

// Neighbors returns the undirected neighbor set of a function: callees
// and callers merged, sorted. Call direction carries no meaning for
// relatedness.
func (g *Graph) Neighbors(name string) []string {
	seen := make(map[string]struct{})
	for _, n := range g.Callees[name] {
		seen[n] = struct{}{}
	}
	for _, n := range g.Callers[name] {
		seen[n] = struct{}{}
	}
	neighbors := make([]string, 0, len(seen))
	for n := range seen {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, callees := range g.Callees {
		total += len(callees)
	}
	return total
}

// Group is one connected component: a maximal set of functions
// transitively linked through resolved call edges, direction ignored.
type Group struct {
	Members []string `json:"members" toon:"members"`
}

// Size returns the number of members.
func (grp Group) Size() int {
	return len(grp.Members)
}

// Components partitions the known names into connected components of the
// undirected projection of g. Traversal starts from the lexicographically
// first unvisited name and explores neighbors in sorted order, so both
// membership discovery and output ordering are fully deterministic.
// Groups are ordered by descending size, ties broken by the
// lexicographically smallest member. A function with no resolved edges
// forms a singleton group; that is valid and common, not an error.
func Components(known extract.NameSet, g *Graph) []Group {
	visited := make(map[string]struct{}, known.Len())
	var groups []Group

	for _, start := range known.Names() {
		if _, done := visited[start]; done {
			continue
		}

		var members []string
		stack := []string{start}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, done := visited[current]; done {
				continue
			}
			visited[current] = struct{}{}
			members = append(members, current)

			for _, neighbor := range g.Neighbors(current) {
				if _, done := visited[neighbor]; !done {
					stack = append(stack, neighbor)
				}
			}
		}

		sort.Strings(members)
		groups = append(groups, Group{Members: members})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Size() != groups[j].Size() {
			return groups[i].Size() > groups[j].Size()
		}
		return groups[i].Members[0] < groups[j].Members[0]
	})

	return groups
}
